package examengine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/repository"
	apperrors "github.com/RoutinizeWellness/aviate-ace-sub001/internal/pkg/errors"
)

// SourceFilter ограничивает выборку из источника
type SourceFilter struct {
	Aircraft   string
	Category   string
	Difficulty entity.Difficulty
	Limit      int
}

// Source: один уровень цепочки источников вопросов.
// Ошибка или пустой результат означают переход к следующему уровню.
type Source interface {
	Name() string
	FetchQuestions(ctx context.Context, filter SourceFilter) ([]entity.Question, error)
}

// ============================================================================
// PostgreSQL
// ============================================================================

// RemoteSource читает активные вопросы из хранилища
type RemoteSource struct {
	repo    repository.QuestionRepository
	timeout time.Duration
}

// NewRemoteSource создает источник поверх репозитория вопросов
func NewRemoteSource(repo repository.QuestionRepository, timeout time.Duration) *RemoteSource {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	return &RemoteSource{repo: repo, timeout: timeout}
}

// Name возвращает имя источника
func (s *RemoteSource) Name() string { return entity.SourceRemote }

// FetchQuestions выполняет запрос с ограничением по времени
func (s *RemoteSource) FetchQuestions(ctx context.Context, filter SourceFilter) ([]entity.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	questions, err := s.repo.Find(ctx, repository.QuestionFilter{
		Aircraft:   filter.Aircraft,
		Category:   filter.Category,
		Difficulty: filter.Difficulty,
		Limit:      filter.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("remote question query: %w", err)
	}
	return questions, nil
}

// ============================================================================
// Снимок в Redis
// ============================================================================

// SnapshotKey: ключ последнего удачного ответа хранилища
const SnapshotKey = "questions:snapshot"

// SnapshotSource хранит в Redis последний удачный результат RemoteSource
type SnapshotSource struct {
	cache repository.CacheRepository
	ttl   time.Duration
}

// NewSnapshotSource создает источник-снимок
func NewSnapshotSource(cache repository.CacheRepository, ttl time.Duration) *SnapshotSource {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotSource{cache: cache, ttl: ttl}
}

// Name возвращает имя источника
func (s *SnapshotSource) Name() string { return entity.SourceSnapshot }

// FetchQuestions читает снимок; отсутствие снимка, пустой результат
func (s *SnapshotSource) FetchQuestions(ctx context.Context, filter SourceFilter) ([]entity.Question, error) {
	var questions []entity.Question
	if err := s.cache.GetJSON(ctx, SnapshotKey, &questions); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read question snapshot: %w", err)
	}
	for i := range questions {
		questions[i].Source = entity.SourceSnapshot
	}
	if filter.Limit > 0 && len(questions) > filter.Limit {
		questions = questions[:filter.Limit]
	}
	return questions, nil
}

// Store сохраняет снимок
func (s *SnapshotSource) Store(ctx context.Context, questions []entity.Question) error {
	return s.cache.SetJSON(ctx, SnapshotKey, questions, s.ttl)
}

// ============================================================================
// Встроенные наборы
// ============================================================================

// StaticSource отдает встроенные наборы вопросов, объединенные в один список
type StaticSource struct {
	name    string
	records []RawQuestion
	limit   int
}

// NewStaticSource создает источник из встроенных наборов
func NewStaticSource(sets ...[]RawQuestion) *StaticSource {
	var all []RawQuestion
	for _, set := range sets {
		all = append(all, set...)
	}
	return &StaticSource{name: entity.SourceStatic, records: all}
}

// NewMinimalSource создает последний резервный источник, усеченный до limit вопросов
func NewMinimalSource(records []RawQuestion, limit int) *StaticSource {
	if limit <= 0 {
		limit = DefaultMinimalSetLimit
	}
	return &StaticSource{name: entity.SourceMinimal, records: records, limit: limit}
}

// Name возвращает имя источника
func (s *StaticSource) Name() string { return s.name }

// FetchQuestions нормализует записи набора; невалидные отбрасываются
func (s *StaticSource) FetchQuestions(ctx context.Context, filter SourceFilter) ([]entity.Question, error) {
	limit := s.limit
	if filter.Limit > 0 && (limit == 0 || filter.Limit < limit) {
		limit = filter.Limit
	}

	out := make([]entity.Question, 0, len(s.records))
	for _, r := range s.records {
		q, err := NormalizeRecord(r, s.name)
		if err != nil {
			log.Printf("[QuestionBank] WARNING: запись %q из набора %s отброшена: %v", r.ID, s.name, err)
			continue
		}
		out = append(out, q)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
