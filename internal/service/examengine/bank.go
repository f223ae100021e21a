package examengine

import (
	"context"
	"log"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
)

// SnapshotStore сохраняет удачный ответ хранилища для уровня-снимка
type SnapshotStore interface {
	Store(ctx context.Context, questions []entity.Question) error
}

// BankOptions: параметры банка вопросов
type BankOptions struct {
	Config     *Config
	Clock      Clock
	Snapshot   SnapshotStore
	Dispatcher Dispatcher
}

// QuestionBank собирает вопросы из цепочки источников и кеширует результат
type QuestionBank struct {
	sources    []Source
	cache      *TTLCache
	snapshot   SnapshotStore
	dispatcher Dispatcher
	limit      int
}

// NewQuestionBank создает банк; источники опрашиваются в переданном порядке
func NewQuestionBank(sources []Source, opts BankOptions) *QuestionBank {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = AsyncDispatcher{Timeout: cfg.SideEffectTimeout}
	}
	return &QuestionBank{
		sources:    sources,
		cache:      NewTTLCache(cfg.CacheTTL, opts.Clock),
		snapshot:   opts.Snapshot,
		dispatcher: dispatcher,
		limit:      cfg.RemoteLimit,
	}
}

// GetAllQuestions возвращает все доступные вопросы. Никогда не возвращает ошибку:
// сбой источника означает переход к следующему, в худшем случае результат пуст.
// Возвращаемый срез разделяется между вызывающими и не должен изменяться.
func (b *QuestionBank) GetAllQuestions(ctx context.Context) []entity.Question {
	if cached, ok := b.cache.Get(); ok {
		return cached
	}

	for _, src := range b.sources {
		raw, err := src.FetchQuestions(ctx, SourceFilter{Limit: b.limit})
		if err != nil {
			log.Printf("[QuestionBank] WARNING: источник %s недоступен: %v", src.Name(), err)
			continue
		}

		questions, dropped := NormalizeBatch(activeOnly(raw))
		if dropped > 0 {
			log.Printf("[QuestionBank] Источник %s: отброшено %d невалидных записей", src.Name(), dropped)
		}
		if len(questions) == 0 {
			log.Printf("[QuestionBank] Источник %s не вернул вопросов, переходим к следующему", src.Name())
			continue
		}

		b.cache.Set(questions, src.Name())
		log.Printf("[QuestionBank] Загружено %d вопросов из источника %s", len(questions), src.Name())

		if src.Name() == entity.SourceRemote && b.snapshot != nil {
			snapshot := questions
			b.dispatcher.Go(ctx, "question snapshot", func(ctx context.Context) {
				if err := b.snapshot.Store(ctx, snapshot); err != nil {
					log.Printf("[QuestionBank] WARNING: не удалось сохранить снимок вопросов: %v", err)
				}
			})
		}
		return questions
	}

	log.Printf("[QuestionBank] WARNING: все источники исчерпаны, банк вопросов пуст")
	return nil
}

// Invalidate сбрасывает кеш, например после одобрения нового вопроса
func (b *QuestionBank) Invalidate() {
	b.cache.Invalidate()
	log.Printf("[QuestionBank] Кеш вопросов сброшен")
}

// State возвращает сведения о кеше банка
func (b *QuestionBank) State() CacheState {
	return b.cache.State()
}

func activeOnly(questions []entity.Question) []entity.Question {
	out := questions[:0:0]
	for _, q := range questions {
		if q.IsActive {
			out = append(out, q)
		}
	}
	return out
}
