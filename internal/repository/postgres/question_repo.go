package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/repository"
	apperrors "github.com/RoutinizeWellness/aviate-ace-sub001/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create создает новый вопрос
func (r *QuestionRepo) Create(ctx context.Context, question *entity.Question) error {
	return mapError(r.db.WithContext(ctx).Create(question).Error)
}

// CreateBatch создает пакет вопросов; существующие ID пропускаются
func (r *QuestionRepo) CreateBatch(ctx context.Context, questions []entity.Question) (int64, error) {
	if len(questions) == 0 {
		return 0, nil
	}
	var inserted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Устанавливаем кодировку UTF-8 внутри транзакции
		if err := tx.Exec("SET CLIENT_ENCODING TO 'UTF8'").Error; err != nil {
			return err
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).CreateInBatches(&questions, 200)
		inserted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("create question batch: %w", err)
	}
	return inserted, nil
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(ctx context.Context, id string) (*entity.Question, error) {
	var question entity.Question
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&question).Error; err != nil {
		return nil, mapError(err)
	}
	return &question, nil
}

// Update обновляет вопрос
func (r *QuestionRepo) Update(ctx context.Context, question *entity.Question) error {
	return mapError(r.db.WithContext(ctx).Save(question).Error)
}

// Deactivate выключает вопрос
func (r *QuestionRepo) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&entity.Question{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike экранирует метасимволы LIKE, чтобы категория искалась как подстрока
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Find возвращает вопросы по фильтру в стабильном порядке
func (r *QuestionRepo) Find(ctx context.Context, filter repository.QuestionFilter) ([]entity.Question, error) {
	query := r.db.WithContext(ctx).Model(&entity.Question{})

	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.Aircraft != "" {
		query = query.Where("aircraft IN ?", []string{filter.Aircraft, entity.AircraftGeneral})
	}
	if filter.Category != "" {
		query = query.Where(`category ILIKE ? ESCAPE '\'`, "%"+escapeLike(filter.Category)+"%")
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var questions []entity.Question
	if err := query.Order("created_at, id").Find(&questions).Error; err != nil {
		return nil, err
	}
	for i := range questions {
		questions[i].Source = entity.SourceRemote
	}
	return questions, nil
}

// CountActive возвращает количество активных вопросов
func (r *QuestionRepo) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Question{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}
