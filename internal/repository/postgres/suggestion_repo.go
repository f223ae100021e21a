package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	apperrors "github.com/RoutinizeWellness/aviate-ace-sub001/internal/pkg/errors"
)

// SuggestionRepo реализует repository.SuggestionRepository
type SuggestionRepo struct {
	db *gorm.DB
}

// NewSuggestionRepo создает репозиторий предложенных вопросов
func NewSuggestionRepo(db *gorm.DB) *SuggestionRepo {
	return &SuggestionRepo{db: db}
}

// Create сохраняет предложение
func (r *SuggestionRepo) Create(ctx context.Context, suggestion *entity.QuestionSuggestion) error {
	return mapError(r.db.WithContext(ctx).Create(suggestion).Error)
}

// GetByID возвращает предложение по ID
func (r *SuggestionRepo) GetByID(ctx context.Context, id uint) (*entity.QuestionSuggestion, error) {
	var s entity.QuestionSuggestion
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &s, nil
}

// ListByStatus возвращает предложения с указанным статусом; пустой статус, все
func (r *SuggestionRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]entity.QuestionSuggestion, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.QuestionSuggestion{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []entity.QuestionSuggestion
	if err := query.Order("created_at").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update сохраняет изменения предложения
func (r *SuggestionRepo) Update(ctx context.Context, suggestion *entity.QuestionSuggestion) error {
	return mapError(r.db.WithContext(ctx).Save(suggestion).Error)
}

// Approve создает вопрос и переводит предложение в approved одной транзакцией.
// Статус проверяется в условии UPDATE, чтобы параллельная модерация получила конфликт.
func (r *SuggestionRepo) Approve(ctx context.Context, suggestion *entity.QuestionSuggestion, question *entity.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(question).Error; err != nil {
			return mapError(err)
		}
		res := tx.Model(&entity.QuestionSuggestion{}).
			Where("id = ? AND status IN ?", suggestion.ID, []string{entity.SuggestionPending, entity.SuggestionNeedsReview}).
			Updates(map[string]interface{}{
				"status":        entity.SuggestionApproved,
				"reviewer_note": suggestion.ReviewerNote,
				"question_id":   question.ID,
				"reviewed_at":   suggestion.ReviewedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrConflict
		}
		suggestion.Status = entity.SuggestionApproved
		suggestion.QuestionID = &question.ID
		return nil
	})
}
