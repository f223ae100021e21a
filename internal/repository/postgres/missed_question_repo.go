package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
)

// MissedQuestionRepo реализует repository.MissedQuestionRepository
type MissedQuestionRepo struct {
	db *gorm.DB
}

// NewMissedQuestionRepo создает репозиторий журнала ошибок
func NewMissedQuestionRepo(db *gorm.DB) *MissedQuestionRepo {
	return &MissedQuestionRepo{db: db}
}

// Upsert вставляет запись или обновляет существующую по (user_id, question_id)
func (r *MissedQuestionRepo) Upsert(ctx context.Context, missed *entity.MissedQuestion) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"selected_answer": missed.SelectedAnswer,
			"correct_answer":  missed.CorrectAnswer,
			"category":        missed.Category,
			"difficulty":      missed.Difficulty,
			"aircraft":        missed.Aircraft,
			"question_text":   missed.QuestionText,
			"miss_count":      gorm.Expr("missed_questions.miss_count + 1"),
			"resolved":        false,
			"resolved_at":     nil,
			"last_missed_at":  missed.LastMissedAt,
			"updated_at":      time.Now(),
		}),
	}).Create(missed).Error
}

// Resolve помечает записи как разобранные
func (r *MissedQuestionRepo) Resolve(ctx context.Context, userID string, questionIDs []string, at time.Time) (int64, error) {
	if len(questionIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&entity.MissedQuestion{}).
		Where("user_id = ? AND question_id IN ? AND resolved = ?", userID, questionIDs, false).
		Updates(map[string]interface{}{
			"resolved":    true,
			"resolved_at": at,
		})
	return res.RowsAffected, res.Error
}

// ListUnresolved возвращает неразобранные ошибки пользователя, свежие первыми
func (r *MissedQuestionRepo) ListUnresolved(ctx context.Context, userID string) ([]entity.MissedQuestion, error) {
	return r.ListByUser(ctx, userID, false)
}

// ListByUser возвращает журнал пользователя
func (r *MissedQuestionRepo) ListByUser(ctx context.Context, userID string, includeResolved bool) ([]entity.MissedQuestion, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !includeResolved {
		query = query.Where("resolved = ?", false)
	}
	var items []entity.MissedQuestion
	if err := query.Order("last_missed_at DESC, id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
