package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
)

// SessionRecordRepo реализует repository.SessionRecordRepository
type SessionRecordRepo struct {
	db *gorm.DB
}

// NewSessionRecordRepo создает репозиторий записей о сессиях
func NewSessionRecordRepo(db *gorm.DB) *SessionRecordRepo {
	return &SessionRecordRepo{db: db}
}

// Create сохраняет запись о начале сессии
func (r *SessionRecordRepo) Create(ctx context.Context, record *entity.SessionRecord) error {
	return mapError(r.db.WithContext(ctx).Create(record).Error)
}

// Complete сохраняет итоги. Если стартовая запись не успела сохраниться, запись создается.
func (r *SessionRecordRepo) Complete(ctx context.Context, record *entity.SessionRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entity.SessionRecord
		err := tx.Where("id = ?", record.ID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(record).Error
		}
		if err != nil {
			return err
		}
		if existing.Status == entity.SessionStatusCompleted {
			return nil
		}
		return tx.Model(&existing).Updates(map[string]interface{}{
			"status":          entity.SessionStatusCompleted,
			"answers":         record.Answers,
			"score":           record.Score,
			"correct_count":   record.CorrectCount,
			"total_questions": record.TotalQuestions,
			"time_spent_sec":  record.TimeSpentSec,
			"passed":          record.Passed,
			"completed_at":    record.CompletedAt,
		}).Error
	})
}

// GetByID возвращает запись по ID
func (r *SessionRecordRepo) GetByID(ctx context.Context, id string) (*entity.SessionRecord, error) {
	var record entity.SessionRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, mapError(err)
	}
	return &record, nil
}

// ListByUser возвращает историю сессий пользователя с пагинацией
func (r *SessionRecordRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]entity.SessionRecord, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&entity.SessionRecord{}).Where("user_id = ?", userID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []entity.SessionRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
