package repository

import (
	"context"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
)

// SessionRecordRepository определяет методы для записей о сессиях
type SessionRecordRepository interface {
	Create(ctx context.Context, record *entity.SessionRecord) error
	// Complete сохраняет итоги сессии; повторный вызов для завершенной записи ничего не меняет
	Complete(ctx context.Context, record *entity.SessionRecord) error
	GetByID(ctx context.Context, id string) (*entity.SessionRecord, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]entity.SessionRecord, int64, error)
}
