package repository

import (
	"context"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
)

// QuestionFilter задает выборку вопросов из хранилища.
// Пустые поля не ограничивают выборку.
type QuestionFilter struct {
	Aircraft        string
	Category        string
	Difficulty      entity.Difficulty
	IncludeInactive bool
	Limit           int
	Offset          int
}

// QuestionRepository определяет методы для работы с банком вопросов
type QuestionRepository interface {
	Create(ctx context.Context, question *entity.Question) error
	// CreateBatch сохраняет вопросы, пропуская уже существующие ID; возвращает число вставленных
	CreateBatch(ctx context.Context, questions []entity.Question) (int64, error)
	GetByID(ctx context.Context, id string) (*entity.Question, error)
	Update(ctx context.Context, question *entity.Question) error
	// Deactivate выключает вопрос; вопросы не удаляются физически
	Deactivate(ctx context.Context, id string) error
	Find(ctx context.Context, filter QuestionFilter) ([]entity.Question, error)
	CountActive(ctx context.Context) (int64, error)
}
