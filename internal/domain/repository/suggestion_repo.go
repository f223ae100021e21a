package repository

import (
	"context"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
)

// SuggestionRepository определяет методы для предложенных пользователями вопросов
type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *entity.QuestionSuggestion) error
	GetByID(ctx context.Context, id uint) (*entity.QuestionSuggestion, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]entity.QuestionSuggestion, int64, error)
	Update(ctx context.Context, suggestion *entity.QuestionSuggestion) error
	// Approve в одной транзакции создает вопрос и обновляет предложение
	Approve(ctx context.Context, suggestion *entity.QuestionSuggestion, question *entity.Question) error
}
