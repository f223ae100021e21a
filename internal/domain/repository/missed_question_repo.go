package repository

import (
	"context"
	"time"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
)

// MissedQuestionRepository определяет методы журнала ошибок
type MissedQuestionRepository interface {
	// Upsert создает запись или обновляет существующую по (user_id, question_id):
	// увеличивает счетчик ошибок и снимает отметку resolved.
	Upsert(ctx context.Context, missed *entity.MissedQuestion) error
	// Resolve помечает записи пользователя по указанным вопросам как разобранные
	Resolve(ctx context.Context, userID string, questionIDs []string, at time.Time) (int64, error)
	ListUnresolved(ctx context.Context, userID string) ([]entity.MissedQuestion, error)
	ListByUser(ctx context.Context, userID string, includeResolved bool) ([]entity.MissedQuestion, error)
}
