package examengine

import (
	"context"
	"fmt"
	"log"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/repository"
)

// LedgerReport: итог записи в журнал ошибок после сессии
type LedgerReport struct {
	Upserted int
	Resolved int64
	Failed   int
}

// ReviewLedger ведет журнал ошибок пользователя поверх репозитория
type ReviewLedger struct {
	repo  repository.MissedQuestionRepository
	clock Clock
}

// NewReviewLedger создает журнал ошибок
func NewReviewLedger(repo repository.MissedQuestionRepository, clock Clock) *ReviewLedger {
	if clock == nil {
		clock = SystemClock()
	}
	return &ReviewLedger{repo: repo, clock: clock}
}

// RecordMiss создает или обновляет запись об ошибке для пары (пользователь, вопрос)
func (l *ReviewLedger) RecordMiss(ctx context.Context, userID string, q *entity.Question, selected int) error {
	if userID == "" || q == nil {
		return nil
	}
	if err := l.repo.Upsert(ctx, entity.NewMissedQuestion(userID, q, selected, l.clock.Now())); err != nil {
		return fmt.Errorf("upsert missed question %s: %w", q.ID, err)
	}
	return nil
}

// Apply записывает итоги сессии в журнал.
// Вне режима review каждая ошибка добавляется в журнал; в режиме review правильные ответы
// снимают записи с разбора. Сбои записи логируются и не прерывают обработку.
func (l *ReviewLedger) Apply(ctx context.Context, userID string, mode entity.SessionMode, answers []entity.Answer, questions []entity.Question) LedgerReport {
	var report LedgerReport
	if userID == "" || len(answers) == 0 {
		return report
	}

	byID := make(map[string]*entity.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	if mode == entity.ModeReview {
		var resolved []string
		for _, a := range answers {
			q, ok := byID[a.QuestionID]
			if ok && q.IsCorrect(a.SelectedAnswer) {
				resolved = append(resolved, q.ID)
			}
		}
		if len(resolved) == 0 {
			return report
		}
		n, err := l.repo.Resolve(ctx, userID, resolved, l.clock.Now())
		if err != nil {
			log.Printf("[ReviewLedger] WARNING: не удалось отметить разобранные вопросы пользователя %s: %v", userID, err)
			report.Failed = len(resolved)
			return report
		}
		report.Resolved = n
		return report
	}

	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok || q.IsCorrect(a.SelectedAnswer) {
			continue
		}
		if err := l.RecordMiss(ctx, userID, q, a.SelectedAnswer); err != nil {
			log.Printf("[ReviewLedger] WARNING: %v", err)
			report.Failed++
			continue
		}
		report.Upserted++
	}
	return report
}

// UnresolvedQuestionIDs возвращает вопросы, ожидающие разбора
func (l *ReviewLedger) UnresolvedQuestionIDs(ctx context.Context, userID string) ([]string, error) {
	entries, err := l.repo.ListUnresolved(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.QuestionID)
	}
	return ids, nil
}

// Entries возвращает журнал пользователя
func (l *ReviewLedger) Entries(ctx context.Context, userID string, includeResolved bool) ([]entity.MissedQuestion, error) {
	return l.repo.ListByUser(ctx, userID, includeResolved)
}
