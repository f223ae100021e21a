package examengine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/repository"
	apperrors "github.com/RoutinizeWellness/aviate-ace-sub001/internal/pkg/errors"
)

// QuestionStats: счетчики ответов на вопрос
type QuestionStats struct {
	QuestionID string `json:"question_id"`
	Answered   int64  `json:"answered"`
	Correct    int64  `json:"correct"`
}

// StatsRecorder ведет счетчики ответов по вопросам в Redis
type StatsRecorder struct {
	cache repository.CacheRepository
}

// NewStatsRecorder создает StatsRecorder
func NewStatsRecorder(cache repository.CacheRepository) *StatsRecorder {
	return &StatsRecorder{cache: cache}
}

func answeredKey(questionID string) string {
	return fmt.Sprintf("stats:question:%s:answered", questionID)
}

func correctKey(questionID string) string {
	return fmt.Sprintf("stats:question:%s:correct", questionID)
}

// RecordAnswers увеличивает счетчики; ошибки Redis только логируются
func (r *StatsRecorder) RecordAnswers(ctx context.Context, answers []entity.Answer) {
	for _, a := range answers {
		if _, err := r.cache.Increment(ctx, answeredKey(a.QuestionID)); err != nil {
			log.Printf("[Stats] WARNING: не удалось обновить счетчик вопроса %s: %v", a.QuestionID, err)
			return
		}
		if !a.IsCorrect {
			continue
		}
		if _, err := r.cache.Increment(ctx, correctKey(a.QuestionID)); err != nil {
			log.Printf("[Stats] WARNING: не удалось обновить счетчик вопроса %s: %v", a.QuestionID, err)
			return
		}
	}
}

// Get возвращает счетчики вопроса; отсутствующие счетчики равны нулю
func (r *StatsRecorder) Get(ctx context.Context, questionID string) (QuestionStats, error) {
	stats := QuestionStats{QuestionID: questionID}
	var err error
	if stats.Answered, err = r.counter(ctx, answeredKey(questionID)); err != nil {
		return stats, err
	}
	if stats.Correct, err = r.counter(ctx, correctKey(questionID)); err != nil {
		return stats, err
	}
	return stats, nil
}

func (r *StatsRecorder) counter(ctx context.Context, key string) (int64, error) {
	raw, err := r.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse counter %s: %w", key, err)
	}
	return n, nil
}
