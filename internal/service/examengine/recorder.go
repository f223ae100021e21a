package examengine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/repository"
)

// SessionInfo: неизменяемые сведения о сессии для записи в хранилище
type SessionInfo struct {
	ID          string
	UserID      string
	ExamID      uint
	Mode        entity.SessionMode
	Criteria    Criteria
	QuestionIDs []string
	StartedAt   time.Time
}

// RecordWriter сохраняет записи о сессиях в репозиторий
type RecordWriter struct {
	repo repository.SessionRecordRepository
}

// NewRecordWriter создает RecordWriter
func NewRecordWriter(repo repository.SessionRecordRepository) *RecordWriter {
	return &RecordWriter{repo: repo}
}

// RecordStart сохраняет запись о начатой сессии
func (w *RecordWriter) RecordStart(ctx context.Context, info SessionInfo) error {
	record, err := newSessionRecord(info)
	if err != nil {
		return err
	}
	if err := w.repo.Create(ctx, record); err != nil {
		return fmt.Errorf("create session record %s: %w", info.ID, err)
	}
	return nil
}

// RecordCompletion сохраняет итоги; запись создается, если старт не был сохранен
func (w *RecordWriter) RecordCompletion(ctx context.Context, info SessionInfo, answers []entity.Answer, result *entity.SessionResult) error {
	record, err := newSessionRecord(info)
	if err != nil {
		return err
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	completedAt := result.CompletedAt
	record.Status = entity.SessionStatusCompleted
	record.Answers = datatypes.JSON(answersJSON)
	record.Score = result.Score
	record.CorrectCount = result.CorrectCount
	record.TotalQuestions = result.TotalQuestions
	record.TimeSpentSec = result.TimeSpentSec
	record.Passed = result.Passed
	record.CompletedAt = &completedAt

	if err := w.repo.Complete(ctx, record); err != nil {
		return fmt.Errorf("complete session record %s: %w", info.ID, err)
	}
	return nil
}

func newSessionRecord(info SessionInfo) (*entity.SessionRecord, error) {
	criteriaJSON, err := json.Marshal(info.Criteria.Raw())
	if err != nil {
		return nil, fmt.Errorf("marshal criteria: %w", err)
	}
	idsJSON, err := json.Marshal(info.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal question ids: %w", err)
	}

	record := &entity.SessionRecord{
		ID:          info.ID,
		UserID:      info.UserID,
		Mode:        info.Mode,
		Status:      entity.SessionStatusStarted,
		Criteria:    datatypes.JSON(criteriaJSON),
		QuestionIDs: datatypes.JSON(idsJSON),
		StartedAt:   info.StartedAt,
	}
	if info.ExamID != 0 {
		examID := info.ExamID
		record.ExamID = &examID
	}
	return record, nil
}
