package dto

import (
	"time"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/handler/helper"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/service"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/service/examengine"
)

// SessionQuestionResponse представляет вопрос сессии в формате для ответа клиенту
type SessionQuestionResponse struct {
	ID             string                  `json:"id"`
	Text           string                  `json:"text"`
	Options        []helper.QuestionOption `json:"options"`
	Category       string                  `json:"category"`
	Aircraft       string                  `json:"aircraft"`
	Difficulty     entity.Difficulty       `json:"difficulty"`
	PendingAnswer  *int                    `json:"pending_answer,omitempty"`
	SelectedAnswer *int                    `json:"selected_answer,omitempty"`
	Revealed       bool                    `json:"revealed"`
	IsCorrect      *bool                   `json:"is_correct,omitempty"`
	CorrectAnswer  *int                    `json:"correct_answer,omitempty"`
	Explanation    string                  `json:"explanation,omitempty"`
}

// SessionResponse представляет состояние сессии
type SessionResponse struct {
	ID           string                    `json:"id"`
	Mode         entity.SessionMode        `json:"mode"`
	State        string                    `json:"state"`
	Abandoned    bool                      `json:"abandoned,omitempty"`
	CurrentIndex int                       `json:"current_index"`
	Total        int                       `json:"total"`
	Answered     int                       `json:"answered"`
	TimeLimitSec int                       `json:"time_limit_sec"`
	RemainingSec int                       `json:"remaining_sec"`
	PassingScore int                       `json:"passing_score"`
	StartedAt    time.Time                 `json:"started_at"`
	Questions    []SessionQuestionResponse `json:"questions"`
	Result       *entity.SessionResult     `json:"result,omitempty"`
}

// StartSessionResponse: ответ на старт сессии
type StartSessionResponse struct {
	Session    *SessionResponse `json:"session"`
	Stage      string           `json:"selection_stage"`
	PoolSize   int              `json:"pool_size"`
	FromLedger bool             `json:"from_ledger"`
}

// PreviewResponse: результат отбора без создания сессии
type PreviewResponse struct {
	Criteria  examengine.RawCriteria  `json:"criteria"`
	Stage     string                  `json:"selection_stage"`
	PoolSize  int                     `json:"pool_size"`
	Questions []PreviewQuestionResult `json:"questions"`
}

// PreviewQuestionResult: краткое описание отобранного вопроса
type PreviewQuestionResult struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Category   string            `json:"category"`
	Aircraft   string            `json:"aircraft"`
	Difficulty entity.Difficulty `json:"difficulty"`
}

// NewSessionResponse создает DTO из снимка сессии
func NewSessionResponse(view examengine.SessionView) *SessionResponse {
	questions := make([]SessionQuestionResponse, len(view.Questions))
	for i, q := range view.Questions {
		questions[i] = SessionQuestionResponse{
			ID:             q.ID,
			Text:           q.Text,
			Options:        helper.ConvertOptionsToObjects(q.Options),
			Category:       q.Category,
			Aircraft:       q.Aircraft,
			Difficulty:     q.Difficulty,
			PendingAnswer:  q.PendingAnswer,
			SelectedAnswer: q.SelectedAnswer,
			Revealed:       q.Revealed,
			IsCorrect:      q.IsCorrect,
			CorrectAnswer:  q.CorrectAnswer,
			Explanation:    q.Explanation,
		}
	}
	return &SessionResponse{
		ID:           view.ID,
		Mode:         view.Mode,
		State:        view.State,
		Abandoned:    view.Abandoned,
		CurrentIndex: view.CurrentIndex,
		Total:        view.Total,
		Answered:     view.Answered,
		TimeLimitSec: view.TimeLimitSec,
		RemainingSec: view.RemainingSec,
		PassingScore: view.PassingScore,
		StartedAt:    view.StartedAt,
		Questions:    questions,
		Result:       view.Result,
	}
}

// NewStartSessionResponse создает DTO для стартовавшей сессии
func NewStartSessionResponse(started *service.StartedSession) *StartSessionResponse {
	return &StartSessionResponse{
		Session:    NewSessionResponse(started.Session),
		Stage:      started.Stage,
		PoolSize:   started.PoolSize,
		FromLedger: started.FromLedger,
	}
}

// NewPreviewResponse создает DTO для предпросмотра отбора
func NewPreviewResponse(criteria examengine.Criteria, selection examengine.Selection) *PreviewResponse {
	questions := make([]PreviewQuestionResult, len(selection.Questions))
	for i, q := range selection.Questions {
		questions[i] = PreviewQuestionResult{
			ID:         q.ID,
			Text:       q.Text,
			Category:   q.Category,
			Aircraft:   q.Aircraft,
			Difficulty: q.Difficulty,
		}
	}
	return &PreviewResponse{
		Criteria:  criteria.Raw(),
		Stage:     selection.Stage,
		PoolSize:  selection.PoolSize,
		Questions: questions,
	}
}

// PaginatedResponse представляет пагинированный список
type PaginatedResponse struct {
	Items   interface{} `json:"items"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
}

// NewPaginatedResponse создает пагинированный ответ
func NewPaginatedResponse(items interface{}, total int64, page, perPage int) *PaginatedResponse {
	return &PaginatedResponse{Items: items, Total: total, Page: page, PerPage: perPage}
}
