package examengine

import (
	"time"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
)

// QuestionView: вопрос в представлении для клиента.
// Правильный ответ и пояснение открываются только после подтверждения или завершения сессии.
type QuestionView struct {
	ID             string            `json:"id"`
	Text           string            `json:"text"`
	Options        []string          `json:"options"`
	Category       string            `json:"category"`
	Aircraft       string            `json:"aircraft"`
	Difficulty     entity.Difficulty `json:"difficulty"`
	PendingAnswer  *int              `json:"pending_answer,omitempty"`
	SelectedAnswer *int              `json:"selected_answer,omitempty"`
	Revealed       bool              `json:"revealed"`
	IsCorrect      *bool             `json:"is_correct,omitempty"`
	CorrectAnswer  *int              `json:"correct_answer,omitempty"`
	Explanation    string            `json:"explanation,omitempty"`
}

// SessionView: снимок состояния сессии
type SessionView struct {
	ID           string                `json:"id"`
	UserID       string                `json:"user_id"`
	Mode         entity.SessionMode    `json:"mode"`
	State        string                `json:"state"`
	Abandoned    bool                  `json:"abandoned,omitempty"`
	CurrentIndex int                   `json:"current_index"`
	Total        int                   `json:"total"`
	Answered     int                   `json:"answered"`
	TimeLimitSec int                   `json:"time_limit_sec"`
	RemainingSec int                   `json:"remaining_sec"`
	PassingScore int                   `json:"passing_score"`
	StartedAt    time.Time             `json:"started_at"`
	Questions    []QuestionView        `json:"questions"`
	Result       *entity.SessionResult `json:"result,omitempty"`
}

// Snapshot возвращает согласованный снимок состояния сессии
func (s *Session) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := SessionView{
		ID:           s.id,
		UserID:       s.userID,
		Mode:         s.behavior.mode(),
		State:        s.state.String(),
		Abandoned:    s.abandoned,
		CurrentIndex: s.current,
		Total:        len(s.questions),
		Answered:     len(s.answers),
		TimeLimitSec: s.timeLimit,
		RemainingSec: s.remaining,
		PassingScore: s.passingScore,
		StartedAt:    s.startedAt,
		Questions:    make([]QuestionView, 0, len(s.questions)),
		Result:       copyResult(s.result),
	}

	completed := s.state == StateCompleted
	for i := range s.questions {
		q := &s.questions[i]
		qv := QuestionView{
			ID:         q.ID,
			Text:       q.Text,
			Options:    append([]string(nil), q.Options...),
			Category:   q.Category,
			Aircraft:   q.Aircraft,
			Difficulty: q.Difficulty,
		}
		if p, ok := s.pending[q.ID]; ok {
			qv.PendingAnswer = &p
		}
		if a, ok := s.answers[q.ID]; ok {
			selected := a.SelectedAnswer
			qv.SelectedAnswer = &selected
		}
		if completed || s.revealed[q.ID] {
			qv.Revealed = true
			correct := q.CorrectAnswer
			qv.CorrectAnswer = &correct
			qv.Explanation = q.Explanation
			if qv.SelectedAnswer != nil {
				isCorrect := q.IsCorrect(*qv.SelectedAnswer)
				qv.IsCorrect = &isCorrect
			}
		}
		view.Questions = append(view.Questions, qv)
	}
	return view
}
