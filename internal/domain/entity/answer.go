package entity

import "time"

// SessionMode: режим экзаменационной сессии
type SessionMode string

const (
	ModePractice SessionMode = "practice"
	ModeTimed    SessionMode = "timed"
	ModeReview   SessionMode = "review"
)

// Valid проверяет, что режим известен
func (m SessionMode) Valid() bool {
	switch m {
	case ModePractice, ModeTimed, ModeReview:
		return true
	}
	return false
}

// Answer: зафиксированный ответ на вопрос внутри сессии
type Answer struct {
	QuestionID     string `json:"question_id"`
	SelectedAnswer int    `json:"selected_answer"`
	TimeSpentSec   int    `json:"time_spent_sec"`
	IsCorrect      bool   `json:"is_correct"`
}

// IncorrectAnswer описывает ошибку в итогах сессии
type IncorrectAnswer struct {
	QuestionID     string `json:"question_id"`
	QuestionText   string `json:"question_text"`
	SelectedAnswer int    `json:"selected_answer"`
	CorrectAnswer  int    `json:"correct_answer"`
	Explanation    string `json:"explanation,omitempty"`
	Category       string `json:"category"`
}

// SessionResult: итог завершенной сессии
type SessionResult struct {
	SessionID        string            `json:"session_id"`
	Mode             SessionMode       `json:"mode"`
	Score            int               `json:"score"`
	CorrectCount     int               `json:"correct_count"`
	TotalQuestions   int               `json:"total_questions"`
	TimeSpentSec     int               `json:"time_spent_sec"`
	PassingScore     int               `json:"passing_score"`
	Passed           bool              `json:"passed"`
	IncorrectAnswers []IncorrectAnswer `json:"incorrect_answers"`
	CompletedAt      time.Time         `json:"completed_at"`
}
