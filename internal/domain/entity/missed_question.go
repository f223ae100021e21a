package entity

import (
	"time"
)

// MissedQuestion: запись журнала ошибок пользователя.
// Одна запись на пару (пользователь, вопрос); повторная ошибка обновляет ее.
type MissedQuestion struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         string     `gorm:"size:64;not null;uniqueIndex:idx_missed_user_question" json:"user_id"`
	QuestionID     string     `gorm:"size:64;not null;uniqueIndex:idx_missed_user_question" json:"question_id"`
	SelectedAnswer int        `gorm:"not null" json:"selected_answer"`
	CorrectAnswer  int        `gorm:"not null" json:"correct_answer"`
	Category       string     `gorm:"size:100" json:"category"`
	Difficulty     Difficulty `gorm:"size:20" json:"difficulty"`
	Aircraft       string     `gorm:"size:32" json:"aircraft"`
	QuestionText   string     `gorm:"type:text" json:"question_text"`
	MissCount      int        `gorm:"not null;default:1" json:"miss_count"`
	Resolved       bool       `gorm:"not null;default:false;index" json:"resolved"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	LastMissedAt   time.Time  `gorm:"not null" json:"last_missed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (MissedQuestion) TableName() string {
	return "missed_questions"
}

// NewMissedQuestion строит запись журнала по неверному ответу
func NewMissedQuestion(userID string, q *Question, selected int, at time.Time) *MissedQuestion {
	return &MissedQuestion{
		UserID:         userID,
		QuestionID:     q.ID,
		SelectedAnswer: selected,
		CorrectAnswer:  q.CorrectAnswer,
		Category:       q.Category,
		Difficulty:     q.Difficulty,
		Aircraft:       q.Aircraft,
		QuestionText:   q.Text,
		MissCount:      1,
		LastMissedAt:   at,
	}
}
