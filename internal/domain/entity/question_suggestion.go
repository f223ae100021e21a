package entity

import (
	"time"

	"github.com/lib/pq"
)

// Статусы модерации предложенных вопросов
const (
	SuggestionPending     = "pending"
	SuggestionApproved    = "approved"
	SuggestionRejected    = "rejected"
	SuggestionNeedsReview = "needs_review"
)

// QuestionSuggestion: вопрос, предложенный пользователем и ожидающий модерации
type QuestionSuggestion struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        string         `gorm:"size:64;not null;index" json:"user_id"`
	Text          string         `gorm:"type:text;not null" json:"text"`
	Options       StringArray    `gorm:"type:jsonb;not null" json:"options"`
	CorrectAnswer int            `gorm:"not null" json:"correct_answer"`
	Explanation   string         `gorm:"type:text" json:"explanation"`
	Aircraft      string         `gorm:"size:32;not null" json:"aircraft"`
	Category      string         `gorm:"size:100;not null" json:"category"`
	Difficulty    Difficulty     `gorm:"size:20;not null" json:"difficulty"`
	References    pq.StringArray `gorm:"type:text[]" json:"references,omitempty"`
	Status        string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ReviewerNote  string         `gorm:"size:1000" json:"reviewer_note,omitempty"`
	QuestionID    *string        `gorm:"size:64" json:"question_id,omitempty"`
	ReviewedAt    *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (QuestionSuggestion) TableName() string {
	return "question_suggestions"
}

// CanTransitionTo проверяет допустимость перехода статуса модерации
func (s *QuestionSuggestion) CanTransitionTo(next string) bool {
	switch s.Status {
	case SuggestionPending:
		return next == SuggestionApproved || next == SuggestionRejected || next == SuggestionNeedsReview
	case SuggestionNeedsReview:
		return next == SuggestionApproved || next == SuggestionRejected
	}
	return false
}
