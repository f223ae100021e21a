package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Статусы записи о сессии
const (
	SessionStatusStarted   = "started"
	SessionStatusCompleted = "completed"
)

// SessionRecord: сохраненная запись о старте и завершении экзаменационной сессии
type SessionRecord struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	UserID         string         `gorm:"size:64;not null;index" json:"user_id"`
	ExamID         *uint          `gorm:"index" json:"exam_id,omitempty"`
	Mode           SessionMode    `gorm:"size:20;not null" json:"mode"`
	Status         string         `gorm:"size:20;not null;default:'started'" json:"status"`
	Criteria       datatypes.JSON `gorm:"type:jsonb" json:"criteria"`
	QuestionIDs    datatypes.JSON `gorm:"type:jsonb" json:"question_ids"`
	Answers        datatypes.JSON `gorm:"type:jsonb" json:"answers,omitempty"`
	Score          int            `gorm:"not null;default:0" json:"score"`
	CorrectCount   int            `gorm:"not null;default:0" json:"correct_count"`
	TotalQuestions int            `gorm:"not null;default:0" json:"total_questions"`
	TimeSpentSec   int            `gorm:"not null;default:0" json:"time_spent_sec"`
	Passed         bool           `gorm:"not null;default:false" json:"passed"`
	StartedAt      time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (SessionRecord) TableName() string {
	return "exam_sessions"
}
