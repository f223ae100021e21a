package entity

import "time"

// DefaultPassingScore: проходной балл в процентах, если у экзамена он не задан
const DefaultPassingScore = 75

// Exam: именованная группа вопросов с параметрами по умолчанию для сессии
type Exam struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Title            string    `gorm:"size:150;not null" json:"title"`
	Description      string    `gorm:"size:1000" json:"description"`
	Aircraft         string    `gorm:"size:32;not null;default:'ALL'" json:"aircraft"`
	Category         string    `gorm:"size:255" json:"category"`
	Difficulty       string    `gorm:"size:20;not null;default:'all'" json:"difficulty"`
	TimeLimitMinutes int       `gorm:"not null;default:0" json:"time_limit_minutes"`
	PassingScore     int       `gorm:"not null;default:75" json:"passing_score"`
	QuestionCount    int       `gorm:"not null;default:20" json:"question_count"`
	IsActive         bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Exam) TableName() string {
	return "exams"
}

// EffectivePassingScore возвращает проходной балл с учетом значения по умолчанию
func (e *Exam) EffectivePassingScore() int {
	if e == nil || e.PassingScore <= 0 {
		return DefaultPassingScore
	}
	return e.PassingScore
}

// TimeLimitSeconds возвращает лимит времени в секундах; 0, без ограничения
func (e *Exam) TimeLimitSeconds() int {
	if e == nil || e.TimeLimitMinutes <= 0 {
		return 0
	}
	return e.TimeLimitMinutes * 60
}
