package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(o)
}

// Difficulty: уровень сложности вопроса
type Difficulty string

const (
	DifficultyBasic        Difficulty = "basic"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid проверяет, что уровень входит в закрытый набор
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// AircraftGeneral: тег вопросов, применимых к любому типу ВС
const AircraftGeneral = "GENERAL"

// Источники, из которых вопрос попал в банк
const (
	SourceRemote   = "remote"
	SourceSnapshot = "snapshot"
	SourceStatic   = "static"
	SourceMinimal  = "minimal"
)

// RequiredOptions: количество вариантов ответа у каждого вопроса
const RequiredOptions = 4

// Question представляет вопрос банка для подготовки к квалификации на тип ВС
type Question struct {
	ID            string         `gorm:"primaryKey;size:64" json:"id"`
	Text          string         `gorm:"type:text;not null" json:"text"`
	Options       StringArray    `gorm:"type:jsonb;not null" json:"options"`
	CorrectAnswer int            `gorm:"not null" json:"correct_answer"`
	Explanation   string         `gorm:"type:text" json:"explanation"`
	Aircraft      string         `gorm:"size:32;not null;index" json:"aircraft"`
	Category      string         `gorm:"size:100;not null;index" json:"category"`
	Difficulty    Difficulty     `gorm:"size:20;not null;index" json:"difficulty"`
	References    pq.StringArray `gorm:"type:text[]" json:"references,omitempty"`
	IsActive      bool           `gorm:"not null;default:true;index" json:"is_active"`
	Source        string         `gorm:"-" json:"source,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsCorrect проверяет, является ли выбранный вариант правильным
func (q *Question) IsCorrect(selectedOption int) bool {
	return selectedOption == q.CorrectAnswer
}

// OptionsCount возвращает количество вариантов ответа
func (q *Question) OptionsCount() int {
	return len(q.Options)
}

// IsValidOption проверяет, является ли выбранный вариант допустимым
func (q *Question) IsValidOption(selectedOption int) bool {
	return selectedOption >= 0 && selectedOption < len(q.Options)
}

// IsGeneral сообщает, что вопрос не привязан к конкретному типу ВС
func (q *Question) IsGeneral() bool {
	return q.Aircraft == AircraftGeneral
}
