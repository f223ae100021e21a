package examengine

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	apperrors "github.com/RoutinizeWellness/aviate-ace-sub001/internal/pkg/errors"
)

// Пространство имен для детерминированных ID вопросов без собственного идентификатора
var questionNamespace = uuid.MustParse("5b0f3c1e-8a4d-4f6b-9d2e-7c1a2b3d4e5f")

// DefaultCategory присваивается вопросам без категории
const DefaultCategory = "Aircraft General"

// RawQuestion: запись вопроса из внешнего источника (встроенные наборы, импорт).
// Наборы разных поколений используют разные имена полей, поэтому часть полей дублируется.
type RawQuestion struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correct_answer"`
	Correct       *int     `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Aircraft      string   `json:"aircraft"`
	AircraftType  string   `json:"aircraft_type"`
	Category      string   `json:"category"`
	Difficulty    string   `json:"difficulty"`
	References    []string `json:"references"`
	Active        *bool    `json:"active"`
}

// questionShape: правила валидации нормализованного вопроса
type questionShape struct {
	ID            string   `validate:"required,max=64"`
	Text          string   `validate:"required"`
	Options       []string `validate:"len=4,dive,required"`
	CorrectAnswer int      `validate:"min=0,max=3"`
	Aircraft      string   `validate:"required"`
	Difficulty    string   `validate:"oneof=basic intermediate advanced"`
}

var validate = validator.New()

// NormalizeRecord приводит сырую запись к entity.Question.
// Записи без ровно четырех вариантов или с индексом ответа вне [0,3] отклоняются с ErrValidation.
func NormalizeRecord(raw RawQuestion, source string) (entity.Question, error) {
	text := raw.Text
	if strings.TrimSpace(text) == "" {
		text = raw.Question
	}
	correct := -1
	switch {
	case raw.CorrectAnswer != nil:
		correct = *raw.CorrectAnswer
	case raw.Correct != nil:
		correct = *raw.Correct
	}
	aircraft := raw.Aircraft
	if aircraft == "" {
		aircraft = raw.AircraftType
	}
	active := true
	if raw.Active != nil {
		active = *raw.Active
	}

	q := entity.Question{
		ID:            raw.ID,
		Text:          text,
		Options:       entity.StringArray(raw.Options),
		CorrectAnswer: correct,
		Explanation:   raw.Explanation,
		Aircraft:      aircraft,
		Category:      raw.Category,
		Difficulty:    entity.Difficulty(raw.Difficulty),
		References:    raw.References,
		IsActive:      active,
		Source:        source,
	}
	return Canonicalize(q)
}

// Canonicalize нормализует уже типизированный вопрос и проверяет его форму.
// Функция идемпотентна.
func Canonicalize(q entity.Question) (entity.Question, error) {
	q.Text = strings.TrimSpace(q.Text)
	q.Explanation = strings.TrimSpace(q.Explanation)
	q.Category = strings.TrimSpace(q.Category)
	if q.Category == "" {
		q.Category = DefaultCategory
	}
	q.Aircraft = canonicalQuestionAircraft(q.Aircraft)
	q.Difficulty = CanonicalDifficulty(string(q.Difficulty))

	options := make(entity.StringArray, len(q.Options))
	for i, o := range q.Options {
		options[i] = strings.TrimSpace(o)
	}
	q.Options = options

	q.ID = strings.TrimSpace(q.ID)
	if q.ID == "" {
		q.ID = DeterministicQuestionID(q.Text, q.Options)
	}

	shape := questionShape{
		ID:            q.ID,
		Text:          q.Text,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
		Aircraft:      q.Aircraft,
		Difficulty:    string(q.Difficulty),
	}
	if err := validate.Struct(shape); err != nil {
		return entity.Question{}, fmt.Errorf("%w: question %q: %v", apperrors.ErrValidation, q.ID, err)
	}
	return q, nil
}

// NormalizeBatch нормализует записи, отбрасывая невалидные. Возвращает число отброшенных.
func NormalizeBatch(records []entity.Question) ([]entity.Question, int) {
	out := make([]entity.Question, 0, len(records))
	dropped := 0
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		q, err := Canonicalize(r)
		if err != nil {
			dropped++
			continue
		}
		if seen[q.ID] {
			dropped++
			continue
		}
		seen[q.ID] = true
		out = append(out, q)
	}
	return out, dropped
}

// DeterministicQuestionID строит стабильный ID по тексту и вариантам ответа
func DeterministicQuestionID(text string, options []string) string {
	name := strings.ToLower(text) + "\x1f" + strings.Join(options, "\x1f")
	return uuid.NewSHA1(questionNamespace, []byte(name)).String()
}

// CanonicalDifficulty сводит синонимы к трем уровням; неизвестное значение, intermediate
func CanonicalDifficulty(raw string) entity.Difficulty {
	d := entity.Difficulty(strings.ToLower(strings.TrimSpace(raw)))
	if d.Valid() {
		return d
	}
	if alias, ok := difficultyAliases[string(d)]; ok {
		return alias
	}
	return entity.DifficultyIntermediate
}

func canonicalQuestionAircraft(raw string) string {
	a := NormalizeAircraft(raw)
	if a == AircraftAll || a == entity.AircraftGeneral {
		return entity.AircraftGeneral
	}
	return a
}
