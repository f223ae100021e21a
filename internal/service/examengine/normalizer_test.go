package examengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	apperrors "github.com/RoutinizeWellness/aviate-ace-sub001/internal/pkg/errors"
)

func TestNormalizeRecord_Valid(t *testing.T) {
	raw := RawQuestion{
		Question:     "  What powers the yellow hydraulic system?  ",
		Options:      []string{" Engine 2 EDP ", "Engine 1 EDP", "RAT", "PTU"},
		Correct:      intPtr(0),
		AircraftType: "a320",
		Category:     " Hydraulics ",
		Difficulty:   "medium",
	}

	q, err := NormalizeRecord(raw, entity.SourceStatic)
	require.NoError(t, err)

	assert.Equal(t, "What powers the yellow hydraulic system?", q.Text)
	assert.Equal(t, entity.StringArray{"Engine 2 EDP", "Engine 1 EDP", "RAT", "PTU"}, q.Options)
	assert.Equal(t, 0, q.CorrectAnswer)
	assert.Equal(t, "A320_FAMILY", q.Aircraft)
	assert.Equal(t, "Hydraulics", q.Category)
	assert.Equal(t, entity.DifficultyIntermediate, q.Difficulty)
	assert.Equal(t, entity.SourceStatic, q.Source)
	assert.True(t, q.IsActive, "Без поля active вопрос активен")
	assert.NotEmpty(t, q.ID, "ID генерируется, если отсутствует")
}

func TestNormalizeRecord_Defaults(t *testing.T) {
	q, err := NormalizeRecord(RawQuestion{
		ID:            "q-1",
		Text:          "Text",
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: intPtr(3),
		Difficulty:    "impossible",
	}, entity.SourceStatic)
	require.NoError(t, err)

	assert.Equal(t, DefaultCategory, q.Category, "Пустая категория: Aircraft General")
	assert.Equal(t, entity.AircraftGeneral, q.Aircraft, "Пустой тип ВС: GENERAL")
	assert.Equal(t, entity.DifficultyIntermediate, q.Difficulty, "Неизвестная сложность: intermediate")
	assert.Equal(t, "q-1", q.ID)
}

func TestNormalizeRecord_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  RawQuestion
	}{
		{"три варианта", RawQuestion{Text: "t", Options: []string{"a", "b", "c"}, CorrectAnswer: intPtr(0)}},
		{"пять вариантов", RawQuestion{Text: "t", Options: []string{"a", "b", "c", "d", "e"}, CorrectAnswer: intPtr(0)}},
		{"пустой вариант", RawQuestion{Text: "t", Options: []string{"a", " ", "c", "d"}, CorrectAnswer: intPtr(0)}},
		{"индекс ответа вне диапазона", RawQuestion{Text: "t", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: intPtr(4)}},
		{"нет правильного ответа", RawQuestion{Text: "t", Options: []string{"a", "b", "c", "d"}}},
		{"пустой текст", RawQuestion{ID: "x", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: intPtr(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeRecord(tt.raw, entity.SourceStatic)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestDeterministicQuestionID_Stable(t *testing.T) {
	opts := []string{"a", "b", "c", "d"}
	id1 := DeterministicQuestionID("Same text", opts)
	id2 := DeterministicQuestionID("same TEXT", opts)
	id3 := DeterministicQuestionID("Other text", opts)

	assert.Equal(t, id1, id2, "ID не зависит от регистра текста")
	assert.NotEqual(t, id1, id3)
}

func TestCanonicalize_Idempotent(t *testing.T) {
	q := makeQuestion("", " Electrical ", "a321", "EASY")
	once, err := Canonicalize(q)
	require.NoError(t, err)
	twice, err := Canonicalize(once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Equal(t, entity.DifficultyBasic, once.Difficulty)
}

func TestNormalizeBatch_DropsInvalidAndDuplicates(t *testing.T) {
	valid := makeQuestion("q1", "Fuel", "B777", entity.DifficultyBasic)
	dup := makeQuestion("q1", "Fuel", "B777", entity.DifficultyAdvanced)
	broken := makeQuestion("q2", "Fuel", "B777", entity.DifficultyBasic)
	broken.Options = entity.StringArray{"only", "two"}

	out, dropped := NormalizeBatch([]entity.Question{valid, dup, broken})

	require.Len(t, out, 1)
	assert.Equal(t, "q1", out[0].ID)
	assert.Equal(t, entity.DifficultyBasic, out[0].Difficulty, "Сохраняется первая запись с данным ID")
	assert.Equal(t, 2, dropped)
}
