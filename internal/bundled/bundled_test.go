package bundled

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	apperrors "github.com/RoutinizeWellness/aviate-ace-sub001/internal/pkg/errors"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/service/examengine"
)

func TestStandardSets_AllRecordsNormalize(t *testing.T) {
	sets, err := StandardSets()
	require.NoError(t, err)
	require.NotEmpty(t, sets)

	seen := map[string]bool{}
	for _, set := range sets {
		for _, raw := range set.Questions {
			q, err := examengine.NormalizeRecord(raw, entity.SourceStatic)
			require.NoError(t, err, "Набор %s, вопрос %s", set.Name, raw.ID)
			assert.False(t, seen[q.ID], "Дубликат ID %s", q.ID)
			seen[q.ID] = true
		}
	}
}

func TestStandardSets_SetAircraftApplied(t *testing.T) {
	sets, err := StandardSets()
	require.NoError(t, err)

	for _, set := range sets {
		if set.Aircraft == "" {
			continue
		}
		for _, raw := range set.Questions {
			q, err := examengine.NormalizeRecord(raw, entity.SourceStatic)
			require.NoError(t, err)
			assert.Equal(t, set.Aircraft, q.Aircraft, "Вопрос %s наследует тип ВС набора", raw.ID)
		}
	}
}

func TestMinimalSet(t *testing.T) {
	set, err := MinimalSet()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(set.Questions), examengine.DefaultMinimalSetLimit)
}

func TestParseSet_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"не JSON", `{"name":`},
		{"нет вопросов", `{"name":"x","questions":[]}`},
		{"три варианта", `{"name":"x","questions":[{"id":"a","text":"t","options":["1","2","3"],"correct_answer":0}]}`},
		{"индекс вне диапазона", `{"name":"x","questions":[{"id":"a","text":"t","options":["1","2","3","4"],"correct_answer":4}]}`},
		{"нет текста", `{"name":"x","questions":[{"id":"a","options":["1","2","3","4"],"correct_answer":1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSet("test.json", []byte(tt.data))
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestParseSet_LegacyFields(t *testing.T) {
	set, err := ParseSet("legacy.json", []byte(`{
		"name": "legacy",
		"aircraft": "B777",
		"questions": [{"id":"l1","question":"Legacy?","options":["a","b","c","d"],"correctAnswer":2}]
	}`))
	require.NoError(t, err)

	q, err := examengine.NormalizeRecord(set.Questions[0], entity.SourceStatic)
	require.NoError(t, err)
	assert.Equal(t, "Legacy?", q.Text)
	assert.Equal(t, 2, q.CorrectAnswer)
	assert.Equal(t, "B777", q.Aircraft)
}

func TestNewSources(t *testing.T) {
	static, minimal, err := NewSources(5)
	require.NoError(t, err)

	all, err := static.FetchQuestions(context.Background(), examengine.SourceFilter{})
	require.NoError(t, err)
	assert.Greater(t, len(all), 20)

	fallback, err := minimal.FetchQuestions(context.Background(), examengine.SourceFilter{})
	require.NoError(t, err)
	assert.Len(t, fallback, 5)
	assert.Equal(t, entity.SourceMinimal, fallback[0].Source)
}
