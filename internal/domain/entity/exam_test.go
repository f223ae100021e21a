package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExam_EffectivePassingScore(t *testing.T) {
	var nilExam *Exam
	assert.Equal(t, DefaultPassingScore, nilExam.EffectivePassingScore())
	assert.Equal(t, DefaultPassingScore, (&Exam{}).EffectivePassingScore())
	assert.Equal(t, 80, (&Exam{PassingScore: 80}).EffectivePassingScore())
}

func TestExam_TimeLimitSeconds(t *testing.T) {
	var nilExam *Exam
	assert.Equal(t, 0, nilExam.TimeLimitSeconds())
	assert.Equal(t, 0, (&Exam{}).TimeLimitSeconds())
	assert.Equal(t, 5400, (&Exam{TimeLimitMinutes: 90}).TimeLimitSeconds())
}

func TestQuestionSuggestion_CanTransitionTo(t *testing.T) {
	testCases := []struct {
		from, to string
		allowed  bool
	}{
		{SuggestionPending, SuggestionApproved, true},
		{SuggestionPending, SuggestionRejected, true},
		{SuggestionPending, SuggestionNeedsReview, true},
		{SuggestionNeedsReview, SuggestionApproved, true},
		{SuggestionNeedsReview, SuggestionNeedsReview, false},
		{SuggestionApproved, SuggestionRejected, false},
		{SuggestionRejected, SuggestionApproved, false},
	}

	for _, tc := range testCases {
		t.Run(tc.from+"->"+tc.to, func(t *testing.T) {
			s := &QuestionSuggestion{Status: tc.from}
			assert.Equal(t, tc.allowed, s.CanTransitionTo(tc.to))
		})
	}
}

func TestSessionMode_Valid(t *testing.T) {
	assert.True(t, ModePractice.Valid())
	assert.True(t, ModeTimed.Valid())
	assert.True(t, ModeReview.Valid())
	assert.False(t, SessionMode("exam").Valid())
}
