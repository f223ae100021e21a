package examengine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
)

func newTestSelector(ledger LedgerReader) *Selector {
	return NewSelector(NewSeededRand(42), ledger)
}

func TestSelector_ScenarioA_NoPadding(t *testing.T) {
	bank := makeBank(5, "Electrical", "A320_FAMILY")
	criteria := Normalize(RawCriteria{
		Mode: "practice", Category: "electrical", Aircraft: "A320_FAMILY", Difficulty: "all", Count: 20,
	})

	sel := newTestSelector(nil).Select(bank, criteria)

	assert.Equal(t, StageStrict, sel.Stage)
	assert.Len(t, sel.Questions, 5, "Результат не дополняется до запрошенного количества")
	assert.ElementsMatch(t, questionIDs(bank), questionIDs(sel.Questions), "Без дубликатов")
}

func TestSelector_ScenarioB_NeverEmpty(t *testing.T) {
	bank := makeBank(5, "Electrical", "A320_FAMILY")
	criteria := Normalize(RawCriteria{Category: "nonexistent-category", Aircraft: "A320_FAMILY", Count: 10})

	sel := newTestSelector(nil).Select(bank, criteria)

	assert.NotEmpty(t, sel.Questions)
	assert.LessOrEqual(t, len(sel.Questions), 10)
	assert.Equal(t, StageCategoryRelaxed, sel.Stage)
}

func TestSelector_Stages(t *testing.T) {
	electricalB777 := makeBank(3, "Electrical", "B777")
	generalA330 := makeBank(2, "Aircraft General", "A330")
	fuelA330 := makeBank(4, "Fuel", "A330")

	tests := []struct {
		name      string
		bank      []entity.Question
		raw       RawCriteria
		wantStage string
		wantLen   int
	}{
		{
			name:      "строгий фильтр",
			bank:      append(append([]entity.Question{}, electricalB777...), fuelA330...),
			raw:       RawCriteria{Category: "electrical", Aircraft: "B777"},
			wantStage: StageStrict,
			wantLen:   3,
		},
		{
			name:      "без учета типа ВС",
			bank:      electricalB777,
			raw:       RawCriteria{Category: "electrical", Aircraft: "A330"},
			wantStage: StageAircraftRelaxed,
			wantLen:   3,
		},
		{
			name:      "без учета категории",
			bank:      append(append([]entity.Question{}, electricalB777...), fuelA330...),
			raw:       RawCriteria{Category: "hydraulics", Aircraft: "A330"},
			wantStage: StageCategoryRelaxed,
			wantLen:   4,
		},
		{
			name:      "общие сведения о ВС",
			bank:      append(append([]entity.Question{}, electricalB777...), generalA330...),
			raw:       RawCriteria{Category: "hydraulics", Aircraft: "B787", Difficulty: "advanced"},
			wantStage: StageAircraftGeneral,
			wantLen:   2,
		},
		{
			name:      "весь банк",
			bank:      electricalB777,
			raw:       RawCriteria{Category: "hydraulics", Aircraft: "B787"},
			wantStage: StageUnfiltered,
			wantLen:   3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := newTestSelector(nil).Select(tt.bank, Normalize(tt.raw))
			assert.Equal(t, tt.wantStage, sel.Stage)
			assert.Len(t, sel.Questions, tt.wantLen)
		})
	}
}

func TestSelector_GeneralQuestionsMatchAnyAircraft(t *testing.T) {
	bank := []entity.Question{
		makeQuestion("g1", "Electrical", entity.AircraftGeneral, entity.DifficultyBasic),
		makeQuestion("b1", "Electrical", "B777", entity.DifficultyBasic),
	}

	sel := newTestSelector(nil).Select(bank, Normalize(RawCriteria{Category: "electrical", Aircraft: "A320"}))

	assert.Equal(t, StageStrict, sel.Stage)
	assert.Equal(t, []string{"g1"}, questionIDs(sel.Questions))
}

func TestSelector_TruncatesAndIsDeterministic(t *testing.T) {
	bank := makeBank(40, "Fuel", "B777")
	criteria := Normalize(RawCriteria{Category: "fuel", Count: 15})

	first := NewSelector(NewSeededRand(7), nil).Select(bank, criteria)
	second := NewSelector(NewSeededRand(7), nil).Select(bank, criteria)

	assert.Len(t, first.Questions, 15)
	assert.Equal(t, 40, first.PoolSize)
	assert.Equal(t, questionIDs(first.Questions), questionIDs(second.Questions), "Одинаковый seed: одинаковый порядок")
}

func TestSelector_DoesNotMutateBank(t *testing.T) {
	bank := makeBank(10, "Fuel", "B777")
	before := questionIDs(bank)

	newTestSelector(nil).Select(bank, Normalize(RawCriteria{Count: 5}))

	assert.Equal(t, before, questionIDs(bank))
}

func TestSelector_ShuffleCoversAllPositions(t *testing.T) {
	bank := makeBank(4, "Fuel", "B777")
	s := NewSelector(NewSeededRand(99), nil)
	criteria := Normalize(RawCriteria{Count: 4})

	firsts := map[string]bool{}
	for i := 0; i < 200; i++ {
		firsts[s.Select(bank, criteria).Questions[0].ID] = true
	}
	assert.Len(t, firsts, 4, "Каждый вопрос должен хотя бы раз оказаться первым")
}

// ============================================================================
// Режим review
// ============================================================================

type MockLedgerReader struct {
	mock.Mock
}

func (m *MockLedgerReader) UnresolvedQuestionIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func TestSelector_ReviewUsesLedger(t *testing.T) {
	bank := makeBank(10, "Electrical", "A320_FAMILY")
	ledger := new(MockLedgerReader)
	ledger.On("UnresolvedQuestionIDs", mock.Anything, "user-1").
		Return([]string{bank[2].ID, bank[7].ID, "deleted-question"}, nil)

	criteria := Normalize(RawCriteria{Mode: "review", UserID: "user-1", Count: 20})
	sel := newTestSelector(ledger).SelectForUser(context.Background(), bank, criteria)

	assert.True(t, sel.FromLedger)
	assert.ElementsMatch(t, []string{bank[2].ID, bank[7].ID}, questionIDs(sel.Questions))
	ledger.AssertExpectations(t)
}

func TestSelector_ReviewFallsBackWithoutLedgerEntries(t *testing.T) {
	bank := makeBank(6, "Electrical", "A320_FAMILY")
	criteria := Normalize(RawCriteria{Mode: "review", UserID: "user-1", Count: 4})

	tests := []struct {
		name string
		ids  []string
		err  error
	}{
		{"журнал пуст", []string{}, nil},
		{"журнал недоступен", nil, errors.New("db down")},
		{"вопросов журнала нет в банке", []string{"gone"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := new(MockLedgerReader)
			ledger.On("UnresolvedQuestionIDs", mock.Anything, "user-1").Return(tt.ids, tt.err)

			sel := newTestSelector(ledger).SelectForUser(context.Background(), bank, criteria)

			require.Len(t, sel.Questions, 4)
			assert.False(t, sel.FromLedger)
		})
	}
}

func TestSelector_NonReviewIgnoresLedger(t *testing.T) {
	ledger := new(MockLedgerReader)
	bank := makeBank(3, "Fuel", "B777")

	sel := newTestSelector(ledger).SelectForUser(context.Background(), bank, Normalize(RawCriteria{UserID: "u"}))

	assert.Len(t, sel.Questions, 3)
	ledger.AssertNotCalled(t, "UnresolvedQuestionIDs", mock.Anything, mock.Anything)
}
