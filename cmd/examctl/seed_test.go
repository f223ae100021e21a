package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/bundled"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/repository"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/service/examengine"
)

// ============================================================================
// Мок репозитория вопросов
// ============================================================================

type mockQuestionRepo struct {
	mock.Mock
}

func (m *mockQuestionRepo) Create(ctx context.Context, q *entity.Question) error {
	return m.Called(ctx, q).Error(0)
}

func (m *mockQuestionRepo) CreateBatch(ctx context.Context, questions []entity.Question) (int64, error) {
	args := m.Called(ctx, questions)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockQuestionRepo) GetByID(ctx context.Context, id string) (*entity.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *mockQuestionRepo) Update(ctx context.Context, q *entity.Question) error {
	return m.Called(ctx, q).Error(0)
}

func (m *mockQuestionRepo) Deactivate(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockQuestionRepo) Find(ctx context.Context, filter repository.QuestionFilter) ([]entity.Question, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *mockQuestionRepo) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func intPtr(v int) *int { return &v }

func rawQuestion(id string, correct int) examengine.RawQuestion {
	return examengine.RawQuestion{
		ID:            id,
		Text:          "Question " + id,
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: intPtr(correct),
		Category:      "Hydraulics",
		Difficulty:    "basic",
	}
}

// ============================================================================
// Тесты seedQuestions
// ============================================================================

func TestSeedQuestions(t *testing.T) {
	sets := []bundled.QuestionSet{
		{Name: "a320.json", Aircraft: "A320", Questions: []examengine.RawQuestion{
			rawQuestion("q1", 0),
			rawQuestion("q2", 7),
		}},
		{Name: "b737.json", Aircraft: "B737", Questions: []examengine.RawQuestion{
			rawQuestion("q3", 2),
			rawQuestion("q1", 1),
		}},
	}

	repo := new(mockQuestionRepo)
	repo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(qs []entity.Question) bool {
		return len(qs) == 2 && qs[0].ID == "q1" && qs[1].ID == "q3"
	})).Return(int64(2), nil)

	report, err := seedQuestions(context.Background(), repo, sets)

	require.NoError(t, err)
	assert.Equal(t, 2, report.Prepared, "Дубликат ID должен браться один раз")
	assert.Equal(t, int64(2), report.Inserted)
	assert.Equal(t, 1, report.Invalid, "Запись с индексом ответа вне диапазона отклоняется")

	batch := repo.Calls[0].Arguments.Get(1).([]entity.Question)
	assert.Equal(t, entity.SourceStatic, batch[0].Source)
	assert.NotEqual(t, batch[0].Aircraft, batch[1].Aircraft, "Тип ВС берется из набора")
	repo.AssertExpectations(t)
}

func TestSeedQuestions_NothingToInsert(t *testing.T) {
	repo := new(mockQuestionRepo)

	report, err := seedQuestions(context.Background(), repo, []bundled.QuestionSet{
		{Name: "broken.json", Aircraft: "A320", Questions: []examengine.RawQuestion{rawQuestion("bad", -1)}},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, report.Prepared)
	assert.Equal(t, 1, report.Invalid)
	repo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestSeedQuestions_RepositoryError(t *testing.T) {
	repo := new(mockQuestionRepo)
	repo.On("CreateBatch", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	_, err := seedQuestions(context.Background(), repo, []bundled.QuestionSet{
		{Name: "a320.json", Aircraft: "A320", Questions: []examengine.RawQuestion{rawQuestion("q1", 0)}},
	})

	assert.ErrorContains(t, err, "db down")
}

func TestSeedQuestions_BundledSets(t *testing.T) {
	sets, err := bundled.StandardSets()
	require.NoError(t, err)

	repo := new(mockQuestionRepo)
	repo.On("CreateBatch", mock.Anything, mock.Anything).Return(int64(0), nil)

	report, err := seedQuestions(context.Background(), repo, sets)

	require.NoError(t, err)
	assert.Greater(t, report.Prepared, 20)
}

func TestParseMigrationVersion(t *testing.T) {
	tests := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{"3", 3, false},
		{"0", 0, false},
		{"-1", -1, false},
		{"-2", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseMigrationVersion(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
