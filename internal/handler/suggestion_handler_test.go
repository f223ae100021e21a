package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/middleware"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/service"
)

// ============================================================================
// Мок репозитория предложений
// ============================================================================

type mockSuggestionRepo struct {
	mock.Mock
}

func (m *mockSuggestionRepo) Create(ctx context.Context, s *entity.QuestionSuggestion) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSuggestionRepo) GetByID(ctx context.Context, id uint) (*entity.QuestionSuggestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuestionSuggestion), args.Error(1)
}

func (m *mockSuggestionRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]entity.QuestionSuggestion, int64, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]entity.QuestionSuggestion), args.Get(1).(int64), args.Error(2)
}

func (m *mockSuggestionRepo) Update(ctx context.Context, s *entity.QuestionSuggestion) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSuggestionRepo) Approve(ctx context.Context, s *entity.QuestionSuggestion, q *entity.Question) error {
	return m.Called(ctx, s, q).Error(0)
}

func newSuggestionRouter(repo *mockSuggestionRepo) *gin.Engine {
	h := NewSuggestionHandler(service.NewSuggestionService(repo, nil, nil))
	r := gin.New()
	r.POST("/api/suggestions", middleware.RequireUser(), h.Submit)
	r.GET("/api/suggestions", h.List)
	r.PUT("/api/suggestions/:id/review", middleware.ExtractUintParam("id", "suggestionID"), h.Review)
	return r
}

// ============================================================================
// Тесты SuggestionHandler
// ============================================================================

func TestSuggestionHandler_Submit(t *testing.T) {
	repo := new(mockSuggestionRepo)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.QuestionSuggestion")).Return(nil)
	r := newSuggestionRouter(repo)

	w := performJSON(r, http.MethodPost, "/api/suggestions", "pilot-3", map[string]interface{}{
		"text":           "Which pump pressurizes the yellow system on ground?",
		"options":        []string{"EDP", "Electric pump", "PTU", "RAT"},
		"correct_answer": 1,
		"category":       "Hydraulics",
		"aircraft":       "A320",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := parseJSONResponse(t, w)
	assert.Equal(t, "pending", resp["status"])
	assert.Equal(t, "A320_FAMILY", resp["aircraft"])
	assert.Equal(t, "pilot-3", resp["user_id"])
}

func TestSuggestionHandler_SubmitValidation(t *testing.T) {
	repo := new(mockSuggestionRepo)
	r := newSuggestionRouter(repo)

	w := performJSON(r, http.MethodPost, "/api/suggestions", "pilot-3", map[string]interface{}{
		"text": "Too few options provided here", "options": []string{"a", "b"}, "correct_answer": 0, "category": "Fuel",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = performJSON(r, http.MethodPost, "/api/suggestions", "pilot-3", map[string]interface{}{"text": "Missing fields"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSuggestionHandler_ReviewConflict(t *testing.T) {
	repo := new(mockSuggestionRepo)
	repo.On("GetByID", mock.Anything, uint(4)).Return(&entity.QuestionSuggestion{ID: 4, Status: entity.SuggestionApproved}, nil)
	r := newSuggestionRouter(repo)

	w := performJSON(r, http.MethodPut, "/api/suggestions/4/review", "", map[string]string{"status": "rejected"})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSuggestionHandler_List(t *testing.T) {
	repo := new(mockSuggestionRepo)
	repo.On("ListByStatus", mock.Anything, "pending", 20, 0).Return([]entity.QuestionSuggestion{{ID: 1}, {ID: 2}}, int64(2), nil)
	r := newSuggestionRouter(repo)

	w := performJSON(r, http.MethodGet, "/api/suggestions?status=pending", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, float64(2), resp["total"])
	assert.Len(t, resp["items"].([]interface{}), 2)
}
