package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/handler/dto"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/handler/helper"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/middleware"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/service"
)

// SuggestionHandler обрабатывает предложенные пользователями вопросы
type SuggestionHandler struct {
	suggestionService *service.SuggestionService
}

// NewSuggestionHandler создает обработчик предложений
func NewSuggestionHandler(suggestionService *service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService}
}

// SubmitSuggestionRequest: предложенный вопрос
type SubmitSuggestionRequest struct {
	Text          string   `json:"text" binding:"required"`
	Options       []string `json:"options" binding:"required"`
	CorrectAnswer *int     `json:"correct_answer" binding:"required"`
	Explanation   string   `json:"explanation"`
	Aircraft      string   `json:"aircraft"`
	Category      string   `json:"category" binding:"required"`
	Difficulty    string   `json:"difficulty"`
	References    []string `json:"references"`
}

// ReviewSuggestionRequest: решение модератора
type ReviewSuggestionRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// Submit сохраняет предложение
// POST /api/suggestions
func (h *SuggestionHandler) Submit(c *gin.Context) {
	var req SubmitSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	suggestion, err := h.suggestionService.Submit(c.Request.Context(), c.GetString(middleware.UserIDKey), service.SuggestionInput{
		Text:          req.Text,
		Options:       req.Options,
		CorrectAnswer: *req.CorrectAnswer,
		Explanation:   req.Explanation,
		Aircraft:      req.Aircraft,
		Category:      req.Category,
		Difficulty:    req.Difficulty,
		References:    req.References,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, suggestion)
}

// List возвращает предложения по статусу
// GET /api/suggestions?status=pending
func (h *SuggestionHandler) List(c *gin.Context) {
	page, pageSize, offset := helper.Pagination(c, 20, 100)

	items, total, err := h.suggestionService.List(c.Request.Context(), c.Query("status"), pageSize, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(items, total, page, pageSize))
}

// Review применяет решение модератора
// PUT /api/suggestions/:id/review
func (h *SuggestionHandler) Review(c *gin.Context) {
	var req ReviewSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	suggestion, err := h.suggestionService.Review(c.Request.Context(), c.MustGet("suggestionID").(uint), service.ReviewDecision{
		Status: req.Status,
		Note:   req.Note,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestion)
}
