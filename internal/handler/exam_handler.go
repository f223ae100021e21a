package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/repository"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/handler/dto"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/handler/helper"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/middleware"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/service"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/service/examengine"
)

// ExamHandler обрабатывает запросы экзаменационных сессий
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler создает новый обработчик сессий
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// CriteriaRequest: критерии отбора вопросов. Пустые поля означают значения по умолчанию.
type CriteriaRequest struct {
	Mode       string `json:"mode" form:"mode" binding:"omitempty,max=20"`
	Category   string `json:"category" form:"category" binding:"omitempty,max=500"`
	Aircraft   string `json:"aircraft" form:"aircraft" binding:"omitempty,max=32"`
	Difficulty string `json:"difficulty" form:"difficulty" binding:"omitempty,max=20"`
	Count      int    `json:"count" form:"count"`
	ExamID     uint   `json:"exam_id" form:"exam_id"`
}

func (r CriteriaRequest) raw() examengine.RawCriteria {
	return examengine.RawCriteria{
		Mode:       r.Mode,
		Category:   r.Category,
		Aircraft:   r.Aircraft,
		Difficulty: r.Difficulty,
		Count:      r.Count,
		ExamID:     r.ExamID,
	}
}

// SelectAnswerRequest: выбор варианта ответа
type SelectAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required,max=64"`
	Option     *int   `json:"option" binding:"required"`
}

// ConfirmAnswerRequest: подтверждение выбора в режиме practice
type ConfirmAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required,max=64"`
}

// StartSession начинает новую сессию текущего пользователя
// POST /api/sessions
func (h *ExamHandler) StartSession(c *gin.Context) {
	var req CriteriaRequest
	// Пустое тело означает критерии по умолчанию
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return
	}

	started, err := h.examService.StartSession(c.Request.Context(), c.GetString(middleware.UserIDKey), req.raw())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewStartSessionResponse(started))
}

// GetCurrentSession возвращает текущую сессию пользователя
// GET /api/sessions/current
func (h *ExamHandler) GetCurrentSession(c *gin.Context) {
	view, err := h.examService.CurrentSession(c.GetString(middleware.UserIDKey))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionResponse(view))
}

// SelectAnswer выбирает вариант ответа
// POST /api/sessions/current/answers
func (h *ExamHandler) SelectAnswer(c *gin.Context) {
	var req SelectAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	view, err := h.examService.SelectAnswer(c.GetString(middleware.UserIDKey), req.QuestionID, *req.Option)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionResponse(view))
}

// ConfirmAnswer подтверждает выбранный вариант и раскрывает правильный ответ
// POST /api/sessions/current/answers/confirm
func (h *ExamHandler) ConfirmAnswer(c *gin.Context) {
	var req ConfirmAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	answer, view, err := h.examService.ConfirmAnswer(c.Request.Context(), c.GetString(middleware.UserIDKey), req.QuestionID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"answer":  answer,
		"session": dto.NewSessionResponse(view),
	})
}

// Advance переходит к следующему вопросу
// POST /api/sessions/current/advance
func (h *ExamHandler) Advance(c *gin.Context) {
	view, err := h.examService.Advance(c.GetString(middleware.UserIDKey))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionResponse(view))
}

// Retreat возвращается к предыдущему вопросу
// POST /api/sessions/current/retreat
func (h *ExamHandler) Retreat(c *gin.Context) {
	view, err := h.examService.Retreat(c.GetString(middleware.UserIDKey))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionResponse(view))
}

// Submit завершает сессию. Повторная отправка возвращает сохраненный результат.
// POST /api/sessions/current/submit
func (h *ExamHandler) Submit(c *gin.Context) {
	outcome, err := h.examService.Submit(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// Abandon прерывает текущую сессию
// DELETE /api/sessions/current
func (h *ExamHandler) Abandon(c *gin.Context) {
	if err := h.examService.Abandon(c.Request.Context(), c.GetString(middleware.UserIDKey)); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session abandoned"})
}

// History возвращает сохраненные сессии пользователя
// GET /api/sessions/history
func (h *ExamHandler) History(c *gin.Context) {
	page, pageSize, offset := helper.Pagination(c, 20, 100)

	records, total, err := h.examService.History(c.Request.Context(), c.GetString(middleware.UserIDKey), pageSize, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(records, total, page, pageSize))
}

// PreviewSelection отбирает вопросы по критериям без создания сессии
// GET /api/questions/preview
func (h *ExamHandler) PreviewSelection(c *gin.Context) {
	var req CriteriaRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	criteria, selection, err := h.examService.Preview(c.Request.Context(), c.GetString(middleware.UserIDKey), req.raw())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPreviewResponse(criteria, selection))
}

// ListQuestions возвращает вопросы из хранилища
// GET /api/questions
func (h *ExamHandler) ListQuestions(c *gin.Context) {
	page, pageSize, offset := helper.Pagination(c, 50, 500)

	questions, err := h.examService.ListQuestions(c.Request.Context(), repository.QuestionFilter{
		Aircraft:        c.Query("aircraft"),
		Category:        c.Query("category"),
		Difficulty:      entity.Difficulty(c.Query("difficulty")),
		IncludeInactive: helper.QueryBool(c, "include_inactive"),
		Limit:           pageSize,
		Offset:          offset,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"questions": questions,
		"page":      page,
		"size":      pageSize,
	})
}

// DeactivateQuestion выключает вопрос
// DELETE /api/questions/:id
func (h *ExamHandler) DeactivateQuestion(c *gin.Context) {
	if err := h.examService.DeactivateQuestion(c.Request.Context(), c.GetString("questionID")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deactivated"})
}

// GetQuestionStats возвращает счетчики ответов на вопрос
// GET /api/questions/:id/stats
func (h *ExamHandler) GetQuestionStats(c *gin.Context) {
	stats, err := h.examService.QuestionStats(c.Request.Context(), c.GetString("questionID"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetCacheState возвращает состояние кеша банка вопросов
// GET /api/questions/cache
func (h *ExamHandler) GetCacheState(c *gin.Context) {
	c.JSON(http.StatusOK, h.examService.BankReport(c.Request.Context()))
}

// InvalidateCache сбрасывает кеш банка вопросов
// POST /api/questions/cache/invalidate
func (h *ExamHandler) InvalidateCache(c *gin.Context) {
	h.examService.InvalidateBank()
	c.JSON(http.StatusOK, gin.H{"message": "Question cache invalidated"})
}

// ListExams возвращает экзамены
// GET /api/exams
func (h *ExamHandler) ListExams(c *gin.Context) {
	exams, err := h.examService.ListExams(c.Request.Context(), !helper.QueryBool(c, "include_inactive"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exams": exams, "total": len(exams)})
}

// GetExam возвращает экзамен
// GET /api/exams/:id
func (h *ExamHandler) GetExam(c *gin.Context) {
	exam, err := h.examService.GetExam(c.Request.Context(), c.MustGet("examID").(uint))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, exam)
}
