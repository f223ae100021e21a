package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/RoutinizeWellness/aviate-ace-sub001/internal/pkg/errors"
)

// handleError переводит ошибки сервисов в HTTP ответ
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNoQuestions):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "error_type": "no_questions", "retry": true})
	case errors.Is(err, apperrors.ErrNoActiveSession):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "error_type": "no_active_session"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrSessionCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "session_completed"})
	case errors.Is(err, apperrors.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "invalid_transition"})
	case errors.Is(err, apperrors.ErrNoPendingSelection):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "no_pending_selection"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "conflict"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "error_type": "validation"})
	case errors.Is(err, apperrors.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error(), "error_type": "rate_limited"})
	default:
		log.Printf("ERROR: Internal server error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bindError отвечает 400 на некорректное тело запроса
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
}
