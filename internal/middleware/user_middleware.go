package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserIDHeader: заголовок с идентификатором пользователя, проставляемый шлюзом
const UserIDHeader = "X-User-ID"

// UserIDKey: ключ контекста Gin с идентификатором пользователя
const UserIDKey = "user_id"

const maxUserIDLength = 64

// RequireUser проверяет наличие идентификатора пользователя и сохраняет его в контексте
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "X-User-ID header is required",
				"error_type": "user_missing",
			})
			return
		}
		if len(userID) > maxUserIDLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":      "X-User-ID header is too long",
				"error_type": "user_invalid",
			})
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// OptionalUser сохраняет идентификатор пользователя, если заголовок передан
func OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := strings.TrimSpace(c.GetHeader(UserIDHeader)); userID != "" && len(userID) <= maxUserIDLength {
			c.Set(UserIDKey, userID)
		}
		c.Next()
	}
}
