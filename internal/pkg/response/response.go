package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"caradmin/internal/backend"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// Validation answers 400 with the failed fields.
func Validation(c *gin.Context, fields map[string]string) {
	ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", fields)
}

// Upstream writes the envelope for an error returned by the backend client.
// The error is attached to the gin context so ErrorLogger sees it.
func Upstream(c *gin.Context, err error) {
	_ = c.Error(err)

	var apiErr *backend.APIError
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		Error(c, http.StatusUnauthorized, "SESSION_EXPIRED", "Сессия истекла, войдите снова")
	case errors.Is(err, backend.ErrInvalidCredentials):
		Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Неверный email или пароль")
	case errors.Is(err, backend.ErrNotFound):
		Error(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.As(err, &apiErr) && apiErr.IsValidation():
		Error(c, apiErr.Status, "VALIDATION_ERROR", apiErr.Message)
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden:
		Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
	case errors.As(err, &apiErr):
		ErrorWithDetails(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Backend request failed", gin.H{"status": apiErr.Status})
	default:
		Error(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Backend is unavailable")
	}
}
