package middleware

import (
	"errors"
	"net/http"

	"go-talentmatch-backend/internal/delivery/http/response"
	"go-talentmatch-backend/pkg/apperror"
	"go-talentmatch-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler attached with c.Error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Kind != apperror.KindInternal {
			response.Error(c, appErr.Code, appErr.Message, gin.H{"kind": appErr.Kind})
			return
		}

		// SECURITY: never expose internal error details to clients
		attrs := []any{"request_id", c.GetString(RequestIDKey), "error", err}
		if appErr != nil && appErr.Op != "" {
			attrs = append(attrs, "op", appErr.Op)
		}
		logger.Log.Error("Internal server error", attrs...)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", gin.H{"kind": apperror.KindInternal})
	}
}
