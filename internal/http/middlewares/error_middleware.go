package middlewares

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/mohamedhany/eshop-api/internal/apperror"
)

// ErrorResponder is the single funnel every request error goes through.
// Handlers attach errors via ctx.Error; this middleware normalizes the
// envelope: {status, message} in production, plus error and stack in dev.
func ErrorResponder(env string, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		var appErr *apperror.Error

		if !errors.As(err, &appErr) {
			// anything untyped is an internal failure
			appErr = apperror.Wrap(err, err.Error(), 500)
		}

		if appErr.StatusCode >= 500 {
			log.ErrorContext(c.Request.Context(), "request_failed",
				"status", appErr.StatusCode,
				"message", appErr.Message,
				"err", err.Error(),
			)
		}

		if c.Writer.Written() {
			return
		}

		if env == "dev" {
			c.JSON(appErr.StatusCode, gin.H{
				"status":  appErr.Status,
				"error":   err.Error(),
				"message": appErr.Message,
				"stack":   appErr.Stack,
			})
			return
		}

		c.JSON(appErr.StatusCode, gin.H{
			"status":  appErr.Status,
			"message": appErr.Message,
		})
	}
}
