package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

func LogRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		slog.InfoContext(c.Request.Context(), "request processed", attrs...)
	}
}
