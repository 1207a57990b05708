package middleware

import (
	"strings"
	"time"

	"github.com/alexanderramin/coursegate/internal/logger"
	"github.com/gin-gonic/gin"
)

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if id := IdentityFrom(c); id.UserID != "" {
			fields = append(fields, "user_id", id.UserID, "client_id", id.ClientID)
		}
		if sid := c.Param("id"); sid != "" {
			fields = append(fields, "session", sid)
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
