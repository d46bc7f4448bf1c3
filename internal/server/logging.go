package server

import (
	"time"

	"novelhub/internal/auth"
	"novelhub/internal/logger"

	"github.com/gin-gonic/gin"
)

func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		kv := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if userID, ok := auth.GetUserID(c); ok {
			kv = append(kv, "user_id", userID)
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("HTTP request", kv...)
		case status >= 400:
			logger.Warn("HTTP request", kv...)
		default:
			logger.Info("HTTP request", kv...)
		}
	}
}
