package server

import (
	"strconv"
	"time"

	"novelhub/internal/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware labels requests by route template; unmatched routes share one label.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.RecordHTTPRequest(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start).Seconds(),
		)
	}
}
