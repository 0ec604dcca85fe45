package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tamuroo-server/internal/metrics"
)

// RecordMetrics counts requests and their latency by matched route.
func RecordMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
