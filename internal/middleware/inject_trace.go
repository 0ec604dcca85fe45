package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"tamuroo-server/internal/utils"
)

// InjectTrace tags the request with a fresh trace id, both on the request context and the X-Trace-Id header.
func InjectTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := utils.GenerateTraceId()
		c.Set(utils.TraceIdKey.String(), traceId)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), utils.TraceIdKey, traceId))
		c.Header("X-Trace-Id", traceId)
		c.Next()
	}
}
