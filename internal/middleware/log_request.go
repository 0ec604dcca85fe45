package middleware

import (
	"github.com/gin-gonic/gin"

	"tamuroo-server/internal/utils"
)

func LogRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		message := "Request received: " + c.Request.Method + " " + c.Request.URL.Path
		utils.LogMessageWithFields(c.Request.Context(), "info", message)
		c.Next()
	}
}
