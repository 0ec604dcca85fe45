package utils

import (
	"github.com/gin-gonic/gin"

	"tamuroo-server/internal/schemas"
)

// WriteAndLogResponse writes response as JSON with the provided status code.
func WriteAndLogResponse(c *gin.Context, response interface{}, statusCode int) {
	LogMessageWithFields(c.Request.Context(), "info", "Returning response")
	c.JSON(statusCode, response)
}

// WriteAndLogError logs err and writes the error body for customErr with the given status code.
// details are the individual validation messages, if any.
func WriteAndLogError(c *gin.Context, customErr *schemas.CustomError, statusCode int, err error, details ...string) {
	ctx := c.Request.Context()
	if err != nil {
		LogMessageWithFieldsAndError(ctx, "error", "Error occurred", err)
	}
	LogMessageWithFields(ctx, "info", "Returning "+customErr.Code+" / "+customErr.Message)

	errorDto := &schemas.ErrorDTO{
		Error:  *customErr,
		Errors: details,
	}
	c.AbortWithStatusJSON(statusCode, errorDto)
}
