package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tamuroo-server/internal/managers"
	"tamuroo-server/internal/schemas"
	"tamuroo-server/internal/utils"
)

const healthPingTimeout = 2 * time.Second

// Health reports 200 when the storage backend answers a ping and 503 otherwise.
func Health(databaseMgr managers.DatabaseMgr) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()

		if err := databaseMgr.Ping(ctx); err != nil {
			utils.LogMessageWithFieldsAndError(c.Request.Context(), "error", "Database not responding", err)
			c.JSON(http.StatusServiceUnavailable, &schemas.HealthDTO{Status: "unavailable", Database: "down"})
			return
		}
		c.JSON(http.StatusOK, &schemas.HealthDTO{Status: "ok", Database: "up"})
	}
}
