package routing

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tamuroo-server/internal/handlers"
	"tamuroo-server/internal/managers"
	"tamuroo-server/internal/middleware"
	"tamuroo-server/internal/schemas"
	"tamuroo-server/internal/utils"
)

// RouterOptions carries the settings the router takes from the configuration.
type RouterOptions struct {
	AllowedOrigins []string
	SecureCookies  bool
	// Gatherer backs /metrics. The route is omitted when nil.
	Gatherer prometheus.Gatherer
}

func InitRouter(databaseMgr managers.DatabaseMgr, accountMgr managers.AccountMgr, opts RouterOptions) *gin.Engine {
	router := gin.New()
	setupCommonMiddleware(router, opts.AllowedOrigins)
	setupRoutes(router, databaseMgr, accountMgr, opts)

	return router
}

const defaultAllowedOrigin = "http://localhost:5173"

func setupCommonMiddleware(router *gin.Engine, allowedOrigins []string) {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{defaultAllowedOrigin}
	}

	router.Use(gin.Recovery())
	router.Use(middleware.InjectTrace())
	router.Use(middleware.RecordMetrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.SanitizePath())
	router.Use(middleware.LogRequest())
}

func setupRoutes(router *gin.Engine, databaseMgr managers.DatabaseMgr, accountMgr managers.AccountMgr, opts RouterOptions) {
	router.GET("/health", handlers.Health(databaseMgr))
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	router.NoRoute(func(c *gin.Context) {
		utils.WriteAndLogError(c, schemas.RouteNotFound, http.StatusNotFound, nil)
	})

	userHdl := handlers.NewUserHandler(accountMgr, opts.SecureCookies)
	userRoutes(router, userHdl, accountMgr)
}

func userRoutes(router *gin.Engine, userHdl handlers.UserHdl, accountMgr managers.AccountMgr) {
	router.POST("/register", userHdl.Register)
	router.POST("/login", userHdl.Login)
	router.POST("/forgot-password", userHdl.ForgotPassword)
	router.POST("/reset-password", userHdl.ResetPassword)
	router.POST("/logout", userHdl.Logout)
	router.POST("/activate/:"+utils.ActivationCodeKey, userHdl.ActivateAccount)
	// The following routes require a session token
	router.GET("/me", middleware.VerifyToken(accountMgr), userHdl.Me)
}
