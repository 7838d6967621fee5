package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/trustgate/core"
	"github.com/layer-3/trustgate/service"
	"go.uber.org/zap"
)

// RouterConfig collects the dependencies of the HTTP surface
type RouterConfig struct {
	Auth  *service.AuthService
	Users *service.UserService
	KYC   *service.KYCService

	Logger  *zap.Logger
	Metrics *Metrics

	Production bool

	// Media files are served from MediaDir under MediaBaseURL when both are set
	MediaDir     string
	MediaBaseURL string

	// Per client IP limit on register and login, disabled when zero
	AuthRateLimit float64
	AuthRateBurst int
}

// SetupRouter sets up the Gin router
func SetupRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestLogger(logger),
		SecureHeaders(cfg.Production),
		metrics.Instrument(),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.MediaDir != "" && cfg.MediaBaseURL != "" {
		router.Static(cfg.MediaBaseURL, cfg.MediaDir)
	}

	authenticated := AuthMiddleware(cfg.Auth, logger)
	adminOnly := RequireRole(core.RoleAdmin)
	limiter := NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst).Middleware()

	handlers := NewAuthHandlers(cfg.Auth, metrics, logger)

	auth := router.Group("/auth")
	{
		auth.POST("/register", limiter, handlers.Register)
		auth.POST("/login", limiter, handlers.Login)
		auth.POST("/refresh-token", handlers.Refresh)
		auth.POST("/logout", handlers.Logout)
		auth.GET("/dashboard", authenticated, handlers.Dashboard)
	}

	if cfg.Users != nil {
		users := NewUserHandlers(cfg.Users, logger)
		router.GET("/users", authenticated, adminOnly, users.List)
	}

	if cfg.KYC != nil {
		kyc := NewKYCHandlers(cfg.KYC, logger)
		group := router.Group("/kyc", authenticated)
		{
			group.POST("/upload", kyc.Upload)
			group.GET("/status", kyc.Status)
			group.PATCH("/approve/:userId", adminOnly, kyc.Approve)
			group.PATCH("/reject/:userId", adminOnly, kyc.Reject)
		}
	}

	return router
}
