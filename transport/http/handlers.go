package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/trustgate/core"
	"github.com/layer-3/trustgate/service"
	"go.uber.org/zap"
)

const internalError = "Internal server error"

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
	metrics     *Metrics
	logger      *zap.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, metrics *Metrics, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		metrics:     metrics,
		logger:      logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register handles account creation
func (h *AuthHandlers) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email and password are required"})
		return
	}

	identity, err := h.authService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrUserExists) || errors.Is(err, core.ErrPasswordTooLong) {
			h.metrics.AuthEvent("register", outcomeFailure)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.internal(c, "register", err)
		return
	}

	h.metrics.AuthEvent("register", outcomeSuccess)
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "userId": identity.ID})
}

// Login handles the login request
func (h *AuthHandlers) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email and password are required"})
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			h.metrics.AuthEvent("login", outcomeFailure)
			c.JSON(http.StatusUnauthorized, gin.H{"error": core.ErrInvalidCredentials.Error()})
			return
		}
		h.internal(c, "login", err)
		return
	}

	h.metrics.AuthEvent("login", outcomeSuccess)
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  session.Tokens.AccessToken,
		"refreshToken": session.Tokens.RefreshToken,
		"user": gin.H{
			"id":    session.Identity.ID,
			"email": session.Identity.Email,
			"role":  session.Identity.Role,
		},
	})
}

// Refresh handles token rotation
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Refresh Token required"})
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrTokenBlacklisted), errors.Is(err, core.ErrInvalidRefreshToken):
			h.metrics.AuthEvent("refresh", outcomeFailure)
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			h.internal(c, "refresh", err)
		}
		return
	}

	h.metrics.AuthEvent("refresh", outcomeSuccess)
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Logout revokes the presented refresh token, if any
func (h *AuthHandlers) Logout(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)

	if req.RefreshToken != "" {
		if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
			h.internal(c, "logout", err)
			return
		}
	}

	h.metrics.AuthEvent("logout", outcomeSuccess)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Dashboard is a minimal protected endpoint
func (h *AuthHandlers) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the dashboard"})
}

func (h *AuthHandlers) internal(c *gin.Context, event string, err error) {
	h.metrics.AuthEvent(event, outcomeError)
	h.logger.Error("auth operation failed", zap.String("event", event), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": internalError})
}
