package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/trustgate/service"
	"go.uber.org/zap"
)

// UserHandlers serves the admin user listing
type UserHandlers struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewUserHandlers(userService *service.UserService, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{userService: userService, logger: logger}
}

// List returns one page of users. Unparsable page or limit values fall back to defaults.
func (h *UserHandlers) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	result, err := h.userService.List(c.Request.Context(), page, limit, c.Query("search"))
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalError})
		return
	}

	c.JSON(http.StatusOK, result)
}
