package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/trustgate/core"
	"github.com/layer-3/trustgate/service"
	"go.uber.org/zap"
)

// KYCHandlers serves submission and review endpoints
type KYCHandlers struct {
	kycService *service.KYCService
	logger     *zap.Logger
}

func NewKYCHandlers(kycService *service.KYCService, logger *zap.Logger) *KYCHandlers {
	return &KYCHandlers{kycService: kycService, logger: logger}
}

// Upload accepts a multipart form with image and video files
func (h *KYCHandlers) Upload(c *gin.Context) {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	image, closeImage := openUpload(c, "image")
	defer closeImage()
	video, closeVideo := openUpload(c, "video")
	defer closeVideo()

	sub, created, err := h.kycService.Submit(c.Request.Context(), claims.ID, image, video)
	if err != nil {
		h.fail(c, err)
		return
	}

	if created {
		c.JSON(http.StatusCreated, gin.H{"message": "KYC submitted successfully", "kyc": sub})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "KYC updated successfully", "kyc": sub})
}

// Status returns the caller's submission
func (h *KYCHandlers) Status(c *gin.Context) {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	sub, err := h.kycService.Status(c.Request.Context(), claims.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *KYCHandlers) Approve(c *gin.Context) {
	sub, err := h.kycService.Approve(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "KYC approved successfully", "kyc": sub})
}

func (h *KYCHandlers) Reject(c *gin.Context) {
	sub, err := h.kycService.Reject(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "KYC rejected successfully", "kyc": sub})
}

func (h *KYCHandlers) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrKYCPending),
		errors.Is(err, core.ErrKYCAlreadyApproved),
		errors.Is(err, core.ErrKYCMediaRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrKYCNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": core.ErrKYCNotFound.Error()})
	case errors.Is(err, core.ErrInvalidKYCTransition):
		c.JSON(http.StatusConflict, gin.H{"error": core.ErrInvalidKYCTransition.Error()})
	default:
		h.logger.Error("kyc operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalError})
	}
}

// openUpload opens a form file. A missing file yields a nil upload.
func openUpload(c *gin.Context, field string) (*service.Upload, func()) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, func() {}
	}
	file, err := header.Open()
	if err != nil {
		return nil, func() {}
	}
	return &service.Upload{Name: header.Filename, Body: file}, func() { _ = file.Close() }
}
