package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ShannonCanTech/aroundhere/internal/middleware"
	"github.com/ShannonCanTech/aroundhere/internal/service"
)

type ConsentHandler struct {
	svc    *service.ConsentService
	logger *zap.Logger
}

func NewConsentHandler(svc *service.ConsentService, logger *zap.Logger) *ConsentHandler {
	return &ConsentHandler{svc: svc, logger: logger}
}

// Check handles GET /api/consent/check
func (h *ConsentHandler) Check(c *gin.Context) {
	userID := middleware.GetUserID(c)

	consent, err := h.svc.Check(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to check consent", zap.Error(err))
		internalError(c, "Failed to check consent")
		return
	}

	resp := gin.H{"hasConsent": consent != nil}
	if consent != nil {
		resp["consent"] = consent
	}
	c.JSON(http.StatusOK, resp)
}

type acceptConsentRequest struct {
	TermsVersion string `json:"termsVersion"`
}

// Accept handles POST /api/consent/accept
func (h *ConsentHandler) Accept(c *gin.Context) {
	userID := middleware.GetUserID(c)

	// Body is optional; an absent or empty termsVersion means the current one.
	var req acceptConsentRequest
	_ = c.ShouldBindJSON(&req)

	consent, err := h.svc.Record(c.Request.Context(), userID, req.TermsVersion)
	if err != nil {
		h.logger.Error("failed to record consent", zap.Error(err))
		internalError(c, "Failed to record consent")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"consent": consent,
	})
}
