package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ShannonCanTech/aroundhere/internal/middleware"
	"github.com/ShannonCanTech/aroundhere/internal/service"
)

type AvatarHandler struct {
	resolver service.AvatarResolver
	logger   *zap.Logger
}

func NewAvatarHandler(resolver service.AvatarResolver, logger *zap.Logger) *AvatarHandler {
	return &AvatarHandler{resolver: resolver, logger: logger}
}

// Get handles GET /api/user/avatar?username=
// Without a username query param it resolves the caller's own avatar.
func (h *AvatarHandler) Get(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		username = middleware.GetUsername(c)
	}
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "User authentication required",
		})
		return
	}

	avatarURL, err := h.resolver.AvatarURL(c.Request.Context(), username)
	if err != nil {
		h.logger.Error("failed to resolve avatar", zap.String("username", username), zap.Error(err))
		internalError(c, "Failed to fetch user avatar")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username":  username,
		"avatarUrl": avatarURL,
	})
}
