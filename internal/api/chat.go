// Package api maps HTTP requests onto the services. Authorization failures
// collapsed by the services (nil/false) surface here as 403 or 404, matching
// the contract the client already speaks; store failures become 500.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ShannonCanTech/aroundhere/internal/middleware"
	"github.com/ShannonCanTech/aroundhere/internal/service"
)

type ChatHandler struct {
	svc    *service.ChatService
	logger *zap.Logger
}

func NewChatHandler(svc *service.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, logger: logger}
}

// Create handles POST /api/chats/create
func (h *ChatHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)

	chat, err := h.svc.CreateNewChat(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to create chat", zap.Error(err))
		internalError(c, "Failed to create chat")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"chatId":    chat.ID,
		"createdAt": chat.CreatedAt,
	})
}

// List handles GET /api/chats
func (h *ChatHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)

	chats, err := h.svc.GetUserChats(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list chats", zap.Error(err))
		internalError(c, "Failed to fetch chats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// Get handles GET /api/chats/:chatId
func (h *ChatHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	chatID := c.Param("chatId")

	chat, err := h.svc.GetChatWithValidation(c.Request.Context(), chatID, userID)
	if err != nil {
		h.logger.Error("failed to get chat", zap.String("chat_id", chatID), zap.Error(err))
		internalError(c, "Failed to fetch chat")
		return
	}
	if chat == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "Chat not found or access denied",
		})
		return
	}
	c.JSON(http.StatusOK, chat)
}

// Delete handles DELETE /api/chats/:chatId
func (h *ChatHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	chatID := c.Param("chatId")

	ok, err := h.svc.DeleteChatWithValidation(c.Request.Context(), chatID, userID)
	if err != nil {
		h.logger.Error("failed to delete chat", zap.String("chat_id", chatID), zap.Error(err))
		internalError(c, "Failed to delete chat")
		return
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "Not authorized to delete this chat",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Join handles POST /api/chats/:chatId/join
func (h *ChatHandler) Join(c *gin.Context) {
	userID := middleware.GetUserID(c)
	chatID := c.Param("chatId")

	ok, err := h.svc.JoinChat(c.Request.Context(), chatID, userID)
	if err != nil {
		h.logger.Error("failed to join chat", zap.String("chat_id", chatID), zap.Error(err))
		internalError(c, "Failed to join chat")
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "Chat not found",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Leave handles POST /api/chats/:chatId/leave
func (h *ChatHandler) Leave(c *gin.Context) {
	userID := middleware.GetUserID(c)
	chatID := c.Param("chatId")

	ok, err := h.svc.LeaveChat(c.Request.Context(), chatID, userID)
	if err != nil {
		h.logger.Error("failed to leave chat", zap.String("chat_id", chatID), zap.Error(err))
		internalError(c, "Failed to leave chat")
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "Chat not found",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func internalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal Server Error",
		"message": message,
	})
}
