package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ShannonCanTech/aroundhere/internal/middleware"
	"github.com/ShannonCanTech/aroundhere/internal/models"
	"github.com/ShannonCanTech/aroundhere/internal/service"
)

// MessagePublisher broadcasts a sent message to realtime subscribers.
// Publishing is best-effort; a failure is logged, never surfaced.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, chatID string, msg *models.Message) error
}

type MessageHandler struct {
	svc       *service.MessageService
	publisher MessagePublisher
	logger    *zap.Logger
}

func NewMessageHandler(svc *service.MessageService, publisher MessagePublisher, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{svc: svc, publisher: publisher, logger: logger}
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

type editMessageRequest struct {
	Content string `json:"content"`
}

// Send handles POST /api/chats/:chatId/messages
func (h *MessageHandler) Send(c *gin.Context) {
	userID := middleware.GetUserID(c)
	username := middleware.GetUsername(c)
	chatID := c.Param("chatId")

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Message content cannot be empty",
		})
		return
	}

	msg, err := h.svc.SendMessage(c.Request.Context(), chatID, userID, username, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrNotParticipant) {
			forbiddenNotParticipant(c)
			return
		}
		h.logger.Error("failed to send message", zap.String("chat_id", chatID), zap.Error(err))
		internalError(c, "Failed to send message")
		return
	}

	if h.publisher != nil {
		if err := h.publisher.PublishMessage(c.Request.Context(), chatID, msg); err != nil {
			h.logger.Warn("failed to publish message event",
				zap.String("chat_id", chatID),
				zap.Error(err),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// List handles GET /api/chats/:chatId/messages?limit=50&before=123
func (h *MessageHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	chatID := c.Param("chatId")

	limit := service.DefaultPageSize
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Bad Request",
				"message": "Invalid 'limit' parameter",
			})
			return
		}
		limit = parsed
	}

	var before int64
	if b := c.Query("before"); b != "" {
		parsed, err := strconv.ParseInt(b, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Bad Request",
				"message": "Invalid 'before' parameter",
			})
			return
		}
		before = parsed
	}

	page, err := h.svc.GetMessages(c.Request.Context(), chatID, userID, limit, before)
	if err != nil {
		if errors.Is(err, service.ErrNotParticipant) {
			forbiddenNotParticipant(c)
			return
		}
		h.logger.Error("failed to list messages", zap.String("chat_id", chatID), zap.Error(err))
		internalError(c, "Failed to fetch messages")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"messages": page.Messages,
		"hasMore":  page.HasMore,
	})
}

// Edit handles PUT /api/chats/:chatId/messages/:messageId
func (h *MessageHandler) Edit(c *gin.Context) {
	userID := middleware.GetUserID(c)
	chatID := c.Param("chatId")
	messageID := c.Param("messageId")

	var req editMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Message content cannot be empty",
		})
		return
	}

	msg, err := h.svc.EditMessage(c.Request.Context(), chatID, messageID, userID, req.Content)
	if err != nil {
		h.logger.Error("failed to edit message", zap.String("message_id", messageID), zap.Error(err))
		internalError(c, "Failed to edit message")
		return
	}
	if msg == nil {
		// Not a participant, not the author, or no such message; callers
		// cannot tell which, by contract.
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "Not authorized to edit this message",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// Delete handles DELETE /api/chats/:chatId/messages/:messageId
func (h *MessageHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	chatID := c.Param("chatId")
	messageID := c.Param("messageId")

	ok, err := h.svc.DeleteMessage(c.Request.Context(), chatID, messageID, userID)
	if err != nil {
		h.logger.Error("failed to delete message", zap.String("message_id", messageID), zap.Error(err))
		internalError(c, "Failed to delete message")
		return
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "Not authorized to delete this message",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func forbiddenNotParticipant(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{
		"error":   "Forbidden",
		"message": "User is not a participant in this chat",
	})
}
