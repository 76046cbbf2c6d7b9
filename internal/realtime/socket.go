package realtime

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ShannonCanTech/aroundhere/internal/auth"
	"github.com/ShannonCanTech/aroundhere/internal/observ"
	"github.com/ShannonCanTech/aroundhere/internal/repository"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SocketHandler upgrades GET /ws/chats/:chatId connections for participants.
type SocketHandler struct {
	hub    *Hub
	chats  repository.ChatRepository
	secret string
	logger *zap.Logger
}

func NewSocketHandler(hub *Hub, chats repository.ChatRepository, secret string, logger *zap.Logger) *SocketHandler {
	return &SocketHandler{hub: hub, chats: chats, secret: secret, logger: logger}
}

// Handle authenticates the caller (header or ?token= for browser websocket
// clients, which cannot set headers), verifies participation, then parks the
// connection in the hub until it closes. The read loop only drains control
// frames; clients send through the HTTP API.
func (h *SocketHandler) Handle(c *gin.Context) {
	chatID := c.Param("chatId")

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
	} else {
		parts := strings.SplitN(token, " ", 2)
		if len(parts) == 2 {
			token = parts[1]
		}
	}
	claims, err := auth.ParseToken(token, h.secret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "message": "invalid or expired token"})
		return
	}

	member, err := h.chats.IsParticipant(c.Request.Context(), chatID, claims.UserID)
	if err != nil || !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden", "message": "User is not a participant in this chat"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.hub.Add(chatID, conn)
	observ.IncWSActive()
	defer func() {
		h.hub.Remove(chatID, conn)
		observ.DecWSActive()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
