// Package realtime fans message events out to connected websocket clients.
// Sends are published to the Redis pub/sub channel chat_messages; a listener
// bridges that channel into an in-process hub of websocket connections. The
// pub/sub hop means every server instance sees every send. Delivery is
// best-effort: a failed publish or write never fails the originating request.
package realtime

import "github.com/ShannonCanTech/aroundhere/internal/models"

// Channel is the pub/sub channel carrying message events.
const Channel = "chat_messages"

// MessageEvent is the published payload: the message plus its chat ID so
// clients can filter.
type MessageEvent struct {
	models.Message
	ChatID string `json:"chatId"`
}
