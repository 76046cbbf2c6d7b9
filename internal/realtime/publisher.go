package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ShannonCanTech/aroundhere/internal/models"
)

// Publisher pushes message events onto the pub/sub channel.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) PublishMessage(ctx context.Context, chatID string, msg *models.Message) error {
	payload, err := json.Marshal(MessageEvent{Message: *msg, ChatID: chatID})
	if err != nil {
		return fmt.Errorf("encode message event: %w", err)
	}
	if err := p.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish message event: %w", err)
	}
	return nil
}
