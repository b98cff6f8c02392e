package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher pushes notification payloads onto per-user Redis channels so
// connected clients (web sockets, mobile listeners) receive them live.
// Delivery is fire-and-forget; persistence is the caller's concern.
type Publisher struct {
	client *redis.Client
}

// NewPublisher wraps a Redis client as a realtime publisher.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Deliver publishes the payload to the recipient's notification channel.
func (p *Publisher) Deliver(ctx context.Context, recipientID string, payload interface{}) error {
	if p == nil || p.client == nil {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode realtime payload: %w", err)
	}
	channel := fmt.Sprintf("notifications:%s", recipientID)
	if err := p.client.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}
