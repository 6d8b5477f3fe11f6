package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/ports"
)

// LoginTopic carries completed-login events for downstream consumers.
const LoginTopic = "rangda.login"

// LoginEvent represents a completed login.
type LoginEvent struct {
	Address  string    `json:"address"`
	UserID   string    `json:"user_id"`
	Wallet   string    `json:"wallet"`
	LoggedAt time.Time `json:"logged_at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     LoginTopic,
	}
}

// PublishLogin publishes a login event for the result.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, result *core.AuthResult) error {
	event := LoginEvent{
		Address:  result.Address,
		UserID:   result.UserID,
		Wallet:   string(result.Wallet),
		LoggedAt: result.IssuedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
