package service

import (
	"context"
	"errors"

	"beacon/internal/domain/entity"

	"github.com/google/uuid"
)

// FanoutTypeNewEvent is the message type for event-creation fan-outs.
const FanoutTypeNewEvent = "NEW_EVENT"

// ErrPublishUnavailable indicates the fan-out channel rejected the publish.
var ErrPublishUnavailable = errors.New("fan-out publish unavailable")

// SubscriberRef is the per-recipient slice of a fan-out message. Downstream
// consumers resolve the contact reference to an actual delivery channel.
type SubscriberRef struct {
	ID         uuid.UUID `json:"id"`
	ContactRef string    `json:"contactRef"`
}

// FanoutMessage is the single batched payload published per dispatched event.
// One message carries the full recipient list; per-subscriber delivery is the
// consumer's responsibility.
type FanoutMessage struct {
	RequestID   string          `json:"requestId,omitempty"` // For distributed tracing.
	Type        string          `json:"type"`
	Event       *entity.Event   `json:"event"`
	Subscribers []SubscriberRef `json:"subscribers"`
}

// EventPublisher publishes fan-out messages to the messaging backend.
type EventPublisher interface {
	// PublishFanout publishes one batched fan-out message.
	PublishFanout(ctx context.Context, msg *FanoutMessage) error

	// Close releases any resources held by the publisher.
	Close() error
}
