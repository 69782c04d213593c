package usecase

import (
	"context"

	"beacon/internal/domain/entity"
)

// DispatchResult summarizes one fan-out.
type DispatchResult struct {
	// Notified is the number of distinct subscribers in the published message.
	Notified int
	// Deduplicated counts candidates dropped because the same subscriber
	// already appeared for this event.
	Deduplicated int
}

// DispatchUsecase resolves an event's audience and publishes the fan-out.
type DispatchUsecase interface {
	// DispatchNewEvent finds every subscriber within the event's notification
	// radius and publishes a single batched message for them. An empty
	// audience publishes nothing and is not an error.
	DispatchNewEvent(ctx context.Context, event *entity.Event, requestID string) (*DispatchResult, error)
}
