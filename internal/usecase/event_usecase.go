// Package usecase defines the application-level interfaces between the
// delivery layer and the domain.
package usecase

import (
	"context"
	"time"

	"beacon/internal/domain/entity"
	"beacon/internal/domain/repository"
)

// CreateEventInput carries the validated fields for a new event.
type CreateEventInput struct {
	Title              string
	Description        string
	EventDate          time.Time
	LocationName       string
	Latitude           float64
	Longitude          float64
	MaxParticipants    int
	NotificationRadius *float64
	CreatedBy          string
	RequestID          string
}

// EventUsecase defines the interface for event ingestion and lookup use cases
type EventUsecase interface {
	// CreateEvent persists a new event and fans it out to nearby subscribers.
	// A fan-out failure does not fail the creation.
	CreateEvent(ctx context.Context, input *CreateEventInput) (*entity.Event, error)

	// FindEventsNear retrieves events whose notification radius covers the
	// given location, with optional ID filter and pagination.
	FindEventsNear(ctx context.Context, query repository.EventQuery) ([]*entity.Event, error)

	// EventsBetween retrieves all events scheduled in the given date window,
	// soonest first. An empty window is not an error.
	EventsBetween(ctx context.Context, start, end time.Time) ([]*entity.Event, error)
}
