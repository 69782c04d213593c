// Package repository defines the persistence interfaces the use cases depend on.
package repository

import (
	"context"
	"time"

	"beacon/internal/domain/entity"

	"github.com/google/uuid"
)

// EventQuery narrows an events-near-a-point lookup.
type EventQuery struct {
	Latitude   float64    // Caller's latitude.
	Longitude  float64    // Caller's longitude.
	EventID    *uuid.UUID // Optional filter to a single event.
	Page       int        // 1-based page index; 0 and 1 both mean the first page.
	MaxResults int        // Page size; 0 means the repository default.
}

// EventRepository persists and queries events.
type EventRepository interface {
	// CreateEvent persists a new event and fills in the server-assigned
	// identifier and timestamps on the given entity.
	CreateEvent(ctx context.Context, event *entity.Event) error

	// FindEventsNear returns events whose notification radius covers the
	// query point, ordered by event date ascending.
	FindEventsNear(ctx context.Context, query EventQuery) ([]*entity.Event, error)

	// FindEventsBetween returns events scheduled inside [start, end),
	// ordered by event date ascending.
	FindEventsBetween(ctx context.Context, start, end time.Time) ([]*entity.Event, error)
}
