// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a location-tagged event published by a user.
// Events are immutable once created; the store owns them afterward.
type Event struct {
	ID                 uuid.UUID `json:"id"`                           // Server-generated identifier.
	Title              string    `json:"title"`                        // Short event title.
	Description        string    `json:"description"`                  // Free-form description.
	EventDate          time.Time `json:"eventDate"`                    // Scheduled timestamp of the event.
	LocationName       string    `json:"locationName"`                 // Human-readable location label.
	Latitude           float64   `json:"latitude"`                     // WGS84 decimal degrees, -90..90.
	Longitude          float64   `json:"longitude"`                    // WGS84 decimal degrees, -180..180.
	CreatedBy          string    `json:"createdBy"`                    // Token subject of the creator.
	MaxParticipants    int       `json:"maxParticipants"`              // Capacity, positive.
	NotificationRadius *float64  `json:"notificationRadius,omitempty"` // Optional broadcast radius override in meters.
	CreatedAt          time.Time `json:"createdAt"`                    // Timestamp of record creation.
	UpdatedAt          time.Time `json:"updatedAt"`                    // Timestamp of the last modification.
}
