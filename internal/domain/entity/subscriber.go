package entity

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber represents a user who wants to be notified about nearby events.
// Read-only from the fan-out pipeline's perspective.
type Subscriber struct {
	ID                 uuid.UUID `json:"id"`                 // The unique identifier for the subscriber.
	ContactRef         string    `json:"contactRef"`         // External identity reference used by downstream delivery.
	Latitude           float64   `json:"latitude"`           // WGS84 decimal degrees.
	Longitude          float64   `json:"longitude"`          // WGS84 decimal degrees.
	NotificationRadius float64   `json:"notificationRadius"` // Radius (meters) within which the subscriber wants notifications; 0 means the configured default.
	CreatedAt          time.Time `json:"createdAt"`          // Timestamp of record creation.
	UpdatedAt          time.Time `json:"updatedAt"`          // Timestamp of the last modification.
}
