// Package model contains the GORM-specific structs mapping domain entities
// to their tables.
package model

import (
	"time"

	"github.com/google/uuid"
)

// EventModel is the GORM-specific struct for the 'events' table.
type EventModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	Title           string    `gorm:"type:text;not null"`
	Description     string    `gorm:"type:text"`
	EventDate       time.Time `gorm:"not null;index"`
	LocationName    string    `gorm:"type:text;not null"`
	Latitude        float64   `gorm:"type:decimal(10,8);not null"`
	Longitude       float64   `gorm:"type:decimal(11,8);not null"`
	// Note: location GEOGRAPHY(POINT, 4326) column exists in the database but
	// is not mapped here. It is maintained from Latitude/Longitude by a
	// database trigger; radius queries go through raw SQL with ST_DWithin.
	CreatedBy          string   `gorm:"type:text;not null;index"`
	MaxParticipants    int      `gorm:"not null"`
	NotificationRadius *float64 `gorm:"type:decimal(10,2)"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName explicitly sets the table name for GORM.
func (EventModel) TableName() string {
	return "events"
}
