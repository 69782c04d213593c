package model

import (
	"time"

	"github.com/google/uuid"
)

// SubscriberModel is the GORM-specific struct for the 'subscribers' table.
// The fan-out pipeline only ever reads this table.
type SubscriberModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key"`
	ContactRef         string    `gorm:"type:text;not null;uniqueIndex"`
	Latitude           float64   `gorm:"type:decimal(10,8);not null"`
	Longitude          float64   `gorm:"type:decimal(11,8);not null"`
	NotificationRadius float64   `gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName explicitly sets the table name for GORM.
func (SubscriberModel) TableName() string {
	return "subscribers"
}
