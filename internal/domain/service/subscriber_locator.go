package service

import (
	"context"

	"beacon/internal/domain/entity"

	"github.com/paulmach/orb"
)

// SubscriberLocator answers proximity queries over the subscriber base.
type SubscriberLocator interface {
	// FindWithinRadius returns subscribers within radiusMeters of center,
	// honoring each subscriber's own notification radius when it is stricter.
	FindWithinRadius(ctx context.Context, center orb.Point, radiusMeters float64) ([]*entity.Subscriber, error)
}
