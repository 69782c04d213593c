package repository

import (
	"context"

	"beacon/internal/domain/entity"

	"github.com/paulmach/orb"
)

// SubscriberRepository reads the subscriber base for geo queries.
type SubscriberRepository interface {
	// FindCandidatesWithinBound returns subscribers whose stored location
	// falls inside the given bounding box. The box is a cheap prefilter;
	// callers apply the exact great-circle radius check on the result.
	FindCandidatesWithinBound(ctx context.Context, bound orb.Bound) ([]*entity.Subscriber, error)
}
