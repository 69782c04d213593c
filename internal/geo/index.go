package geo

import (
	"context"

	"beacon/internal/domain/entity"
	"beacon/internal/domain/repository"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// Index answers "which subscribers lie within radius R of point P" against
// the persistent store. Candidates come from a bounding-box prefilter; the
// haversine check above is the semantic contract for inclusion.
type Index struct {
	subscribers         repository.SubscriberRepository
	defaultRadiusMeters float64
}

// NewIndex creates a geo index over the subscriber store. defaultRadiusMeters
// applies to subscribers without an explicit notification radius.
func NewIndex(subscribers repository.SubscriberRepository, defaultRadiusMeters float64) *Index {
	return &Index{
		subscribers:         subscribers,
		defaultRadiusMeters: defaultRadiusMeters,
	}
}

// boundRadiusScale pads the prefilter box. orb sizes the box on the WGS84
// radius (6378137 m) while Distance uses the 6371 km mean radius, so an
// unpadded box comes out slightly smaller than the query circle and clips
// matches sitting exactly on the boundary.
const boundRadiusScale = 6378137.0 / 6371000.0

// FindWithinRadius returns the subscribers whose distance to center is at
// most min(radiusMeters, subscriber's own radius). The stricter of the two
// bounds governs, and equality at the boundary is inclusive.
func (idx *Index) FindWithinRadius(ctx context.Context, center orb.Point, radiusMeters float64) ([]*entity.Subscriber, error) {
	// The effective radius never exceeds the query radius, so a padded box
	// around the query circle contains every possible match. Over-selection
	// is discarded by the exact distance check below.
	bound := orbgeo.NewBoundAroundPoint(center, radiusMeters*boundRadiusScale)

	candidates, err := idx.subscribers.FindCandidatesWithinBound(ctx, bound)
	if err != nil {
		return nil, err
	}

	matched := make([]*entity.Subscriber, 0, len(candidates))
	for _, sub := range candidates {
		subscriberRadius := sub.NotificationRadius
		if subscriberRadius <= 0 {
			subscriberRadius = idx.defaultRadiusMeters
		}

		effective := min(radiusMeters, subscriberRadius)
		if Distance(center, LatLon(sub.Latitude, sub.Longitude)) <= effective {
			matched = append(matched, sub)
		}
	}

	return matched, nil
}
