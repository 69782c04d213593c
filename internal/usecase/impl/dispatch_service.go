// Package impl contains the concrete implementations of the usecase interfaces.
package impl

import (
	"context"
	"log/slog"

	"beacon/config"
	"beacon/internal/domain/entity"
	"beacon/internal/domain/service"
	"beacon/internal/geo"
	"beacon/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type dispatchService struct {
	logger        *slog.Logger
	locator       service.SubscriberLocator
	publisher     service.EventPublisher
	defaultRadius float64
	maxRadius     float64
}

// NewDispatchService creates a new dispatch service instance
func NewDispatchService(
	logger *slog.Logger,
	locator service.SubscriberLocator,
	publisher service.EventPublisher,
	cfg *config.Config,
) usecase.DispatchUsecase {
	return &dispatchService{
		logger:        logger,
		locator:       locator,
		publisher:     publisher,
		defaultRadius: cfg.Notification.DefaultRadiusMeters,
		maxRadius:     cfg.Notification.MaxRadiusMeters,
	}
}

// DispatchNewEvent resolves the audience for a freshly created event and
// publishes one batched fan-out message for all of them.
func (s *dispatchService) DispatchNewEvent(ctx context.Context, event *entity.Event, requestID string) (*usecase.DispatchResult, error) {
	radius := s.defaultRadius
	if event.NotificationRadius != nil && *event.NotificationRadius > 0 {
		radius = *event.NotificationRadius
	}
	if radius > s.maxRadius {
		radius = s.maxRadius
	}

	subscribers, err := s.locator.FindWithinRadius(ctx, geo.LatLon(event.Latitude, event.Longitude), radius)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve fan-out audience")
	}

	// One notification per subscriber per event, even if the locator hands
	// back the same subscriber twice.
	seen := make(map[uuid.UUID]struct{}, len(subscribers))
	refs := make([]service.SubscriberRef, 0, len(subscribers))
	deduplicated := 0
	for _, sub := range subscribers {
		if _, ok := seen[sub.ID]; ok {
			deduplicated++

			continue
		}
		seen[sub.ID] = struct{}{}
		refs = append(refs, service.SubscriberRef{ID: sub.ID, ContactRef: sub.ContactRef})
	}

	if len(refs) == 0 {
		s.logger.Info("No subscribers in range, skipping fan-out",
			slog.String("event_id", event.ID.String()),
			slog.Float64("radius_meters", radius),
		)

		return &usecase.DispatchResult{}, nil
	}

	msg := &service.FanoutMessage{
		RequestID:   requestID,
		Type:        service.FanoutTypeNewEvent,
		Event:       event,
		Subscribers: refs,
	}
	if err := s.publisher.PublishFanout(ctx, msg); err != nil {
		return nil, errors.Wrap(err, "failed to publish fan-out")
	}

	s.logger.Info("Fan-out published",
		slog.String("event_id", event.ID.String()),
		slog.Int("notified", len(refs)),
		slog.Int("deduplicated", deduplicated),
	)

	return &usecase.DispatchResult{
		Notified:     len(refs),
		Deduplicated: deduplicated,
	}, nil
}
