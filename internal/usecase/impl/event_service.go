package impl

import (
	"context"
	"log/slog"
	"time"

	"beacon/config"
	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/repository"
	"beacon/internal/geo"
	"beacon/internal/usecase"

	"github.com/google/uuid"
)

type eventService struct {
	logger     *slog.Logger
	eventRepo  repository.EventRepository
	dispatcher usecase.DispatchUsecase
	maxRadius  float64
}

// NewEventService creates a new event service instance
func NewEventService(
	logger *slog.Logger,
	eventRepo repository.EventRepository,
	dispatcher usecase.DispatchUsecase,
	cfg *config.Config,
) usecase.EventUsecase {
	return &eventService{
		logger:     logger,
		eventRepo:  eventRepo,
		dispatcher: dispatcher,
		maxRadius:  cfg.Notification.MaxRadiusMeters,
	}
}

// CreateEvent persists a new event and fans it out to nearby subscribers.
// Once the event is stored, a fan-out failure is logged and swallowed; the
// caller still gets the created event.
func (s *eventService) CreateEvent(ctx context.Context, input *usecase.CreateEventInput) (*entity.Event, error) {
	if !geo.ValidCoordinates(input.Latitude, input.Longitude) {
		return nil, domainerrors.ErrValidationFailed.WithDetails("latitude or longitude out of range")
	}

	radius := input.NotificationRadius
	if radius != nil {
		if *radius <= 0 {
			radius = nil
		} else if *radius > s.maxRadius {
			capped := s.maxRadius
			radius = &capped
		}
	}

	event := &entity.Event{
		ID:                 uuid.New(),
		Title:              input.Title,
		Description:        input.Description,
		EventDate:          input.EventDate,
		LocationName:       input.LocationName,
		Latitude:           input.Latitude,
		Longitude:          input.Longitude,
		CreatedBy:          input.CreatedBy,
		MaxParticipants:    input.MaxParticipants,
		NotificationRadius: radius,
	}

	if err := s.eventRepo.CreateEvent(ctx, event); err != nil {
		return nil, domainerrors.ErrStoreUnavailable.WrapMessage(err.Error())
	}

	s.logger.Info("Event persisted",
		slog.String("event_id", event.ID.String()),
		slog.String("created_by", event.CreatedBy),
	)

	// The event exists regardless of what happens to the fan-out, so the
	// dispatch must not be cut short by the request ending.
	fanoutCtx := context.WithoutCancel(ctx)
	if result, err := s.dispatcher.DispatchNewEvent(fanoutCtx, event, input.RequestID); err != nil {
		s.logger.Warn("Fan-out failed, event already persisted",
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()),
		)
	} else {
		s.logger.Info("Event creation complete",
			slog.String("event_id", event.ID.String()),
			slog.Int("notified", result.Notified),
		)
	}

	return event, nil
}

// FindEventsNear retrieves events whose notification radius covers the given
// location.
func (s *eventService) FindEventsNear(ctx context.Context, query repository.EventQuery) ([]*entity.Event, error) {
	if !geo.ValidCoordinates(query.Latitude, query.Longitude) {
		return nil, domainerrors.ErrValidationFailed.WithDetails("latitude or longitude out of range")
	}

	events, err := s.eventRepo.FindEventsNear(ctx, query)
	if err != nil {
		return nil, domainerrors.ErrStoreUnavailable.WrapMessage(err.Error())
	}

	if len(events) == 0 {
		return nil, domainerrors.ErrNoEventsFound
	}

	return events, nil
}

// EventsBetween retrieves all events scheduled in [start, end). An empty
// window is not an error.
func (s *eventService) EventsBetween(ctx context.Context, start, end time.Time) ([]*entity.Event, error) {
	events, err := s.eventRepo.FindEventsBetween(ctx, start, end)
	if err != nil {
		return nil, domainerrors.ErrStoreUnavailable.WrapMessage(err.Error())
	}

	return events, nil
}
