// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"beacon/config"
	"beacon/internal/domain/entity"
	"beacon/internal/domain/repository"
	"beacon/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const defaultPageSize = 20

// eventRepository implements the repository.EventRepository interface.
type eventRepository struct {
	db            *gorm.DB
	queryTimeout  time.Duration
	defaultRadius float64
}

// NewEventRepository is the constructor for eventRepository.
func NewEventRepository(db *gorm.DB, cfg *config.Config) repository.EventRepository {
	return &eventRepository{
		db:            db,
		queryTimeout:  cfg.Notification.QueryTimeout,
		defaultRadius: cfg.Notification.DefaultRadiusMeters,
	}
}

// CreateEvent persists a new event and fills in the generated fields.
func (repo *eventRepository) CreateEvent(ctx context.Context, event *entity.Event) error {
	ctx, cancel := context.WithTimeout(ctx, repo.queryTimeout)
	defer cancel()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	eventM := fromEventDomain(event)

	if err := repo.db.WithContext(ctx).Create(eventM).Error; err != nil {
		return errors.Wrapf(repository.ErrStoreUnavailable, "failed to create event: %v", err)
	}

	event.CreatedAt = eventM.CreatedAt
	event.UpdatedAt = eventM.UpdatedAt

	return nil
}

// FindEventsNear returns events whose notification radius covers the given
// location, soonest first. The radius comparison runs in the database via
// PostGIS so the index on the location column is used; the geography cast
// keeps the distance in meters.
func (repo *eventRepository) FindEventsNear(ctx context.Context, query repository.EventQuery) ([]*entity.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.queryTimeout)
	defer cancel()

	sql := `
		SELECT *
		FROM events
		WHERE ST_DWithin(
			location,
			ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography,
			COALESCE(notification_radius, ?)
		)
	`
	args := []any{query.Longitude, query.Latitude, repo.defaultRadius}

	if query.EventID != nil {
		sql += " AND id = ?"
		args = append(args, *query.EventID)
	}

	sql += " ORDER BY event_date ASC LIMIT ? OFFSET ?"
	limit := query.MaxResults
	if limit <= 0 {
		limit = defaultPageSize
	}
	offset := 0
	if query.Page > 1 {
		offset = (query.Page - 1) * limit
	}
	args = append(args, limit, offset)

	var eventModels []*model.EventModel
	if err := repo.db.WithContext(ctx).Raw(sql, args...).Scan(&eventModels).Error; err != nil {
		return nil, errors.Wrapf(repository.ErrStoreUnavailable, "failed to find events near location: %v", err)
	}

	return toEventDomains(eventModels), nil
}

// FindEventsBetween returns events scheduled in [start, end), soonest first.
func (repo *eventRepository) FindEventsBetween(ctx context.Context, start, end time.Time) ([]*entity.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.queryTimeout)
	defer cancel()

	var eventModels []*model.EventModel
	if err := repo.db.WithContext(ctx).
		Where("event_date >= ? AND event_date < ?", start, end).
		Order("event_date ASC").
		Find(&eventModels).Error; err != nil {
		return nil, errors.Wrapf(repository.ErrStoreUnavailable, "failed to find events between dates: %v", err)
	}

	return toEventDomains(eventModels), nil
}

// --- Mapper Functions ---

// toEventDomain converts a GORM EventModel to a domain Event entity.
func toEventDomain(data *model.EventModel) *entity.Event {
	if data == nil {
		return nil
	}

	return &entity.Event{
		ID:                 data.ID,
		Title:              data.Title,
		Description:        data.Description,
		EventDate:          data.EventDate,
		LocationName:       data.LocationName,
		Latitude:           data.Latitude,
		Longitude:          data.Longitude,
		CreatedBy:          data.CreatedBy,
		MaxParticipants:    data.MaxParticipants,
		NotificationRadius: data.NotificationRadius,
		CreatedAt:          data.CreatedAt,
		UpdatedAt:          data.UpdatedAt,
	}
}

func toEventDomains(data []*model.EventModel) []*entity.Event {
	events := make([]*entity.Event, 0, len(data))
	for _, eventM := range data {
		events = append(events, toEventDomain(eventM))
	}

	return events
}

// fromEventDomain converts a domain Event entity to a GORM EventModel.
func fromEventDomain(data *entity.Event) *model.EventModel {
	if data == nil {
		return nil
	}

	return &model.EventModel{
		ID:                 data.ID,
		Title:              data.Title,
		Description:        data.Description,
		EventDate:          data.EventDate,
		LocationName:       data.LocationName,
		Latitude:           data.Latitude,
		Longitude:          data.Longitude,
		CreatedBy:          data.CreatedBy,
		MaxParticipants:    data.MaxParticipants,
		NotificationRadius: data.NotificationRadius,
	}
}
