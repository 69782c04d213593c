package postgres

import (
	"context"
	"time"

	"beacon/config"
	"beacon/internal/domain/entity"
	"beacon/internal/domain/repository"
	"beacon/internal/infra/persistence/model"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// subscriberRepository implements the repository.SubscriberRepository interface.
type subscriberRepository struct {
	db           *gorm.DB
	queryTimeout time.Duration
}

// NewSubscriberRepository is the constructor for subscriberRepository.
func NewSubscriberRepository(db *gorm.DB, cfg *config.Config) repository.SubscriberRepository {
	return &subscriberRepository{
		db:           db,
		queryTimeout: cfg.Notification.QueryTimeout,
	}
}

// FindCandidatesWithinBound returns subscribers whose stored location falls
// inside the bounding box. The box over-selects around the query circle;
// callers apply the exact distance check afterwards.
func (repo *subscriberRepository) FindCandidatesWithinBound(ctx context.Context, bound orb.Bound) ([]*entity.Subscriber, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.queryTimeout)
	defer cancel()

	var subscriberModels []*model.SubscriberModel
	if err := repo.db.WithContext(ctx).
		Where("latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?",
			bound.Min.Lat(), bound.Max.Lat(), bound.Min.Lon(), bound.Max.Lon()).
		Find(&subscriberModels).Error; err != nil {
		return nil, errors.Wrapf(repository.ErrStoreUnavailable, "failed to find subscriber candidates: %v", err)
	}

	subscribers := make([]*entity.Subscriber, 0, len(subscriberModels))
	for _, subscriberM := range subscriberModels {
		subscribers = append(subscribers, toSubscriberDomain(subscriberM))
	}

	return subscribers, nil
}

// toSubscriberDomain converts a GORM SubscriberModel to a domain Subscriber entity.
func toSubscriberDomain(data *model.SubscriberModel) *entity.Subscriber {
	if data == nil {
		return nil
	}

	return &entity.Subscriber{
		ID:                 data.ID,
		ContactRef:         data.ContactRef,
		Latitude:           data.Latitude,
		Longitude:          data.Longitude,
		NotificationRadius: data.NotificationRadius,
		CreatedAt:          data.CreatedAt,
		UpdatedAt:          data.UpdatedAt,
	}
}
