package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"beacon/config"
	"beacon/internal/domain/entity"
	"beacon/internal/domain/service"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLocator struct {
	mock.Mock
}

func (m *mockLocator) FindWithinRadius(ctx context.Context, center orb.Point, radiusMeters float64) ([]*entity.Subscriber, error) {
	args := m.Called(ctx, center, radiusMeters)
	if subs := args.Get(0); subs != nil {
		return subs.([]*entity.Subscriber), args.Error(1)
	}

	return nil, args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishFanout(ctx context.Context, msg *service.FanoutMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

func testConfig() *config.Config {
	return &config.Config{
		Notification: &config.NotificationConfig{
			DefaultRadiusMeters: 1000,
			MaxRadiusMeters:     50000,
			QueryTimeout:        5 * time.Second,
		},
	}
}

func testEvent(radius *float64) *entity.Event {
	return &entity.Event{
		ID:                 uuid.New(),
		Title:              "Street food night",
		EventDate:          time.Now().Add(24 * time.Hour),
		LocationName:       "Market Square",
		Latitude:           40.0,
		Longitude:          -74.0,
		CreatedBy:          "user-123",
		MaxParticipants:    100,
		NotificationRadius: radius,
	}
}

func createTestDispatchService(t *testing.T) (*dispatchService, *mockLocator, *mockPublisher) {
	t.Helper()

	locator := &mockLocator{}
	publisher := &mockPublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewDispatchService(logger, locator, publisher, testConfig()).(*dispatchService)

	return svc, locator, publisher
}

func TestDispatchService_DispatchNewEvent_Success(t *testing.T) {
	svc, locator, publisher := createTestDispatchService(t)

	ctx := context.Background()
	event := testEvent(nil)
	subA := &entity.Subscriber{ID: uuid.New(), ContactRef: "arn:a"}
	subB := &entity.Subscriber{ID: uuid.New(), ContactRef: "arn:b"}

	locator.On("FindWithinRadius", ctx, mock.Anything, 1000.0).
		Return([]*entity.Subscriber{subA, subB}, nil)
	publisher.On("PublishFanout", ctx, mock.MatchedBy(func(msg *service.FanoutMessage) bool {
		return msg.Type == service.FanoutTypeNewEvent &&
			msg.Event.ID == event.ID &&
			len(msg.Subscribers) == 2 &&
			msg.RequestID == "req-1"
	})).Return(nil)

	result, err := svc.DispatchNewEvent(ctx, event, "req-1")

	require.NoError(t, err)
	assert.Equal(t, 2, result.Notified)
	assert.Equal(t, 0, result.Deduplicated)
	publisher.AssertNumberOfCalls(t, "PublishFanout", 1)
}

func TestDispatchService_DispatchNewEvent_DeduplicatesWithinCall(t *testing.T) {
	svc, locator, publisher := createTestDispatchService(t)

	ctx := context.Background()
	event := testEvent(nil)
	sub := &entity.Subscriber{ID: uuid.New(), ContactRef: "arn:a"}

	// The same subscriber twice must yield a single recipient.
	locator.On("FindWithinRadius", ctx, mock.Anything, 1000.0).
		Return([]*entity.Subscriber{sub, sub}, nil)
	publisher.On("PublishFanout", ctx, mock.MatchedBy(func(msg *service.FanoutMessage) bool {
		return len(msg.Subscribers) == 1 && msg.Subscribers[0].ID == sub.ID
	})).Return(nil)

	result, err := svc.DispatchNewEvent(ctx, event, "")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Notified)
	assert.Equal(t, 1, result.Deduplicated)
}

func TestDispatchService_DispatchNewEvent_IndependentDispatchesNotDeduplicated(t *testing.T) {
	svc, locator, publisher := createTestDispatchService(t)

	ctx := context.Background()
	event := testEvent(nil)
	sub := &entity.Subscriber{ID: uuid.New(), ContactRef: "arn:a"}

	locator.On("FindWithinRadius", ctx, mock.Anything, 1000.0).
		Return([]*entity.Subscriber{sub}, nil).Twice()
	publisher.On("PublishFanout", ctx, mock.Anything).Return(nil).Twice()

	// Deduplication is scoped to one dispatch; a second dispatch for the same
	// event notifies again.
	first, err := svc.DispatchNewEvent(ctx, event, "")
	require.NoError(t, err)
	second, err := svc.DispatchNewEvent(ctx, event, "")
	require.NoError(t, err)

	assert.Equal(t, 1, first.Notified)
	assert.Equal(t, 1, second.Notified)
	publisher.AssertNumberOfCalls(t, "PublishFanout", 2)
}

func TestDispatchService_DispatchNewEvent_EmptyAudienceSkipsPublish(t *testing.T) {
	svc, locator, publisher := createTestDispatchService(t)

	ctx := context.Background()
	locator.On("FindWithinRadius", ctx, mock.Anything, 1000.0).
		Return([]*entity.Subscriber{}, nil)

	result, err := svc.DispatchNewEvent(ctx, testEvent(nil), "")

	require.NoError(t, err)
	assert.Equal(t, 0, result.Notified)
	publisher.AssertNotCalled(t, "PublishFanout", mock.Anything, mock.Anything)
}

func TestDispatchService_DispatchNewEvent_EventRadiusOverridesDefault(t *testing.T) {
	svc, locator, publisher := createTestDispatchService(t)

	ctx := context.Background()
	radius := 2500.0
	locator.On("FindWithinRadius", ctx, mock.Anything, 2500.0).
		Return([]*entity.Subscriber{}, nil)

	_, err := svc.DispatchNewEvent(ctx, testEvent(&radius), "")

	require.NoError(t, err)
	locator.AssertExpectations(t)
	publisher.AssertNotCalled(t, "PublishFanout", mock.Anything, mock.Anything)
}

func TestDispatchService_DispatchNewEvent_RadiusCapped(t *testing.T) {
	svc, locator, _ := createTestDispatchService(t)

	ctx := context.Background()
	radius := 200000.0 // beyond the configured maximum
	locator.On("FindWithinRadius", ctx, mock.Anything, 50000.0).
		Return([]*entity.Subscriber{}, nil)

	_, err := svc.DispatchNewEvent(ctx, testEvent(&radius), "")

	require.NoError(t, err)
	locator.AssertExpectations(t)
}

func TestDispatchService_DispatchNewEvent_LocatorFailure(t *testing.T) {
	svc, locator, publisher := createTestDispatchService(t)

	ctx := context.Background()
	locator.On("FindWithinRadius", ctx, mock.Anything, 1000.0).
		Return(nil, errors.New("store down"))

	_, err := svc.DispatchNewEvent(ctx, testEvent(nil), "")

	require.Error(t, err)
	publisher.AssertNotCalled(t, "PublishFanout", mock.Anything, mock.Anything)
}

func TestDispatchService_DispatchNewEvent_PublishFailure(t *testing.T) {
	svc, locator, publisher := createTestDispatchService(t)

	ctx := context.Background()
	sub := &entity.Subscriber{ID: uuid.New(), ContactRef: "arn:a"}
	locator.On("FindWithinRadius", ctx, mock.Anything, 1000.0).
		Return([]*entity.Subscriber{sub}, nil)
	publisher.On("PublishFanout", ctx, mock.Anything).
		Return(service.ErrPublishUnavailable)

	_, err := svc.DispatchNewEvent(ctx, testEvent(nil), "")

	assert.ErrorIs(t, err, service.ErrPublishUnavailable)
}
