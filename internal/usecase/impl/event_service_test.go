package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/repository"
	"beacon/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEventRepo struct {
	mock.Mock
}

func (m *mockEventRepo) CreateEvent(ctx context.Context, event *entity.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockEventRepo) FindEventsNear(ctx context.Context, query repository.EventQuery) ([]*entity.Event, error) {
	args := m.Called(ctx, query)
	if events := args.Get(0); events != nil {
		return events.([]*entity.Event), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockEventRepo) FindEventsBetween(ctx context.Context, start, end time.Time) ([]*entity.Event, error) {
	args := m.Called(ctx, start, end)
	if events := args.Get(0); events != nil {
		return events.([]*entity.Event), args.Error(1)
	}

	return nil, args.Error(1)
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) DispatchNewEvent(ctx context.Context, event *entity.Event, requestID string) (*usecase.DispatchResult, error) {
	args := m.Called(ctx, event, requestID)
	if result := args.Get(0); result != nil {
		return result.(*usecase.DispatchResult), args.Error(1)
	}

	return nil, args.Error(1)
}

func createTestEventService(t *testing.T) (usecase.EventUsecase, *mockEventRepo, *mockDispatcher) {
	t.Helper()

	eventRepo := &mockEventRepo{}
	dispatcher := &mockDispatcher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewEventService(logger, eventRepo, dispatcher, testConfig()), eventRepo, dispatcher
}

func createInput() *usecase.CreateEventInput {
	return &usecase.CreateEventInput{
		Title:           "Street food night",
		Description:     "Vendors from all over town",
		EventDate:       time.Now().Add(48 * time.Hour),
		LocationName:    "Market Square",
		Latitude:        40.0,
		Longitude:       -74.0,
		MaxParticipants: 100,
		CreatedBy:       "user-123",
		RequestID:       "req-1",
	}
}

func TestEventService_CreateEvent_Success(t *testing.T) {
	svc, eventRepo, dispatcher := createTestEventService(t)

	ctx := context.Background()
	eventRepo.On("CreateEvent", ctx, mock.Anything).Return(nil)
	dispatcher.On("DispatchNewEvent", mock.Anything, mock.Anything, "req-1").
		Return(&usecase.DispatchResult{Notified: 3}, nil)

	event, err := svc.CreateEvent(ctx, createInput())

	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.Equal(t, "Street food night", event.Title)
	assert.Equal(t, "user-123", event.CreatedBy)
	eventRepo.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestEventService_CreateEvent_FanoutFailureStillCreates(t *testing.T) {
	svc, eventRepo, dispatcher := createTestEventService(t)

	ctx := context.Background()
	eventRepo.On("CreateEvent", ctx, mock.Anything).Return(nil)
	dispatcher.On("DispatchNewEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("broker down"))

	event, err := svc.CreateEvent(ctx, createInput())

	// The event was persisted; the dispatch failure must not surface.
	require.NoError(t, err)
	assert.NotZero(t, event.ID)
}

func TestEventService_CreateEvent_DispatchOutlivesRequestContext(t *testing.T) {
	svc, eventRepo, dispatcher := createTestEventService(t)

	// The client disconnects right after the insert; the fan-out must still
	// run on a context that is not canceled.
	ctx, cancel := context.WithCancel(context.Background())
	eventRepo.On("CreateEvent", ctx, mock.Anything).Return(nil).Run(func(mock.Arguments) {
		cancel()
	})
	dispatcher.On("DispatchNewEvent", mock.MatchedBy(func(dispatchCtx context.Context) bool {
		return dispatchCtx.Err() == nil
	}), mock.Anything, "req-1").Return(&usecase.DispatchResult{Notified: 1}, nil)

	event, err := svc.CreateEvent(ctx, createInput())

	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	dispatcher.AssertExpectations(t)
}

func TestEventService_CreateEvent_PersistFailure(t *testing.T) {
	svc, eventRepo, dispatcher := createTestEventService(t)

	ctx := context.Background()
	eventRepo.On("CreateEvent", ctx, mock.Anything).Return(repository.ErrStoreUnavailable)

	_, err := svc.CreateEvent(ctx, createInput())

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrStoreUnavailable)
	dispatcher.AssertNotCalled(t, "DispatchNewEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestEventService_CreateEvent_InvalidCoordinates(t *testing.T) {
	svc, eventRepo, _ := createTestEventService(t)

	input := createInput()
	input.Latitude = 95.0

	_, err := svc.CreateEvent(context.Background(), input)

	require.Error(t, err)
	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_FAILED", appErr.ErrorCode())
	eventRepo.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
}

func TestEventService_CreateEvent_RadiusCapped(t *testing.T) {
	svc, eventRepo, dispatcher := createTestEventService(t)

	ctx := context.Background()
	radius := 200000.0
	input := createInput()
	input.NotificationRadius = &radius

	eventRepo.On("CreateEvent", ctx, mock.MatchedBy(func(event *entity.Event) bool {
		return event.NotificationRadius != nil && *event.NotificationRadius == 50000.0
	})).Return(nil)
	dispatcher.On("DispatchNewEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(&usecase.DispatchResult{}, nil)

	event, err := svc.CreateEvent(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, event.NotificationRadius)
	assert.Equal(t, 50000.0, *event.NotificationRadius)
}

func TestEventService_FindEventsNear_Success(t *testing.T) {
	svc, eventRepo, _ := createTestEventService(t)

	ctx := context.Background()
	query := repository.EventQuery{Latitude: 40.0, Longitude: -74.0}
	stored := []*entity.Event{{Title: "Street food night"}}
	eventRepo.On("FindEventsNear", ctx, query).Return(stored, nil)

	events, err := svc.FindEventsNear(ctx, query)

	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestEventService_FindEventsNear_NoneFound(t *testing.T) {
	svc, eventRepo, _ := createTestEventService(t)

	ctx := context.Background()
	query := repository.EventQuery{Latitude: 40.0, Longitude: -74.0}
	eventRepo.On("FindEventsNear", ctx, query).Return([]*entity.Event{}, nil)

	_, err := svc.FindEventsNear(ctx, query)

	assert.ErrorIs(t, err, domainerrors.ErrNoEventsFound)
}

func TestEventService_FindEventsNear_StoreFailure(t *testing.T) {
	svc, eventRepo, _ := createTestEventService(t)

	ctx := context.Background()
	query := repository.EventQuery{Latitude: 40.0, Longitude: -74.0}
	eventRepo.On("FindEventsNear", ctx, query).Return(nil, repository.ErrStoreUnavailable)

	_, err := svc.FindEventsNear(ctx, query)

	assert.ErrorIs(t, err, domainerrors.ErrStoreUnavailable)
}

func TestEventService_EventsBetween_EmptyWindow(t *testing.T) {
	svc, eventRepo, _ := createTestEventService(t)

	ctx := context.Background()
	start := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	eventRepo.On("FindEventsBetween", ctx, start, end).Return([]*entity.Event{}, nil)

	events, err := svc.EventsBetween(ctx, start, end)

	require.NoError(t, err)
	assert.Empty(t, events)
	eventRepo.AssertExpectations(t)
}
