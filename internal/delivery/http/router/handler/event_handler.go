// Package handler contains the Echo handlers for the public API.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	deliverycontext "beacon/internal/delivery/context"
	"beacon/internal/delivery/http/middleware"
	"beacon/internal/delivery/http/response"
	"beacon/internal/domain/repository"
	"beacon/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// EventHandler holds dependencies for event-related handlers
type EventHandler struct {
	uc     usecase.EventUsecase
	logger *slog.Logger
}

// NewEventHandler is the constructor for EventHandler
func NewEventHandler(uc usecase.EventUsecase, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		uc:     uc,
		logger: logger,
	}
}

// CreateEventRequest represents the request body for creating an event
type CreateEventRequest struct {
	Title              string    `json:"title" validate:"required"`
	Description        string    `json:"description"`
	EventDate          time.Time `json:"eventDate" validate:"required"`
	LocationName       string    `json:"locationName" validate:"required"`
	Latitude           *float64  `json:"latitude"`
	Longitude          *float64  `json:"longitude"`
	MaxParticipants    int       `json:"maxParticipants" validate:"omitempty,gt=0"`
	NotificationRadius *float64  `json:"notificationRadius" validate:"omitempty,gt=0"`
}

// CreateEvent handles POST /events. The creator comes from the verified
// token, never from the payload.
func (h *EventHandler) CreateEvent(c echo.Context) error {
	userID, ok := c.Get(middleware.ContextKeyUserID).(string)
	if !ok || userID == "" {
		return response.Message(c, http.StatusUnauthorized, "Authorization token required")
	}

	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return response.Message(c, http.StatusBadRequest, "Invalid request payload")
	}

	if req.Latitude == nil || req.Longitude == nil {
		return response.Message(c, http.StatusBadRequest, "Latitude and Longitude are required")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	event, err := h.uc.CreateEvent(c.Request().Context(), &usecase.CreateEventInput{
		Title:              req.Title,
		Description:        req.Description,
		EventDate:          req.EventDate,
		LocationName:       req.LocationName,
		Latitude:           *req.Latitude,
		Longitude:          *req.Longitude,
		MaxParticipants:    req.MaxParticipants,
		NotificationRadius: req.NotificationRadius,
		CreatedBy:          userID,
		RequestID:          deliverycontext.GetRequestID(c),
	})
	if err != nil {
		return err
	}

	return response.JSON(c, http.StatusCreated, event)
}

// GetEvents handles GET /events: events whose notification radius covers the
// caller's location, with optional eventId filter and pagination.
func (h *EventHandler) GetEvents(c echo.Context) error {
	latStr := c.QueryParam("latitude")
	lonStr := c.QueryParam("longitude")
	if latStr == "" || lonStr == "" {
		return response.Message(c, http.StatusBadRequest, "Latitude and Longitude are required")
	}

	lat, latErr := strconv.ParseFloat(latStr, 64)
	lon, lonErr := strconv.ParseFloat(lonStr, 64)
	if latErr != nil || lonErr != nil {
		return response.Message(c, http.StatusBadRequest, "Latitude and Longitude are required")
	}

	query := repository.EventQuery{
		Latitude:  lat,
		Longitude: lon,
	}

	if idStr := c.QueryParam("eventId"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return response.Message(c, http.StatusBadRequest, "Invalid eventId")
		}
		query.EventID = &id
	}

	if pageStr := c.QueryParam("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			query.Page = page
		}
	}

	if maxStr := c.QueryParam("maxResults"); maxStr != "" {
		if maxResults, err := strconv.Atoi(maxStr); err == nil && maxResults > 0 {
			query.MaxResults = maxResults
		}
	}

	events, err := h.uc.FindEventsNear(c.Request().Context(), query)
	if err != nil {
		return err
	}

	return response.JSON(c, http.StatusOK, events)
}

// GetEventsCalendar handles GET /events/calendar: all events in the given
// date window, soonest first. An empty window returns an empty array.
func (h *EventHandler) GetEventsCalendar(c echo.Context) error {
	startStr := c.QueryParam("startDate")
	endStr := c.QueryParam("endDate")
	if startStr == "" || endStr == "" {
		return response.Message(c, http.StatusBadRequest, "startDate and endDate are required")
	}

	start, err := parseDateParam(startStr)
	if err != nil {
		return response.Message(c, http.StatusBadRequest, "Invalid startDate")
	}
	end, err := parseDateParam(endStr)
	if err != nil {
		return response.Message(c, http.StatusBadRequest, "Invalid endDate")
	}

	// Date-only windows are inclusive of the end date.
	if end.Equal(end.Truncate(24 * time.Hour)) {
		end = end.AddDate(0, 0, 1)
	}

	events, err := h.uc.EventsBetween(c.Request().Context(), start, end)
	if err != nil {
		return err
	}

	return response.JSON(c, http.StatusOK, events)
}

func parseDateParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	return time.Parse(time.DateOnly, value)
}
