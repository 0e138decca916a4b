// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eventboard/eventboard/internal/logging"
	"github.com/eventboard/eventboard/internal/model"
	"github.com/eventboard/eventboard/internal/repository"
)

// ErrMissingID is returned when a lookup or delete arrives without an id.
var ErrMissingID = errors.New("event id is required")

// EventService orchestrates event-related business operations.
type EventService struct {
	events *repository.EventRepository
	now    func() time.Time
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events *repository.EventRepository) *EventService {
	return &EventService{events: events, now: time.Now}
}

// CreateEvent validates and normalizes the request, then stores it.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	event, err := model.NewEvent(req, s.now())
	if err != nil {
		return nil, err
	}
	created, err := s.events.Create(ctx, event)
	if err != nil {
		return nil, err
	}
	logging.Info("event created", "id", created.ID, "category", created.Category)
	return created, nil
}

// ListEvents returns all events, or those of one category. An unknown
// category matches nothing.
func (s *EventService) ListEvents(ctx context.Context, category string) ([]model.Event, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return s.events.List(ctx, "")
	}
	cat, ok := model.ParseCategory(category)
	if !ok {
		return []model.Event{}, nil
	}
	return s.events.List(ctx, cat)
}

// GetEvent returns a single event by id.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes the event with the given id.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	if err := s.events.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	logging.Info("event deleted", "id", id)
	return nil
}
