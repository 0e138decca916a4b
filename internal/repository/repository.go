// Package repository implements the collection operations of the shared
// event store on top of a whole-document store.
package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/eventboard/eventboard/internal/model"
	"github.com/eventboard/eventboard/internal/store"
)

// EventRepository handles persistence for events.
//
// Every mutation is a read-modify-write of the full collection. The mutex
// serializes those cycles inside this process; writers in other processes
// sharing the same document are not coordinated.
type EventRepository struct {
	mu    sync.Mutex
	store store.Store
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(s store.Store) *EventRepository {
	return &EventRepository{store: s}
}

// List returns the collection in stored order, narrowed to category when
// one is given.
func (r *EventRepository) List(ctx context.Context, category model.Category) ([]model.Event, error) {
	events, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if category == "" {
		return events, nil
	}

	filtered := make([]model.Event, 0, len(events))
	for _, e := range events {
		if e.Category == category {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// GetByID returns the first event with the given id or model.ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	events, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	for i := range events {
		if events[i].ID == id {
			return &events[i], nil
		}
	}
	return nil, model.ErrNotFound
}

// Create appends an already-validated event and persists the collection.
// Nothing is observable unless the whole document was written.
func (r *EventRepository) Create(ctx context.Context, event model.Event) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	events, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	events = append(events, event)
	if err := r.store.Save(ctx, events); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return &event, nil
}

// Delete removes the first event whose id matches and persists the
// reduced collection. It returns model.ErrNotFound when nothing matches.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	events, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}

	idx := -1
	for i := range events {
		if events[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.ErrNotFound
	}

	events = append(events[:idx], events[idx+1:]...)
	if err := r.store.Save(ctx, events); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
