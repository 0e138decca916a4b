// Package store persists the shared event collection as a single JSON
// document. Every mutation rewrites the whole document; there is no
// partial update.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eventboard/eventboard/internal/model"
)

// Store loads and saves the full collection.
type Store interface {
	Load(ctx context.Context) ([]model.Event, error)
	Save(ctx context.Context, events []model.Event) error
}

// Backuper is implemented by stores that can snapshot their document.
type Backuper interface {
	// Backup copies the current document aside and returns where it went.
	Backup(ctx context.Context, now time.Time) (string, error)
}

func decode(data []byte) ([]model.Event, error) {
	if len(data) == 0 {
		return []model.Event{}, nil
	}
	var events []model.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}

func encode(events []model.Event) ([]byte, error) {
	if events == nil {
		events = []model.Event{}
	}
	data, err := json.MarshalIndent(events, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode collection: %w", err)
	}
	return data, nil
}
