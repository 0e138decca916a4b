package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/eventboard/eventboard/internal/model"
	"github.com/eventboard/eventboard/internal/store"
)

func newTestRepo(t *testing.T) *EventRepository {
	t.Helper()
	return NewEventRepository(store.NewFileStore(filepath.Join(t.TempDir(), "events.json"), ""))
}

func TestCreateListGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []model.Event{
		{ID: "1", Title: "Concert", Category: model.CategoryMusic},
		{ID: "2", Title: "Match", Category: model.CategorySports},
		{ID: "3", Title: "Choir", Category: model.CategoryMusic},
	}
	for _, e := range seed {
		if _, err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create(%s) error: %v", e.ID, err)
		}
	}

	all, err := repo.List(ctx, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("List all: %d events, err=%v", len(all), err)
	}

	music, err := repo.List(ctx, model.CategoryMusic)
	if err != nil {
		t.Fatal(err)
	}
	if len(music) != 2 || music[0].ID != "1" || music[1].ID != "3" {
		t.Errorf("List(music) = %+v", music)
	}

	got, err := repo.GetByID(ctx, "2")
	if err != nil || got.Title != "Match" {
		t.Errorf("GetByID(2) = %+v, %v", got, err)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "a"} {
		if _, err := repo.Create(ctx, model.Event{ID: id}); err != nil {
			t.Fatal(err)
		}
	}

	if err := repo.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete(a) error: %v", err)
	}
	left, _ := repo.List(ctx, "")
	if len(left) != 2 || left[0].ID != "b" || left[1].ID != "a" {
		t.Errorf("only the first match should be removed, got %+v", left)
	}

	if err := repo.Delete(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "b"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("second Delete(b) error = %v, want ErrNotFound", err)
	}
}
