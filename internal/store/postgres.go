package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventboard/eventboard/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS event_documents (
	name       TEXT PRIMARY KEY,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps the collection as one JSONB row, keyed by document
// name. A save is a single upsert, so it is all-or-nothing.
type PostgresStore struct {
	db   *pgxpool.Pool
	name string
}

// NewPostgresStore constructs a PostgresStore for the named document.
func NewPostgresStore(db *pgxpool.Pool, name string) *PostgresStore {
	return &PostgresStore{db: db, name: name}
}

// EnsureSchema creates the documents table if needed.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Load returns the collection; a missing row is an empty collection.
func (s *PostgresStore) Load(ctx context.Context) ([]model.Event, error) {
	var body []byte
	err := s.db.QueryRow(ctx,
		`SELECT body FROM event_documents WHERE name = $1`,
		s.name,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []model.Event{}, nil
		}
		return nil, fmt.Errorf("load document: %w", err)
	}
	return decode(body)
}

// Save replaces the document.
func (s *PostgresStore) Save(ctx context.Context, events []model.Event) error {
	body, err := encode(events)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO event_documents (name, body, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		s.name, string(body),
	)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Backup copies the document into a row named <name>@<unix>.
func (s *PostgresStore) Backup(ctx context.Context, now time.Time) (string, error) {
	backupName := fmt.Sprintf("%s@%d", s.name, now.Unix())
	tag, err := s.db.Exec(ctx,
		`INSERT INTO event_documents (name, body, updated_at)
		 SELECT $2, body, now() FROM event_documents WHERE name = $1
		 ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		s.name, backupName,
	)
	if err != nil {
		return "", fmt.Errorf("backup document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return "", nil
	}
	return backupName, nil
}
