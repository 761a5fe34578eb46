package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/guilherme-santos/zoomlauncher/internal/seen"
)

const (
	DriverName      = "sqlite3"
	DefaultFilename = "seen.db"
)

var _ seen.Store = (*Store)(nil)

type Store struct {
	db *sqlx.DB
}

// NewStore wraps db and runs the migrations.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{
		db: sqlx.NewDb(db, DriverName),
	}
	if err := s.RunMigrations(); err != nil {
		return nil, goerr.Wrap(err, "failed to run sqlite migrations")
	}
	return s, nil
}

// Open opens the database file at path with the sqlite3 driver.
func Open(path string) (*Store, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}
	return NewStore(db)
}

func (s Store) Close() error {
	return s.db.Close()
}

func (s Store) Load(ctx context.Context) ([]seen.Entry, error) {
	var rows []SeenMeeting
	err := s.db.SelectContext(ctx, &rows, `
		SELECT event_id, marked_at FROM seen_meetings ORDER BY rowid
	`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load seen meetings")
	}

	entries := make([]seen.Entry, len(rows))
	for i, r := range rows {
		entries[i] = r.Convert()
	}
	return entries, nil
}

func (s Store) IsMarked(ctx context.Context, id string) (bool, error) {
	var marked bool
	err := s.db.GetContext(ctx, &marked, `
		SELECT EXISTS (SELECT 1 FROM seen_meetings WHERE event_id = ?)
	`, id)
	if err != nil {
		return false, goerr.Wrap(err, "failed to check seen meeting", goerr.V("event_id", id))
	}
	return marked, nil
}

func (s Store) Mark(ctx context.Context, id string, now time.Time) error {
	m := newSeenMeeting(seen.NewEntry(id, now))
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO seen_meetings (event_id, marked_at)
		SELECT :event_id, :marked_at
		WHERE NOT EXISTS (
			SELECT 1 FROM seen_meetings WHERE event_id = :event_id AND marked_at = :marked_at
		)
	`, m)
	if err != nil {
		return goerr.Wrap(err, "failed to mark seen meeting", goerr.V("event_id", id))
	}
	return nil
}

// Prune replaces the table contents with the surviving entries.
func (s Store) Prune(ctx context.Context, now time.Time, retention time.Duration) (int, error) {
	entries, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	kept := seen.Survivors(entries, now, retention)
	if len(kept) == len(entries) {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to begin prune")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM seen_meetings`); err != nil {
		return 0, goerr.Wrap(err, "failed to clear seen meetings")
	}
	for _, e := range kept {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO seen_meetings (event_id, marked_at) VALUES (:event_id, :marked_at)
		`, newSeenMeeting(e))
		if err != nil {
			return 0, goerr.Wrap(err, "failed to restore seen meeting", goerr.V("event_id", e.ID))
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, goerr.Wrap(err, "failed to commit prune")
	}
	return len(entries) - len(kept), nil
}

// Insert stores entries as they are, keeping their original timestamps.
func (s Store) Insert(ctx context.Context, entries ...seen.Entry) error {
	for _, e := range entries {
		_, err := s.db.NamedExecContext(ctx, `
			INSERT INTO seen_meetings (event_id, marked_at) VALUES (:event_id, :marked_at)
		`, newSeenMeeting(e))
		if err != nil {
			return goerr.Wrap(err, "failed to insert seen meeting", goerr.V("event_id", e.ID))
		}
	}
	return nil
}
