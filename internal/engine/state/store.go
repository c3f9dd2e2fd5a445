// Package state keeps a SQLite log of download attempts.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/progkeep/progkeep/internal/engine/types"
	"github.com/progkeep/progkeep/internal/utils"
)

// DBFileName is the history database inside the state directory.
const DBFileName = "history.db"

var ErrNotFound = errors.New("history entry not found")

// Store is a download history backed by SQLite.
type Store struct {
	DB *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening history: migrating %s: %w", path, err)
	}

	utils.Debug("History store opened at %s", path)
	return &Store{DB: db}, nil
}

const schema = `
PRAGMA busy_timeout = 5000;
CREATE TABLE IF NOT EXISTS downloads (
	id           TEXT PRIMARY KEY,
	program_id   TEXT NOT NULL,
	program_name TEXT NOT NULL,
	url          TEXT NOT NULL,
	dest_path    TEXT NOT NULL DEFAULT '',
	filename     TEXT NOT NULL DEFAULT '',
	outcome      TEXT NOT NULL,
	error        TEXT NOT NULL DEFAULT '',
	total_size   INTEGER NOT NULL DEFAULT 0,
	started_at   INTEGER NOT NULL,
	time_taken   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS downloads_started_at ON downloads (started_at);
CREATE INDEX IF NOT EXISTS downloads_program_id ON downloads (program_id);`

func (s *Store) Close() error {
	return s.DB.Close()
}

// RecordDownload inserts entry, filling in ID and StartedAt when unset.
func (s *Store) RecordDownload(ctx context.Context, entry *types.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.StartedAt == 0 {
		entry.StartedAt = time.Now().Unix()
	}

	if _, err := s.DB.ExecContext(
		ctx,
		insertDownloadQuery,
		entry.ID,
		entry.ProgramID,
		entry.ProgramName,
		entry.URL,
		entry.DestPath,
		entry.Filename,
		entry.Outcome,
		entry.Error,
		entry.TotalSize,
		entry.StartedAt,
		entry.TimeTaken,
	); err != nil {
		return fmt.Errorf("recording download %s: %w", entry.ID, err)
	}
	return nil
}

const insertDownloadQuery = `
INSERT INTO downloads (
	id, program_id, program_name, url, dest_path, filename,
	outcome, error, total_size, started_at, time_taken
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

const selectColumns = `
SELECT
	id, program_id, program_name, url, dest_path, filename,
	outcome, error, total_size, started_at, time_taken
FROM downloads`

// ListAllDownloads returns the newest entries first. limit <= 0 returns all.
func (s *Store) ListAllDownloads(ctx context.Context, limit int) (entries []types.HistoryEntry, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("listing downloads: %w", err)
		}
	}()

	if limit <= 0 {
		limit = -1
	}
	return s.query(ctx, selectColumns+` ORDER BY started_at DESC, rowid DESC LIMIT ?;`, limit)
}

// ListForProgram returns the entries of one program, newest first.
func (s *Store) ListForProgram(ctx context.Context, programID string) (entries []types.HistoryEntry, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("listing downloads of %s: %w", programID, err)
		}
	}()

	return s.query(ctx, selectColumns+` WHERE program_id = ? ORDER BY started_at DESC, rowid DESC;`, programID)
}

// GetDownload looks up an entry by ID or unique ID prefix.
func (s *Store) GetDownload(ctx context.Context, id string) (*types.HistoryEntry, error) {
	entries, err := s.query(ctx, selectColumns+` WHERE id = ? OR id LIKE ? || '%' LIMIT 2;`, id, id)
	if err != nil {
		return nil, fmt.Errorf("fetching download %s: %w", id, err)
	}

	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], nil
		}
	}
	switch len(entries) {
	case 0:
		return nil, fmt.Errorf("fetching download %s: %w", id, ErrNotFound)
	case 1:
		return &entries[0], nil
	default:
		return nil, fmt.Errorf("fetching download %s: ambiguous ID prefix", id)
	}
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]types.HistoryEntry, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []types.HistoryEntry
	for rows.Next() {
		var e types.HistoryEntry
		if err := rows.Scan(
			&e.ID,
			&e.ProgramID,
			&e.ProgramName,
			&e.URL,
			&e.DestPath,
			&e.Filename,
			&e.Outcome,
			&e.Error,
			&e.TotalSize,
			&e.StartedAt,
			&e.TimeTaken,
		); err != nil {
			return nil, fmt.Errorf("scanning into downloads: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
