// Package store persists attendance records in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/smokyabdulrahman/prayer-tracker/internal/attendance"
)

// FileName is the database file inside the data directory.
const FileName = "attendance.db"

const schema = `
CREATE TABLE IF NOT EXISTS attendance (
	date       TEXT PRIMARY KEY,
	prayers    TEXT NOT NULL DEFAULT '{}',
	fasted     INTEGER NULL,
	updated_at TEXT NOT NULL
);`

// row is the table's shape. prayers holds a JSON object of name -> bool.
type row struct {
	Date      string       `db:"date"`
	Prayers   string       `db:"prayers"`
	Fasted    sql.NullBool `db:"fasted"`
	UpdatedAt string       `db:"updated_at"`
}

// Store is a SQLite-backed attendance.Store.
type Store struct {
	db   *sqlx.DB
	path string
	// now stamps updated_at; tests replace it.
	now func() time.Time
}

var _ attendance.Store = (*Store)(nil)

// DefaultDir returns ~/.local/share/prayer-tracker, honouring XDG_DATA_HOME.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "prayer-tracker"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "prayer-tracker"), nil
}

// Open opens (creating if needed) the database in dir and applies the schema.
func Open(ctx context.Context, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	path := filepath.Join(dir, FileName)

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// A single writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}

	return &Store{db: db, path: path, now: time.Now}, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the record for key, or nil if none exists.
func (s *Store) Get(ctx context.Context, key string) (*attendance.Day, error) {
	var r row
	err := s.db.GetContext(ctx, &r, `SELECT date, prayers, fasted, updated_at FROM attendance WHERE date = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	d, err := r.day()
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns every record, date ascending.
func (s *Store) List(ctx context.Context) ([]attendance.Day, error) {
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, `SELECT date, prayers, fasted, updated_at FROM attendance ORDER BY date ASC`); err != nil {
		return nil, fmt.Errorf("listing attendance: %w", err)
	}
	out := make([]attendance.Day, 0, len(rows))
	for _, r := range rows {
		d, err := r.day()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Set merges prayers into key's record and refreshes updated_at. Prayers
// absent from the map keep their stored values; FastUnrecorded keeps the
// stored fasting state.
func (s *Store) Set(ctx context.Context, key string, prayers map[string]bool, fasted attendance.FastState) (attendance.Day, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return attendance.Day{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	current := attendance.Placeholder(key)
	var r row
	err = tx.GetContext(ctx, &r, `SELECT date, prayers, fasted, updated_at FROM attendance WHERE date = ?`, key)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return attendance.Day{}, fmt.Errorf("reading %s: %w", key, err)
	default:
		if current, err = r.day(); err != nil {
			return attendance.Day{}, err
		}
	}

	for name, done := range prayers {
		current.Prayers[name] = done
	}
	if fasted.Recorded() {
		current.Fasted = fasted
	}
	current.UpdatedAt = s.now().UTC().Truncate(time.Second)

	next, err := toRow(current)
	if err != nil {
		return attendance.Day{}, err
	}
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO attendance (date, prayers, fasted, updated_at)
		VALUES (:date, :prayers, :fasted, :updated_at)
		ON CONFLICT(date) DO UPDATE SET
			prayers = excluded.prayers,
			fasted = excluded.fasted,
			updated_at = excluded.updated_at`, next)
	if err != nil {
		return attendance.Day{}, fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return attendance.Day{}, fmt.Errorf("commit: %w", err)
	}
	return current, nil
}

// Reset deletes every record.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM attendance`); err != nil {
		return fmt.Errorf("resetting attendance: %w", err)
	}
	return nil
}

func (r row) day() (attendance.Day, error) {
	d := attendance.Day{Date: r.Date, Prayers: map[string]bool{}}
	if r.Prayers != "" {
		if err := json.Unmarshal([]byte(r.Prayers), &d.Prayers); err != nil {
			return attendance.Day{}, fmt.Errorf("decoding prayers for %s: %w", r.Date, err)
		}
		// A stored JSON null decodes to a nil map.
		if d.Prayers == nil {
			d.Prayers = map[string]bool{}
		}
	}
	if r.Fasted.Valid {
		d.Fasted = attendance.FastFromBool(r.Fasted.Bool)
	}
	if r.UpdatedAt != "" {
		t, err := time.Parse(time.RFC3339, r.UpdatedAt)
		if err != nil {
			return attendance.Day{}, fmt.Errorf("decoding updated_at for %s: %w", r.Date, err)
		}
		d.UpdatedAt = t
	}
	return d, nil
}

func toRow(d attendance.Day) (row, error) {
	b, err := json.Marshal(d.Prayers)
	if err != nil {
		return row{}, fmt.Errorf("encoding prayers for %s: %w", d.Date, err)
	}
	return row{
		Date:      d.Date,
		Prayers:   string(b),
		Fasted:    sql.NullBool{Bool: d.Fasted == attendance.FastKept, Valid: d.Fasted.Recorded()},
		UpdatedAt: d.UpdatedAt.Format(time.RFC3339),
	}, nil
}
