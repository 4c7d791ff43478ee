// Package usagedb journals quota spending to SQLite for later inspection.
// The journal is write-only from the governor's point of view: quota state is
// never restored from it.
package usagedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_youtube/internal/governor"
)

const dayLayout = "2006-01-02"

// KindUsage is the spend of one operation kind on one day.
type KindUsage struct {
	Kind  string `json:"kind"`
	Units int    `json:"units"`
	Calls int    `json:"calls"`
}

// DayUsage is the journal for one day.
type DayUsage struct {
	Day   string      `json:"day"`
	Units int         `json:"total_units"`
	Calls int         `json:"total_calls"`
	Kinds []KindUsage `json:"kinds"`
}

// Store is a SQLite-backed governor.UsageRecorder.
type Store struct {
	db  *sql.DB
	loc *time.Location
}

var _ governor.UsageRecorder = (*Store)(nil)

// Open opens (or creates) the journal at path. Days are bucketed in loc,
// which should match the quota window location; nil means UTC.
func Open(path string, loc *time.Location) (*Store, error) {
	if path == "" {
		return nil, errors.New("usagedb: empty path")
	}
	if loc == nil {
		loc = time.UTC
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("usagedb: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("usagedb: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("usagedb: init schema: %w", err)
	}
	return &Store{db: db, loc: loc}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS quota_usage (
		day   TEXT    NOT NULL,
		kind  TEXT    NOT NULL,
		units INTEGER NOT NULL DEFAULT 0,
		calls INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (day, kind)
	)`)
	return err
}

// RecordUsage adds one reservation to its day and kind.
func (s *Store) RecordUsage(ctx context.Context, rec governor.UsageRecord) error {
	day := rec.At.In(s.loc).Format(dayLayout)
	_, err := s.db.ExecContext(ctx, `INSERT INTO quota_usage (day, kind, units, calls)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(day, kind) DO UPDATE SET
			units = units + excluded.units,
			calls = calls + 1`,
		day, rec.Kind, rec.Units)
	if err != nil {
		return fmt.Errorf("usagedb: record %s/%s: %w", day, rec.Kind, err)
	}
	return nil
}

// DailyUsage lists the spend per kind for day (YYYY-MM-DD), largest first.
// An unknown day yields an empty result, not an error.
func (s *Store) DailyUsage(ctx context.Context, day string) (*DayUsage, error) {
	if _, err := time.Parse(dayLayout, day); err != nil {
		return nil, fmt.Errorf("usagedb: bad day %q: %w", day, err)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, units, calls FROM quota_usage WHERE day = ? ORDER BY units DESC, kind`, day)
	if err != nil {
		return nil, fmt.Errorf("usagedb: query %s: %w", day, err)
	}
	defer rows.Close()

	out := &DayUsage{Day: day, Kinds: []KindUsage{}}
	for rows.Next() {
		var k KindUsage
		if err := rows.Scan(&k.Kind, &k.Units, &k.Calls); err != nil {
			return nil, fmt.Errorf("usagedb: scan: %w", err)
		}
		out.Units += k.Units
		out.Calls += k.Calls
		out.Kinds = append(out.Kinds, k)
	}
	return out, rows.Err()
}

// Today is the current day in the store's location.
func (s *Store) Today(now time.Time) string {
	return now.In(s.loc).Format(dayLayout)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
