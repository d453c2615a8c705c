/*
Package sqlite provides SQLite-backed persistence for the attendance engine.

PURPOSE:
  Keeps the three things that outlive one request: the employee directory
  of each department, the department profiles, and extraction runs (a
  normalized batch plus its parse counters) so analysis and exports can be
  re-run without re-uploading the tables.

KEY TABLES:
  directory_entries: personnel number -> designation/location/manager, per department
  profiles:          profile JSON (versioned on every save)
  runs:              one normalized batch per extraction, stored as JSON

QUERY SEMANTICS:
  Lookups that miss return ErrNotFound. Saving a profile that exists bumps
  its version. ReplaceDirectory swaps a department's entries in one
  transaction.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers do not block
  the single writer.

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  run, err := store.CreateRun(ctx, sqlite.Run{ProfileID: "stations", Month: "Oct 2025", Batch: batch})

SEE ALSO:
  - directory/directory.go: Details, CleanPersonnelNumber
  - factory/profile.go: profile JSON schema
  - extract/normalizer.go: Batch
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/attendance-engine/directory"
	"github.com/warp/attendance-engine/extract"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store persists directory entries, profiles and runs.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	store := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS directory_entries (
		department TEXT NOT NULL,
		personnel_number TEXT NOT NULL,
		designation TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		manager TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL,
		PRIMARY KEY (department, personnel_number)
	);

	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		department TEXT NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_profiles_department
		ON profiles(department);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		profile_id TEXT NOT NULL,
		department TEXT NOT NULL,
		layout TEXT NOT NULL,
		month TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		employees INTEGER NOT NULL,
		max_days INTEGER NOT NULL,
		tables_seen INTEGER NOT NULL DEFAULT 0,
		tables_skipped INTEGER NOT NULL DEFAULT 0,
		rows_accepted INTEGER NOT NULL DEFAULT 0,
		rows_skipped INTEGER NOT NULL DEFAULT 0,
		batch_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at
		ON runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_department
		ON runs(department, created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DIRECTORY STORE
// =============================================================================

// ReplaceDirectory replaces every entry of a department. Keys are cleaned
// with directory.CleanPersonnelNumber; entries with an empty key are dropped.
func (s *Store) ReplaceDirectory(ctx context.Context, dep directory.Department, entries map[string]directory.Details) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM directory_entries WHERE department = ?", dep); err != nil {
		return fmt.Errorf("failed to clear directory: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO directory_entries (department, personnel_number, designation, location, manager, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(department, personnel_number) DO UPDATE SET
			designation = excluded.designation,
			location = excluded.location,
			manager = excluded.manager,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := s.now().Format(time.RFC3339)
	for key, d := range entries {
		key = directory.CleanPersonnelNumber(key)
		if key == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, dep, key, d.Designation, d.Location, d.Manager, now); err != nil {
			return fmt.Errorf("failed to insert directory entry %q: %w", key, err)
		}
	}

	return tx.Commit()
}

// Directory loads every entry of a department into a lookup map.
func (s *Store) Directory(ctx context.Context, dep directory.Department) (directory.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT personnel_number, designation, location, manager FROM directory_entries WHERE department = ?",
		dep,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query directory: %w", err)
	}
	defer rows.Close()

	mem := directory.NewMemory(nil)
	for rows.Next() {
		var key string
		var d directory.Details
		if err := rows.Scan(&key, &d.Designation, &d.Location, &d.Manager); err != nil {
			return nil, err
		}
		mem[key] = d
	}
	return mem, rows.Err()
}

// LookupEntry returns one directory entry.
func (s *Store) LookupEntry(ctx context.Context, dep directory.Department, personnelNumber string) (directory.Details, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var d directory.Details
	err := s.db.QueryRowContext(ctx,
		"SELECT designation, location, manager FROM directory_entries WHERE department = ? AND personnel_number = ?",
		dep, directory.CleanPersonnelNumber(personnelNumber),
	).Scan(&d.Designation, &d.Location, &d.Manager)

	if errors.Is(err, sql.ErrNoRows) {
		return directory.Details{}, ErrNotFound
	}
	if err != nil {
		return directory.Details{}, err
	}
	return d, nil
}

// =============================================================================
// PROFILE STORE
// =============================================================================

// ProfileRecord is a stored profile with its JSON config.
type ProfileRecord struct {
	ID         string
	Name       string
	Department string
	ConfigJSON string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SaveProfile inserts a profile or updates it and bumps its version.
func (s *Store) SaveProfile(ctx context.Context, p ProfileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO profiles (id, name, department, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			department = excluded.department,
			config_json = excluded.config_json,
			version = profiles.version + 1,
			updated_at = excluded.updated_at
	`

	now := s.now().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, query, p.ID, p.Name, p.Department, p.ConfigJSON, now, now); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GetProfile retrieves a profile by ID.
func (s *Store) GetProfile(ctx context.Context, id string) (*ProfileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p ProfileRecord
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, department, config_json, version, created_at, updated_at FROM profiles WHERE id = ?",
		id,
	).Scan(&p.ID, &p.Name, &p.Department, &p.ConfigJSON, &p.Version, &createdAt, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}

// ListProfiles returns all profiles ordered by name.
func (s *Store) ListProfiles(ctx context.Context) ([]ProfileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, department, config_json, version, created_at, updated_at FROM profiles ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []ProfileRecord{}
	for rows.Next() {
		var p ProfileRecord
		var createdAt, updatedAt string
		if err := rows.Scan(&p.ID, &p.Name, &p.Department, &p.ConfigJSON, &p.Version, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// =============================================================================
// RUN STORE
// =============================================================================

// Run is one stored extraction.
type Run struct {
	ID            string               `json:"id"`
	ProfileID     string               `json:"profile_id"`
	Department    directory.Department `json:"department"`
	Month         string               `json:"month,omitempty"`
	Source        string               `json:"source,omitempty"`
	TablesSeen    int                  `json:"tables_seen"`
	TablesSkipped int                  `json:"tables_skipped"`
	RowsAccepted  int                  `json:"rows_accepted"`
	RowsSkipped   int                  `json:"rows_skipped"`
	Employees     int                  `json:"employees"`
	MaxDays       int                  `json:"max_days"`
	CreatedAt     time.Time            `json:"created_at"`

	// Batch is empty on runs returned by ListRuns.
	Batch extract.Batch `json:"batch"`
}

// CreateRun stores a run under a fresh ID and returns it.
func (s *Store) CreateRun(ctx context.Context, run Run) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batchJSON, err := json.Marshal(run.Batch)
	if err != nil {
		return Run{}, fmt.Errorf("failed to marshal batch: %w", err)
	}

	run.ID = uuid.NewString()
	run.Employees = len(run.Batch.Records)
	run.MaxDays = run.Batch.MaxDays
	run.CreatedAt = s.now().Truncate(time.Second)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, profile_id, department, layout, month, source, employees, max_days,
		 tables_seen, tables_skipped, rows_accepted, rows_skipped, batch_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.ProfileID, run.Department, run.Batch.Layout, run.Month, run.Source,
		run.Employees, run.MaxDays,
		run.TablesSeen, run.TablesSkipped, run.RowsAccepted, run.RowsSkipped,
		string(batchJSON), run.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

const runColumns = `id, profile_id, department, month, source, employees, max_days,
	tables_seen, tables_skipped, rows_accepted, rows_skipped, created_at`

// GetRun retrieves a run with its batch.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+", batch_json FROM runs WHERE id = ?", id)

	var batchJSON string
	run, err := scanRun(row, &batchJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(batchJSON), &run.Batch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal batch of run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns run metadata, newest first. limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, dep directory.Department, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + runColumns + " FROM runs"
	var args []any
	if dep != "" {
		query += " WHERE department = ?"
		args = append(args, dep)
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRun reads runColumns, followed by any extra destinations.
func scanRun(row scanner, extra ...any) (Run, error) {
	var run Run
	var createdAt string
	dest := []any{
		&run.ID, &run.ProfileID, &run.Department, &run.Month, &run.Source,
		&run.Employees, &run.MaxDays,
		&run.TablesSeen, &run.TablesSkipped, &run.RowsAccepted, &run.RowsSkipped,
		&createdAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return Run{}, err
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return run, nil
}
