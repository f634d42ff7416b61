package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/steve-blackdove/nft-extractor/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
	"github.com/steve-blackdove/nft-extractor/internal/core/ports/driven"
)

// Ensure Store implements the history store port.
var _ driven.HistoryStore = (*Store)(nil)

// Store is a SQLite-backed extraction history store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite history store at the specified data
// directory. If dataDir is empty, defaults to ~/.nft-extractor/data/history.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".nft-extractor", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveRun records a completed extraction and its manifest. A missing
// run ID is filled in with a fresh UUID.
func (s *Store) SaveRun(ctx context.Context, run driven.Run) error {
	if run.Token.ContractAddress == "" || run.Token.TokenID == "" {
		return domain.ErrInvalidInput
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, contract_address, token_id, base_name, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Token.ContractAddress, run.Token.TokenID, run.BaseName, run.StartedAt)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO artifacts (run_id, position, role, path, byte_size, skipped, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, a := range run.Artifacts {
		errText := ""
		if a.Err != nil {
			errText = a.Err.Error()
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i, string(a.Role), a.Path,
			a.ByteSize, a.Skipped, errText); err != nil {
			return fmt.Errorf("saving artifact: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero
// or less returns everything.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]driven.Run, error) {
	query := `
		SELECT id, contract_address, token_id, base_name, started_at
		FROM runs ORDER BY started_at DESC, id
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []driven.Run //nolint:prealloc // size unknown from query
	for rows.Next() {
		var run driven.Run
		var startedAt sql.NullTime
		if err := rows.Scan(&run.ID, &run.Token.ContractAddress, &run.Token.TokenID,
			&run.BaseName, &startedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if startedAt.Valid {
			run.StartedAt = startedAt.Time
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		artifacts, err := s.artifactsForRun(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Artifacts = artifacts
	}

	return runs, nil
}

// artifactsForRun loads a run's manifest entries in write order.
func (s *Store) artifactsForRun(ctx context.Context, runID string) ([]domain.Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, path, byte_size, skipped, error
		FROM artifacts WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []domain.Artifact //nolint:prealloc // size unknown from query
	for rows.Next() {
		var a domain.Artifact
		var role, errText string
		if err := rows.Scan(&role, &a.Path, &a.ByteSize, &a.Skipped, &errText); err != nil {
			return nil, fmt.Errorf("scanning artifact: %w", err)
		}
		a.Role = domain.Role(role)
		if errText != "" {
			a.Err = errors.New(errText)
		}
		artifacts = append(artifacts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating artifacts: %w", err)
	}

	return artifacts, nil
}
