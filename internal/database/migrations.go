package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Migration is one versioned schema change read from a *.up.sql file
type Migration struct {
	Version  string
	Title    string // human-readable, derived from the file name
	UpSQL    string
	Checksum string // sha256 of UpSQL
}

// MigrationState pairs a migration with the time it was applied, if ever
type MigrationState struct {
	Migration
	AppliedAt *time.Time
}

// MigrationExecutor applies pending migrations and refuses to run when an
// already applied file has been edited.
type MigrationExecutor struct {
	db *sql.DB
}

// NewMigrationExecutor creates a new migration executor
func NewMigrationExecutor(db *sql.DB) *MigrationExecutor {
	return &MigrationExecutor{db: db}
}

// RunMigrations executes all pending migrations from migrationsPath in version order
func (m *MigrationExecutor) RunMigrations(ctx context.Context, migrationsPath string) (int, error) {
	if err := m.createMigrationsTable(ctx); err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations, err := readMigrationFiles(migrationsPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read migration files: %w", err)
	}

	applied, err := m.appliedChecksums(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	if err := validateChecksums(migrations, applied); err != nil {
		return 0, fmt.Errorf("migration validation failed: %w", err)
	}

	count := 0
	for _, migration := range migrations {
		if _, done := applied[migration.Version]; done {
			continue
		}
		if err := m.executeMigration(ctx, migration); err != nil {
			return count, fmt.Errorf("failed to execute migration %s: %w", migration.Version, err)
		}
		slog.Info("Applied migration", "version", migration.Version, "title", migration.Title)
		count++
	}

	return count, nil
}

// Status lists every migration file together with its applied time
func (m *MigrationExecutor) Status(ctx context.Context, migrationsPath string) ([]MigrationState, error) {
	if err := m.createMigrationsTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations, err := readMigrationFiles(migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration files: %w", err)
	}

	rows, err := m.db.QueryContext(ctx, `SELECT version, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	defer rows.Close()

	appliedAt := make(map[string]time.Time)
	for rows.Next() {
		var version string
		var at time.Time
		if err := rows.Scan(&version, &at); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		appliedAt[version] = at
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	states := make([]MigrationState, 0, len(migrations))
	for _, migration := range migrations {
		state := MigrationState{Migration: migration}
		if at, ok := appliedAt[migration.Version]; ok {
			state.AppliedAt = &at
		}
		states = append(states, state)
	}
	return states, nil
}

func (m *MigrationExecutor) createMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			title VARCHAR(500),
			checksum VARCHAR(64),
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := m.db.ExecContext(ctx, query)
	return err
}

// readMigrationFiles reads NNNNNN_some_title.up.sql files; down files are ignored
func readMigrationFiles(migrationsPath string) ([]Migration, error) {
	files, err := os.ReadDir(migrationsPath)
	if err != nil {
		return nil, err
	}

	var migrations []Migration
	for _, file := range files {
		filename := file.Name()
		if file.IsDir() || !strings.HasSuffix(filename, ".up.sql") {
			continue
		}

		version, rest, ok := strings.Cut(strings.TrimSuffix(filename, ".up.sql"), "_")
		if !ok || version == "" {
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsPath, filename))
		if err != nil {
			return nil, err
		}

		migrations = append(migrations, Migration{
			Version:  version,
			Title:    strings.ReplaceAll(rest, "_", " "),
			UpSQL:    string(content),
			Checksum: calculateChecksum(string(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// appliedChecksums maps applied versions to their recorded checksum ("" when unknown)
func (m *MigrationExecutor) appliedChecksums(ctx context.Context) (map[string]string, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT version, COALESCE(checksum, '') FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			slog.Error("Failed to close rows", "error", err)
		}
	}(rows)

	applied := make(map[string]string)
	for rows.Next() {
		var version, checksum string
		if err := rows.Scan(&version, &checksum); err != nil {
			return nil, err
		}
		applied[version] = checksum
	}
	return applied, rows.Err()
}

func (m *MigrationExecutor) executeMigration(ctx context.Context, migration Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// Rollback only if not committed
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("Failed to rollback transaction", "error", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, migration.UpSQL); err != nil {
		return fmt.Errorf("migration SQL failed: %w", err)
	}

	query := `INSERT INTO schema_migrations (version, title, checksum) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, query, migration.Version, migration.Title, migration.Checksum); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}

// validateChecksums verifies that applied migrations haven't been modified
func validateChecksums(migrations []Migration, applied map[string]string) error {
	var mismatches []string
	for _, migration := range migrations {
		checksum, ok := applied[migration.Version]
		if !ok || checksum == "" || checksum == migration.Checksum {
			continue
		}
		mismatches = append(mismatches, fmt.Sprintf(
			"\n  Migration %s (%s):\n    Expected checksum: %s\n    Current checksum:  %s",
			migration.Version, migration.Title, checksum, migration.Checksum,
		))
	}

	if len(mismatches) > 0 {
		return fmt.Errorf(
			"applied migrations have been modified:%s\n\n"+
				"Restore the original migration files or add a new migration for the change.",
			strings.Join(mismatches, ""),
		)
	}
	return nil
}

func calculateChecksum(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
