package testutil

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/lib/pq"

	"skill-assessment/internal/database"
)

// TestContainers holds references to test containers
type TestContainers struct {
	PostgresContainer *postgres.PostgresContainer
	DB                *sql.DB
	DBConnString      string
}

// SetupTestContainers starts PostgreSQL and applies the migrations.
// Tests using it are skipped under -short.
func SetupTestContainers(t *testing.T) *TestContainers {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("assessment_test"),
		postgres.WithUsername("assessment_test"),
		postgres.WithPassword("assessment_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	tc := &TestContainers{PostgresContainer: postgresContainer}
	t.Cleanup(func() { tc.Cleanup(t) })

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}
	tc.DBConnString = connStr

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	tc.DB = db

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	if _, err := database.NewMigrationExecutor(db).RunMigrations(ctx, MigrationsDir(t)); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return tc
}

// Cleanup closes the connection and terminates the container
func (tc *TestContainers) Cleanup(t *testing.T) {
	t.Helper()

	if tc.DB != nil {
		_ = tc.DB.Close()
		tc.DB = nil
	}
	if tc.PostgresContainer != nil {
		if err := tc.PostgresContainer.Terminate(context.Background()); err != nil {
			t.Errorf("Failed to terminate PostgreSQL container: %v", err)
		}
		tc.PostgresContainer = nil
	}
}

// MigrationsDir locates the migrations directory from a package test directory
func MigrationsDir(t *testing.T) string {
	t.Helper()
	for _, dir := range []string{
		filepath.Join("..", "..", "migrations"),
		filepath.Join("..", "..", "..", "migrations"),
		"migrations",
	} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	t.Fatalf("migrations directory not found")
	return ""
}
