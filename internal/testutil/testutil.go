// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"diningwatch/internal/db"
)

// TestDB creates a test database connection and returns a cleanup function.
// Tests are skipped when TEST_DATABASE_URL is not set.
func TestDB(t *testing.T) (*db.DB, func()) {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database test")
	}

	ctx := context.Background()
	database, err := db.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanup := func() {
		cleanupTestData(ctx, database.Pool)
		database.Close()
	}

	return database, cleanup
}

// cleanupTestData removes all test data from the database.
func cleanupTestData(ctx context.Context, pool *pgxpool.Pool) {
	pool.Exec(ctx, "DELETE FROM subscriptions")
}

// CreateTestSubscription inserts a subscription directly and returns its email.
func CreateTestSubscription(t *testing.T, database *db.DB, email, keywordsJSON string, hallsJSON any) string {
	t.Helper()
	ctx := context.Background()

	_, err := database.Pool.Exec(ctx, `
		INSERT INTO subscriptions (email, keywords, halls)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET keywords = EXCLUDED.keywords, halls = EXCLUDED.halls
	`, email, keywordsJSON, hallsJSON)
	if err != nil {
		t.Fatalf("failed to create test subscription: %v", err)
	}

	return email
}
