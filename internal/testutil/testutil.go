// Package testutil boots a throwaway Postgres container for integration
// tests. Every concurrency guarantee the core relies on lives in the
// database, so the tests run against the real engine, not a fake.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/makershowcase/backend/internal/database"
	"github.com/makershowcase/backend/internal/models"
)

// SetupTestDB starts a Postgres container, runs the migrations and returns a
// connected gorm handle. The container is terminated when the test finishes.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("showcase_test"),
		tcpostgres.WithUsername("showcase"),
		tcpostgres.WithPassword("showcase"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// CreateEntry inserts an entry in the given status and returns it.
func CreateEntry(t *testing.T, db *gorm.DB, title, status string) models.Entry {
	t.Helper()

	entry := models.Entry{
		Title:       title,
		AuthorName:  "Test Maker",
		AuthorEmail: "maker@example.com",
		Status:      status,
	}
	if status == models.StatusApproved {
		now := time.Now().UTC()
		entry.ApprovedBy = "seed"
		entry.ApprovedAt = &now
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("Failed to create entry %q: %v", title, err)
	}
	return entry
}
