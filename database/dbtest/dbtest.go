// Package dbtest opens throwaway sqlite databases for tests.
package dbtest

import (
	"context"
	"io/fs"
	"testing"

	"github.com/kbukum/fittrack/database"
	"github.com/kbukum/fittrack/database/migration"
	"github.com/kbukum/fittrack/logger"
)

// Open returns an in-memory sqlite database closed at test cleanup.
// Models are auto-migrated.
func Open(t testing.TB, models ...interface{}) *database.DB {
	t.Helper()

	db, err := database.Open(context.Background(), database.Config{
		Driver:     database.DriverSQLite,
		DSN:        ":memory:",
		MaxRetries: 1,
		LogLevel:   "silent",
	}, logger.Nop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("auto-migrate: %v", err)
		}
	}
	return db
}

// OpenMigrated returns an in-memory sqlite database with the SQL
// migrations in src applied.
func OpenMigrated(t testing.TB, src fs.FS) *database.DB {
	t.Helper()

	db := Open(t)
	if err := migration.Up(db.GormDB, src, database.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
