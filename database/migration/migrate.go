// Package migration applies versioned SQL migrations through golang-migrate,
// reading files from any fs.FS (typically an embed.FS) and reusing the
// connection pool GORM already holds.
//
//	//go:embed sqlite/*.sql
//	var files embed.FS
//	src, _ := fs.Sub(files, "sqlite")
//	err := migration.Up(gormDB, src, "sqlite")
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

// DriverFunc creates a migrate database driver from sql.DB.
type DriverFunc func(*sql.DB) (database.Driver, error)

// DriverFor returns the DriverFunc for a database driver name.
func DriverFor(driver string) (DriverFunc, error) {
	switch driver {
	case "sqlite":
		return func(db *sql.DB) (database.Driver, error) {
			return migratesqlite.WithInstance(db, &migratesqlite.Config{})
		}, nil
	case "postgres":
		return func(db *sql.DB) (database.Driver, error) {
			return migratepgx.WithInstance(db, &migratepgx.Config{})
		}, nil
	default:
		return nil, fmt.Errorf("no migration driver for %q", driver)
	}
}

// Up applies all pending migrations. No pending migrations is not an error.
func Up(gormDB *gorm.DB, src fs.FS, driver string) error {
	m, err := newMigrator(gormDB, src, driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Down rolls back every applied migration.
func Down(gormDB *gorm.DB, src fs.FS, driver string) error {
	m, err := newMigrator(gormDB, src, driver)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Steps applies n migrations forward, or rolls back -n when n is negative.
func Steps(gormDB *gorm.DB, src fs.FS, driver string, n int) error {
	m, err := newMigrator(gormDB, src, driver)
	if err != nil {
		return err
	}
	if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate steps: %w", err)
	}
	return nil
}

// Version returns the current migration version and dirty flag. A database
// with no migrations applied reports version 0.
func Version(gormDB *gorm.DB, src fs.FS, driver string) (uint, bool, error) {
	m, err := newMigrator(gormDB, src, driver)
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// newMigrator builds a migrate instance on gormDB's pool. Callers must not
// call m.Close, which would close the shared sql.DB.
func newMigrator(gormDB *gorm.DB, src fs.FS, driver string) (*migrate.Migrate, error) {
	driverFunc, err := DriverFor(driver)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	dbDriver, err := driverFunc(sqlDB)
	if err != nil {
		return nil, fmt.Errorf("create database driver: %w", err)
	}
	source, err := iofs.New(src, ".")
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, driver, dbDriver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
