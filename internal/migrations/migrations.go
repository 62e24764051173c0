// Package migrations embeds the SQL schema of fittrack, one directory per
// database dialect.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/kbukum/fittrack/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// Source returns the migrations for driver, rooted at the migration files.
func Source(driver string) (fs.FS, error) {
	switch driver {
	case database.DriverSQLite, database.DriverPostgres:
		return fs.Sub(files, driver)
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
}
