package database

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/kbukum/fittrack/component"
	"github.com/kbukum/fittrack/database/migration"
	"github.com/kbukum/fittrack/logger"
)

// Component wraps DB and implements component.Component for lifecycle management.
type Component struct {
	db         *DB
	cfg        Config
	log        *logger.Logger
	migrations fs.FS
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a database component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg: cfg,
		log: log.WithComponent("database"),
	}
}

// WithMigrations sets the SQL migration source applied on Start when
// cfg.RunMigrations is set. Files follow VERSION_name.up.sql naming at the
// root of src.
func (c *Component) WithMigrations(src fs.FS) *Component {
	c.migrations = src
	return c
}

// DB returns the underlying *DB, or nil if not started.
func (c *Component) DB() *DB { return c.db }

// Name returns the component name.
func (c *Component) Name() string { return "database" }

// Start connects, then applies the SQL migrations when configured.
func (c *Component) Start(ctx context.Context) error {
	db, err := Open(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}
	c.db = db

	if c.cfg.RunMigrations && c.migrations != nil {
		if err := migration.Up(db.GormDB, c.migrations, c.cfg.Driver); err != nil {
			return fmt.Errorf("database migrate: %w", err)
		}
		c.log.Info("Migrations applied")
	}
	return nil
}

// Stop closes the connection pool.
func (c *Component) Stop(_ context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Health pings the database.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.db == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "database not initialized"}
	}
	if h := c.db.CheckHealth(ctx); !h.Connected {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "ping failed: " + h.Error}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("driver=%s pool=%d/%d", c.cfg.Driver, c.cfg.MaxOpenConns, c.cfg.MaxIdleConns)
	if c.cfg.RunMigrations {
		details += " migrations=on"
	}
	return component.Description{Name: "Database", Type: "database", Details: details}
}
