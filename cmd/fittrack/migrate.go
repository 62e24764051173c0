package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kbukum/fittrack/bootstrap"
	"github.com/kbukum/fittrack/database"
	"github.com/kbukum/fittrack/database/migration"
	"github.com/kbukum/fittrack/internal/migrations"
)

func runMigrate(ctx context.Context, cfg *migrateConfig, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s migrate up|down [N]|version", serviceName)
	}
	action, steps := args[0], 0
	switch action {
	case "up", "version":
	case "down":
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return fmt.Errorf("migrate down: step count must be a positive integer (got: %q)", args[1])
			}
			steps = n
		}
	default:
		return fmt.Errorf("unknown migrate action %q", action)
	}

	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}

	dbCfg := cfg.Database
	dbCfg.RunMigrations = false
	db := database.NewComponent(dbCfg, app.Logger)
	if err := app.RegisterComponent(db); err != nil {
		return err
	}

	src, err := migrations.Source(dbCfg.Driver)
	if err != nil {
		return err
	}

	return app.RunTask(ctx, func(context.Context) error {
		gormDB, driver := db.DB().GormDB, dbCfg.Driver
		var err error
		switch {
		case action == "up":
			err = migration.Up(gormDB, src, driver)
		case action == "down" && steps > 0:
			err = migration.Steps(gormDB, src, driver, -steps)
		case action == "down":
			err = migration.Down(gormDB, src, driver)
		}
		if err != nil {
			return err
		}

		v, dirty, err := migration.Version(gormDB, src, driver)
		if err != nil {
			return err
		}
		app.Logger.Info("Migration state", map[string]interface{}{
			"action":  action,
			"version": v,
			"dirty":   dirty,
		})
		return nil
	})
}
