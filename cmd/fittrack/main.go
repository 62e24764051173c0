// Command fittrack serves the fitness-tracking API.
//
//	fittrack                 run the HTTP server
//	fittrack migrate up      apply all pending migrations
//	fittrack migrate down N  roll back N migrations (all when N is omitted)
//	fittrack migrate version print the applied migration version
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kbukum/fittrack/auth/password"
	"github.com/kbukum/fittrack/auth/revocation"
	"github.com/kbukum/fittrack/auth/session"
	"github.com/kbukum/fittrack/bootstrap"
	"github.com/kbukum/fittrack/component"
	"github.com/kbukum/fittrack/config"
	"github.com/kbukum/fittrack/database"
	"github.com/kbukum/fittrack/internal/account"
	"github.com/kbukum/fittrack/internal/api"
	"github.com/kbukum/fittrack/internal/migrations"
	"github.com/kbukum/fittrack/internal/training"
	"github.com/kbukum/fittrack/observability"
	"github.com/kbukum/fittrack/redis"
	"github.com/kbukum/fittrack/server"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "migrate" {
		var cfg migrateConfig
		if err := config.LoadConfig(serviceName, &cfg, config.WithEnvAliases(envAliases)); err != nil {
			return err
		}
		return runMigrate(ctx, &cfg, args[1:])
	}
	if len(args) > 0 {
		return fmt.Errorf("unknown command %q", args[0])
	}

	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg, config.WithEnvAliases(envAliases)); err != nil {
		return err
	}
	return serve(ctx, &cfg)
}

func serve(ctx context.Context, cfg *Config) error {
	cfg.ApplyDefaults()
	app, err := bootstrap.NewApp(cfg, bootstrap.WithGracefulTimeout(cfg.gracefulTimeout()))
	if err != nil {
		return err
	}
	lc := &lifecycle{log: app.Logger, started: time.Now()}
	app.OnReady(lc.ready)
	app.OnStop(lc.stop)

	db := database.NewComponent(cfg.Database, app.Logger)
	if cfg.Database.RunMigrations {
		src, err := migrations.Source(cfg.Database.Driver)
		if err != nil {
			return err
		}
		db.WithMigrations(src)
	}

	infra := []component.Component{
		observability.NewProvider(cfg.Observability, cfg.Name, cfg.Version, cfg.Environment, app.Logger),
		db,
	}
	var cache *redis.Component
	if cfg.Redis.Enabled {
		cache = redis.NewComponent(cfg.Redis, app.Logger)
		infra = append(infra, cache)
	}
	for _, c := range infra {
		if err := app.RegisterComponent(c); err != nil {
			return err
		}
	}

	srv := server.New(cfg.Server, cfg.Name, app.Logger)
	app.OnConfigure(func(_ context.Context, a *bootstrap.App[*Config]) error {
		var rc *redis.Client
		if cache != nil {
			rc = cache.Client()
		}
		revocations, err := revocation.New(cfg.Auth.Revocation, db.DB(), rc, a.Logger)
		if err != nil {
			return err
		}
		lc.revocations = revocations
		sessions, err := session.NewManager(cfg.Auth.JWT, revocations, a.Logger)
		if err != nil {
			return err
		}

		accounts := account.NewService(
			account.NewGormStore(db.DB()),
			password.NewHasher(cfg.Auth.Password),
			sessions,
			a.Logger,
		)
		workouts := training.NewService(training.NewGormStore(db.DB()), a.Logger)

		api.NewHandler(accounts, workouts, sessions).Register(srv.GinEngine())
		srv.RegisterDefaultEndpoints(a.Components.HealthAll)
		for _, r := range srv.GinEngine().Routes() {
			a.Summary.AddRoutes(bootstrap.Route{Method: r.Method, Path: r.Path})
		}

		sweeper, err := revocation.NewSweeperFromConfig(cfg.Auth.Revocation, revocations, a.Logger)
		if err != nil {
			return err
		}
		if sweeper != nil {
			lc.sweeper = sweeper
			if err := a.RegisterComponent(sweeper); err != nil {
				return err
			}
		}
		return a.RegisterComponent(server.NewComponent(srv))
	})

	return app.Run(ctx)
}
