// Package database wraps GORM with the connection handling the service
// needs: driver selection (postgres in production, sqlite for development
// and tests), retrying connects, pool settings, a zerolog-backed query
// logger, error translation to AppError and a lifecycle component that can
// apply embedded SQL migrations on start.
//
//	comp := database.NewComponent(cfg, log).
//		WithMigrations(migrations.Source(cfg.Driver))
//	err := comp.Start(ctx)
//	db := comp.DB()
package database
