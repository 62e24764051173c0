// Package component defines the lifecycle contract shared by the database,
// redis, revocation sweeper, telemetry and HTTP server components, and a
// registry that starts them in dependency order and stops them in reverse.
package component
