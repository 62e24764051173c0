// Package server runs the HTTP API on gin, served over HTTP/1.1 and
// cleartext HTTP/2 (h2c).
//
// Every request passes through the net/http chain of server/middleware:
// panic recovery, request ids, telemetry, access logging, CORS and the body
// size cap. Routes that need a caller identity add middleware.Session to
// their gin group.
//
// # Endpoints
//
// RegisterDefaultEndpoints mounts:
//
//   - /health: aggregated component health (503 when a component is down)
//   - /livez: liveness probe
//   - /readyz: readiness probe
//   - /version: build information
//
// Handlers report failures with RespondWithError, which renders any
// *errors.AppError as {"error": {...}} with its HTTP status.
package server
