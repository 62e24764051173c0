// Package errors defines the application error type shared by every layer
// of the service. An AppError carries a machine-readable code, a client-safe
// message, the HTTP status it maps to and an optional underlying cause that
// is never serialized.
//
// Handlers render errors with ToResponse:
//
//	{"error": {"code": "TOKEN_REVOKED", "message": "...", "retryable": false}}
package errors
