// Package middleware holds the HTTP middleware of the service.
//
// Cross-cutting concerns (recovery, request ids, CORS, body limits, access
// logging, telemetry) are plain net/http Middleware applied around the
// whole handler. Session is a gin handler because it guards route groups
// and hands the identity to gin handlers.
package middleware

import "net/http"

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Chain composes multiple middleware. The first in the list is the outermost
// (runs first on a request, last on a response).
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
