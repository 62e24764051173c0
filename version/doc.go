// Package version reports build information for /version and the startup
// log. Values are injected at link time and fall back to the module's VCS
// stamp:
//
//	go build -ldflags "-X github.com/kbukum/fittrack/version.Version=1.4.0" ./cmd/fittrack
package version
