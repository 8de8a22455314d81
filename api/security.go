// Package api defines public API contracts for plugin-ffi.
package api

// SecurityVerdict is the outcome of one host-identity check. It is computed
// fresh on every invocation and never cached.
type SecurityVerdict struct {
	Verified bool
	// Process is the detected executable name of the host process, or
	// "unknown" when identity could not be determined.
	Process string
}

// Gate authorizes the running host process against a module's allow-list.
// Implementations must not panic; identity failures become a failed verdict.
type Gate interface {
	Verify(allowedHosts []string) SecurityVerdict
}
