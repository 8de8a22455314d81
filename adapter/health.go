// Package adapter integrates the add-in host with external systems:
// health probes, Prometheus metrics, and OpenTelemetry instrumentation.
package adapter

import (
	"errors"
	"net/http"

	"github.com/heptiolabs/healthcheck"

	"github.com/addinhost/plugin-ffi/pkg/host"
)

// NewHealthHandler exposes liveness and readiness endpoints for the host.
// Liveness is unconditional; readiness reports OK once the startup module
// scan has completed (an empty registry is still ready).
func NewHealthHandler(reg *host.Registry) http.Handler {
	h := healthcheck.NewHandler()
	h.AddReadinessCheck("module-registry", func() error {
		if !reg.Ready() {
			return errors.New("startup scan not finished")
		}
		return nil
	})
	return h
}
