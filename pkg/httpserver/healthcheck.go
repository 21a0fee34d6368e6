package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"net/http"
	"slices"

	"github.com/dmitrymomot/syncqueue/pkg/logger"
)

// Check is a named dependency probe.
type Check func(ctx context.Context) error

// HealthReport is the body written by HealthCheckHandler.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthCheckHandler serves liveness when checks is empty ("alive") and
// readiness otherwise: "ready" with 200 when every check passes, "not_ready"
// with 503 when any fails. Checks run in name order with the request context.
func HealthCheckHandler(log *slog.Logger, checks map[string]Check) http.HandlerFunc {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	names := slices.Sorted(maps.Keys(checks))

	return func(w http.ResponseWriter, r *http.Request) {
		report := HealthReport{Status: "alive"}
		status := http.StatusOK

		if len(names) > 0 {
			report.Status = "ready"
			report.Checks = make(map[string]string, len(names))
			for _, name := range names {
				if err := checks[name](r.Context()); err != nil {
					log.ErrorContext(r.Context(), "readiness check failed",
						logger.Component(name),
						logger.Error(err),
					)
					report.Checks[name] = err.Error()
					report.Status = "not_ready"
					status = http.StatusServiceUnavailable
					continue
				}
				report.Checks[name] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(report)
	}
}
