// Package health adapts the teacher's Checker (originally a Postgres
// liveness/readiness probe) onto this system's one external dependency
// that matters for readiness: the spreadsheet backend. The browser
// profile service is intentionally not probed here — per spec §4.6 a
// session is opened fresh per attempt, so there is no persistent
// connection whose liveness this endpoint could usefully report.
package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pinger is satisfied by *sheetsgw.Gateway.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckResult represents the health of a single dependency.
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResult is the top-level health response.
type HealthResult struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// Checker verifies that the spreadsheet backend is reachable.
type Checker struct {
	sheets Pinger
	logger *slog.Logger
	gauge  *prometheus.GaugeVec
}

// NewChecker creates a health checker and registers its Prometheus gauge.
func NewChecker(sheets Pinger, logger *slog.Logger, reg prometheus.Registerer) *Checker {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ytprem",
		Name:      "health_check_up",
		Help:      "Whether a dependency is reachable. 1 = up, 0 = down.",
	}, []string{"dependency"})
	reg.MustRegister(gauge)

	return &Checker{
		sheets: sheets,
		logger: logger.With("component", "health"),
		gauge:  gauge,
	}
}

// Liveness returns a simple "up" response if the process is running.
func (c *Checker) Liveness(_ context.Context) HealthResult {
	return HealthResult{Status: "up"}
}

// Readiness pings the spreadsheet backend and reports its status.
func (c *Checker) Readiness(ctx context.Context) HealthResult {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result := HealthResult{
		Status: "up",
		Checks: make(map[string]CheckResult),
	}

	if err := c.sheets.Ping(checkCtx); err != nil {
		c.logger.Warn("sheets health check failed", "error", err)
		result.Status = "down"
		result.Checks["sheets"] = CheckResult{Status: "down", Error: err.Error()}
		c.gauge.WithLabelValues("sheets").Set(0)
	} else {
		result.Checks["sheets"] = CheckResult{Status: "up"}
		c.gauge.WithLabelValues("sheets").Set(1)
	}

	return result
}
