package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Checker probes one dependency and returns an error if it is unhealthy.
type Checker func(ctx context.Context) error

// Status is the reported state of a component.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Response is the JSON body returned by the health endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of a single dependency probe.
type CheckResult struct {
	Status   Status `json:"status"`
	Critical bool   `json:"critical"`
	Error    string `json:"error,omitempty"`
}

type check struct {
	probe    Checker
	critical bool
}

// Handler serves liveness and readiness endpoints over registered checks.
type Handler struct {
	mu     sync.RWMutex
	checks map[string]check
}

// NewHandler creates an empty health handler.
func NewHandler() *Handler {
	return &Handler{checks: make(map[string]check)}
}

// RegisterCritical adds a check whose failure makes the service not ready.
func (h *Handler) RegisterCritical(name string, probe Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check{probe: probe, critical: true}
}

// RegisterNonCritical adds a check that is reported but does not fail
// readiness. Used for dependencies the service can run without, like the
// event broker.
func (h *Handler) RegisterNonCritical(name string, probe Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check{probe: probe, critical: false}
}

// LivenessHandler reports 200 whenever the process is running.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, http.StatusOK, Response{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler runs every registered check. A failed critical check
// yields 503; failed non-critical checks degrade the status but keep 200.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		h.mu.RLock()
		checks := make(map[string]check, len(h.checks))
		for name, c := range h.checks {
			checks[name] = c
		}
		h.mu.RUnlock()

		results := make(map[string]CheckResult, len(checks))
		status := StatusUp

		for name, c := range checks {
			result := CheckResult{Status: StatusUp, Critical: c.critical}
			if err := c.probe(ctx); err != nil {
				result.Status = StatusDown
				result.Error = err.Error()
				if c.critical {
					status = StatusDown
				} else if status == StatusUp {
					status = StatusDegraded
				}
			}
			results[name] = result
		}

		code := http.StatusOK
		if status == StatusDown {
			code = http.StatusServiceUnavailable
		}
		writeHealth(w, code, Response{
			Status:    status,
			Timestamp: time.Now().UTC(),
			Checks:    results,
		})
	}
}

func writeHealth(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
