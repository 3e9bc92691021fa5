// Package health exposes the storefront's liveness and readiness endpoints.
// Liveness only proves the process is serving; readiness additionally probes
// registered dependencies such as the postgres pool.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Checker probes a single dependency. A nil return means the dependency is
// reachable and usable.
type Checker func(ctx context.Context) error

// Status is the reported state of the service or one of its dependencies.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// probeTimeout bounds how long a readiness request may spend on dependency
// probes in total.
const probeTimeout = 5 * time.Second

// Report is the JSON body of a health endpoint response.
type Report struct {
	Status    Status           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks,omitempty"`
}

// Check is the probed state of one dependency.
type Check struct {
	Status  Status `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler serves the liveness and readiness endpoints over a registry of
// named dependency checkers.
type Handler struct {
	mu       sync.RWMutex
	checkers map[string]Checker
}

func NewHandler() *Handler {
	return &Handler{checkers: make(map[string]Checker)}
}

// Register adds a named dependency checker. Safe to call while serving.
func (h *Handler) Register(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// LivenessHandler reports 200 for as long as the process can serve requests.
// No dependencies are probed.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeReport(w, http.StatusOK, Report{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler probes every registered dependency and reports 200 when
// all are up, 503 otherwise.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		checks, overall := h.runChecks(ctx)

		status := http.StatusOK
		if overall == StatusDown {
			status = http.StatusServiceUnavailable
		}
		writeReport(w, status, Report{
			Status:    overall,
			Timestamp: time.Now().UTC(),
			Checks:    checks,
		})
	}
}

// runChecks probes a snapshot of the registered checkers so registrations
// during a probe do not race the iteration.
func (h *Handler) runChecks(ctx context.Context) (map[string]Check, Status) {
	h.mu.RLock()
	checkers := make(map[string]Checker, len(h.checkers))
	for name, c := range h.checkers {
		checkers[name] = c
	}
	h.mu.RUnlock()

	checks := make(map[string]Check, len(checkers))
	overall := StatusUp

	for name, checker := range checkers {
		start := time.Now()
		err := checker(ctx)
		latency := time.Since(start).Round(time.Millisecond).String()

		if err != nil {
			checks[name] = Check{Status: StatusDown, Latency: latency, Error: err.Error()}
			overall = StatusDown
			continue
		}
		checks[name] = Check{Status: StatusUp, Latency: latency}
	}

	return checks, overall
}

func writeReport(w http.ResponseWriter, status int, report Report) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encode failure has no recovery path.
	_ = json.NewEncoder(w).Encode(report)
}
