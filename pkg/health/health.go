// Package health exposes liveness and readiness probes for a running
// simulation. Readiness aggregates component checks: the loop is ticking,
// the asteroid field satisfies its invariants and memory stays bounded.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"
)

// Status strings reported by the probes
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthCheck is one component probe.
type HealthCheck interface {
	// Name returns the unique name of this health check
	Name() string
	// Check returns an error if the component is unhealthy
	Check(ctx context.Context) error
}

// HealthStatus is the aggregated readiness report.
type HealthStatus struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth is the result of a single check.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthChecker holds the registered checks.
type HealthChecker struct {
	checks map[string]HealthCheck
	mu     sync.RWMutex
}

// NewHealthChecker creates an empty checker.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make(map[string]HealthCheck),
	}
}

// AddCheck registers check, replacing any check with the same name.
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// RemoveCheck removes a health check by name.
func (hc *HealthChecker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// CheckHealth runs every check. The overall status is healthy only if all
// of them pass.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := HealthStatus{
		Status: StatusHealthy,
		Checks: make(map[string]ComponentHealth),
	}

	for name, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = StatusUnhealthy
			status.Checks[name] = ComponentHealth{
				Status:  StatusUnhealthy,
				Message: err.Error(),
			}
		} else {
			status.Checks[name] = ComponentHealth{
				Status: StatusHealthy,
			}
		}
	}

	return status
}

// LivenessHandler answers 200 while the process can serve requests.
func (hc *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := map[string]string{"status": "alive"}
	json.NewEncoder(w).Encode(response)
}

// ReadinessHandler runs every check and answers 200 when all pass or 503
// with the failing components otherwise.
func (hc *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := hc.CheckHealth(ctx)

	w.Header().Set("Content-Type", "application/json")

	if health.Status == StatusHealthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(health)
}

// Handler returns a mux serving /health and /ready.
func (hc *HealthChecker) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", hc.LivenessHandler)
	mux.HandleFunc("/ready", hc.ReadinessHandler)
	return mux
}

// LoopHealthCheck fails when the simulation loop has not ticked within
// maxAge.
type LoopHealthCheck struct {
	lastTick func() time.Time
	now      func() time.Time
	maxAge   time.Duration
}

// NewLoopHealthCheck creates a staleness check over lastTick. now defaults
// to time.Now when nil.
func NewLoopHealthCheck(lastTick func() time.Time, now func() time.Time, maxAge time.Duration) *LoopHealthCheck {
	if now == nil {
		now = time.Now
	}
	return &LoopHealthCheck{
		lastTick: lastTick,
		now:      now,
		maxAge:   maxAge,
	}
}

// Name returns the name of this health check.
func (l *LoopHealthCheck) Name() string {
	return "simulation_loop"
}

// Check verifies the loop has ticked recently.
func (l *LoopHealthCheck) Check(ctx context.Context) error {
	last := l.lastTick()
	if last.IsZero() {
		return fmt.Errorf("simulation loop has not ticked yet")
	}
	if age := l.now().Sub(last); age > l.maxAge {
		return fmt.Errorf("simulation loop stalled: last tick %v ago exceeds %v", age.Round(time.Millisecond), l.maxAge)
	}
	return nil
}

// FieldHealthCheck fails when the asteroid field reports an invariant
// violation.
type FieldHealthCheck struct {
	validate func() error
}

// NewFieldHealthCheck wraps an invariant check such as
// SimulationState.CheckInvariants.
func NewFieldHealthCheck(validate func() error) *FieldHealthCheck {
	return &FieldHealthCheck{validate: validate}
}

// Name returns the name of this health check.
func (f *FieldHealthCheck) Name() string {
	return "asteroid_field"
}

// Check runs the invariant check.
func (f *FieldHealthCheck) Check(ctx context.Context) error {
	if err := f.validate(); err != nil {
		return fmt.Errorf("asteroid field invalid: %w", err)
	}
	return nil
}

// MemoryHealthCheck implements HealthCheck for memory usage monitoring.
type MemoryHealthCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryHealthCheck creates a health check for memory usage.
func NewMemoryHealthCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryHealthCheck {
	return &MemoryHealthCheck{
		maxMemoryMB:    maxMemoryMB,
		getMemoryUsage: getMemoryUsage,
	}
}

// Name returns the name of this health check.
func (m *MemoryHealthCheck) Name() string {
	return "memory"
}

// Check verifies that memory usage is within acceptable limits.
func (m *MemoryHealthCheck) Check(ctx context.Context) error {
	currentMB := m.getMemoryUsage()
	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}

// CurrentMemoryMB returns the live heap size in megabytes.
func CurrentMemoryMB() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.Alloc / 1024 / 1024)
}
