// pkg/resource/health.go
package resource

import (
	"context"
	"fmt"
)

// workerWarnFraction is the share of the worker limit that counts as unhealthy
const workerWarnFraction = 0.8

// HealthCheck reports the manager's limits and worker failures to a
// health.HealthChecker
type HealthCheck struct {
	manager *Manager
}

// NewHealthCheck creates a new health check for the resource manager.
func NewHealthCheck(manager *Manager) *HealthCheck {
	return &HealthCheck{
		manager: manager,
	}
}

// Name returns the name of this health check.
func (r *HealthCheck) Name() string {
	return "resource"
}

// Check verifies that resource usage is within acceptable limits.
func (r *HealthCheck) Check(ctx context.Context) error {
	if err := r.manager.Err(); err != nil {
		return fmt.Errorf("worker failed: %w", err)
	}

	stats := r.manager.Stats()
	if stats.MemoryUsageMB > stats.MaxMemoryMB {
		return fmt.Errorf("%w: %dMB over %dMB", ErrMemoryLimit, stats.MemoryUsageMB, stats.MaxMemoryMB)
	}

	threshold := int64(float64(stats.MaxWorkers) * workerWarnFraction)
	if stats.Workers > threshold {
		return fmt.Errorf("worker count %d exceeds %d%% threshold (%d/%d)",
			stats.Workers, int(workerWarnFraction*100), threshold, stats.MaxWorkers)
	}
	return nil
}
