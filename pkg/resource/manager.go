// Package resource runs a process's background workers under memory and
// worker limits and stops them together on shutdown.
package resource

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-blackhole/pkg/logging"
)

// Errors reported by the manager
var (
	ErrWorkerLimit   = errors.New("worker limit reached")
	ErrMemoryLimit   = errors.New("memory limit exceeded")
	ErrNotRunning    = errors.New("resource manager not running")
	ErrAlreadyActive = errors.New("resource manager already running")
)

// Limits bounds what the manager allows
type Limits struct {
	MaxMemoryMB     int64
	MaxWorkers      int64
	ShutdownTimeout time.Duration
	CheckInterval   time.Duration
}

// DefaultLimits suits a single headless simulation
func DefaultLimits() Limits {
	return Limits{
		MaxMemoryMB:     500,
		MaxWorkers:      16,
		ShutdownTimeout: 10 * time.Second,
		CheckInterval:   5 * time.Second,
	}
}

// Manager tracks named workers, samples memory use and waits for every
// worker on Shutdown.
type Manager struct {
	limits Limits
	logger *logging.Logger
	memory func() int64

	workers  atomic.Int64
	memoryMB atomic.Int64
	wg       sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	running   bool
	lastCheck time.Time
	firstErr  error
}

// NewManager creates a manager. memory reports heap use in MB; nil reads
// the runtime directly.
func NewManager(limits Limits, logger *logging.Logger, memory func() int64) *Manager {
	if logger == nil {
		logger = logging.NewLogger()
	}
	if memory == nil {
		memory = allocMB
	}
	return &Manager{
		limits: limits,
		logger: logger,
		memory: memory,
	}
}

func allocMB() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.Alloc / 1024 / 1024)
}

// Start begins memory monitoring. Workers see a context derived from
// parent that Shutdown cancels.
func (m *Manager) Start(parent context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return ErrAlreadyActive
	}
	m.ctx, m.cancel = context.WithCancel(parent)
	m.done = make(chan struct{})
	m.running = true

	go m.monitoringLoop(m.ctx, m.done)

	m.logger.Info(m.ctx, "Resource manager started",
		"max_memory_mb", m.limits.MaxMemoryMB,
		"max_workers", m.limits.MaxWorkers,
		"check_interval", m.limits.CheckInterval,
	)
	return nil
}

// Context returns the workers' context, or nil before Start
func (m *Manager) Context() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ctx
}

// Go runs fn as a tracked worker. A panic or an error other than context
// cancellation is logged and kept as the manager's error.
func (m *Manager) Go(name string, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return ErrNotRunning
	}
	ctx := m.ctx
	if current := m.workers.Load(); current >= m.limits.MaxWorkers {
		m.mu.Unlock()
		m.logger.Warn(ctx, "Worker limit reached",
			"current", current,
			"limit", m.limits.MaxWorkers,
			"name", name,
		)
		return fmt.Errorf("%w: %d/%d starting %s", ErrWorkerLimit, current, m.limits.MaxWorkers, name)
	}
	m.workers.Add(1)
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer m.workers.Add(-1)

		err := m.run(ctx, fn)
		if err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Error(ctx, "Worker failed", err, "name", name)
			m.recordError(fmt.Errorf("%s: %w", name, err))
		}
	}()
	return nil
}

func (m *Manager) run(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

func (m *Manager) recordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.firstErr == nil {
		m.firstErr = err
	}
}

// Err returns the first worker failure
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.firstErr
}

// CheckMemoryUsage samples memory use against the limit
func (m *Manager) CheckMemoryUsage() error {
	current := m.memory()
	m.memoryMB.Store(current)
	m.mu.Lock()
	m.lastCheck = time.Now()
	m.mu.Unlock()

	if current > m.limits.MaxMemoryMB {
		return fmt.Errorf("%w: %dMB over %dMB", ErrMemoryLimit, current, m.limits.MaxMemoryMB)
	}
	return nil
}

// Stats contains resource usage statistics.
type Stats struct {
	Workers         int64     `json:"workers"`
	MaxWorkers      int64     `json:"max_workers"`
	MemoryUsageMB   int64     `json:"memory_usage_mb"`
	MaxMemoryMB     int64     `json:"max_memory_mb"`
	LastMemoryCheck time.Time `json:"last_memory_check"`
}

// Stats returns current resource usage
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	last := m.lastCheck
	m.mu.Unlock()
	return Stats{
		Workers:         m.workers.Load(),
		MaxWorkers:      m.limits.MaxWorkers,
		MemoryUsageMB:   m.memoryMB.Load(),
		MaxMemoryMB:     m.limits.MaxMemoryMB,
		LastMemoryCheck: last,
	}
}

// Shutdown cancels the workers' context and waits for them up to the
// shutdown timeout
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	m.logger.Info(ctx, "Shutting down resource manager", "workers", m.workers.Load())
	cancel()

	shutdownCtx, stop := context.WithTimeout(ctx, m.limits.ShutdownTimeout)
	defer stop()

	finished := make(chan struct{})
	go func() {
		m.wg.Wait()
		<-done
		close(finished)
	}()

	select {
	case <-finished:
		m.logger.Info(ctx, "All workers finished")
		return nil
	case <-shutdownCtx.Done():
		remaining := m.workers.Load()
		m.logger.Warn(ctx, "Shutdown timeout exceeded with workers still running",
			"remaining", remaining,
		)
		return fmt.Errorf("shutdown timeout: %d workers still running", remaining)
	}
}

// monitoringLoop runs periodic memory checks until ctx ends
func (m *Manager) monitoringLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	interval := m.limits.CheckInterval
	if interval <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.CheckMemoryUsage(); err != nil {
				m.logger.Error(ctx, "Memory limit exceeded", err,
					"current_mb", m.memoryMB.Load(),
					"limit_mb", m.limits.MaxMemoryMB,
				)
			}
			m.logger.Debug(ctx, "Resource usage check",
				"workers", m.workers.Load(),
				"memory_mb", m.memoryMB.Load(),
			)
		case <-ctx.Done():
			return
		}
	}
}
