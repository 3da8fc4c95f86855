// pkg/engine/loop.go
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/opd-ai/go-blackhole/pkg/entity"
	"github.com/opd-ai/go-blackhole/pkg/event"
)

// FrameRateSmoothing is the weight kept from the previous rate estimate
const FrameRateSmoothing = 0.95

// Clock abstracts wall-clock time so the scheduler can be driven by tests
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// RealClock reads the system clock
type RealClock struct{}

// Now returns time.Now
func (RealClock) Now() time.Time { return time.Now() }

// Sleep blocks for d
func (RealClock) Sleep(d time.Duration) { time.Sleep(d) }

// ManualClock is a Clock that only moves when told to. Sleep advances it
// by the requested duration.
type ManualClock struct {
	mu    sync.Mutex
	now   time.Time
	slept time.Duration
}

// NewManualClock creates a clock frozen at start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances the clock by d
func (c *ManualClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.slept += d
}

// Advance moves the clock forward by d
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the clock to t
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Slept returns the total duration passed to Sleep
func (c *ManualClock) Slept() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slept
}

// Stats describes loop throughput
type Stats struct {
	Ticks          uint64
	Frames         uint64
	LastFrameTicks int
	PhysicsRate    float64 // average ticks per wall-clock second since the first frame
	FrameRate      float64 // smoothed frames per wall-clock second
	LastTick       time.Time
	Behind         bool // the last frame hit the tick cap with work still due
}

// Loop is a fixed-timestep scheduler over a SimulationState
type Loop struct {
	state    *SimulationState
	clock    Clock
	input    InputSource
	renderer entity.Renderer
	interval time.Duration
	maxTicks int

	nextDue   time.Time
	start     time.Time
	lastFrame time.Time
	started   bool

	statsMu sync.Mutex
	stats   Stats
}

// LoopOption customizes a Loop
type LoopOption func(*Loop)

// WithClock replaces the real clock
func WithClock(c Clock) LoopOption {
	return func(l *Loop) { l.clock = c }
}

// WithInput sets the source sampled at the start of every frame
func WithInput(in InputSource) LoopOption {
	return func(l *Loop) { l.input = in }
}

// WithRenderer sets the renderer invoked at the end of every frame
func WithRenderer(r entity.Renderer) LoopOption {
	return func(l *Loop) { l.renderer = r }
}

// WithMaxTicks overrides the per-invocation tick cap
func WithMaxTicks(n int) LoopOption {
	return func(l *Loop) { l.maxTicks = n }
}

// NewLoop creates a scheduler ticking at the configured update rate
func NewLoop(state *SimulationState, opts ...LoopOption) *Loop {
	lc := state.Config.LoopConfig
	l := &Loop{
		state:    state,
		clock:    RealClock{},
		input:    NoInput,
		interval: time.Second / time.Duration(lc.UpdatesPerSecond),
		maxTicks: lc.MaxTicksPerInvocation,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.maxTicks < 1 {
		l.maxTicks = 1
	}
	return l
}

// Interval returns the wall-clock time between ticks
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// RunFrame runs one scheduler invocation: sample input, catch up on any
// overdue ticks, sleep if ahead of schedule, run the guaranteed final
// tick, then render. It returns the number of ticks performed, which is
// never more than the tick cap.
func (l *Loop) RunFrame() int {
	if !l.started {
		l.nextDue = l.clock.Now()
		l.start = l.nextDue
		l.started = true
	}

	l.state.ApplyInput(l.input.Poll())

	// the final tick is reserved before catching up
	l.nextDue = l.nextDue.Add(l.interval)
	ticks := 0
	for ticks < l.maxTicks-1 && l.nextDue.Before(l.clock.Now()) {
		l.tick()
		ticks++
		l.nextDue = l.nextDue.Add(l.interval)
	}

	now := l.clock.Now()
	behind := ticks == l.maxTicks-1 && l.nextDue.Before(now)
	if now.Before(l.nextDue) {
		l.clock.Sleep(l.nextDue.Sub(now))
	}
	l.tick()
	ticks++

	l.recordFrame(ticks, behind)

	if l.renderer != nil {
		l.state.Render(l.renderer)
	}
	return ticks
}

func (l *Loop) tick() {
	l.state.Tick(l.interval.Seconds() * l.timeScale())
}

func (l *Loop) timeScale() float64 {
	l.state.EntityLock.RLock()
	defer l.state.EntityLock.RUnlock()
	return l.state.TimeScale
}

func (l *Loop) recordFrame(ticks int, behind bool) {
	now := l.clock.Now()

	l.statsMu.Lock()
	s := &l.stats
	s.Ticks += uint64(ticks)
	s.Frames++
	s.LastFrameTicks = ticks
	s.LastTick = now
	s.Behind = behind
	if !l.lastFrame.IsZero() {
		if elapsed := now.Sub(l.lastFrame).Seconds(); elapsed > 0 {
			s.FrameRate = smooth(s.FrameRate, 1/elapsed)
		}
	}
	if running := now.Sub(l.start).Seconds(); running > 0 {
		s.PhysicsRate = float64(s.Ticks) / running
	}
	l.lastFrame = now
	stats := *s
	l.statsMu.Unlock()

	l.state.EntityLock.Lock()
	l.state.Stats = stats
	l.state.EntityLock.Unlock()

	if behind {
		l.state.logger.Debug(l.state.ctx, "simulation behind schedule",
			"tick_cap", l.maxTicks,
			"lag_ms", now.Sub(l.nextDue).Milliseconds(),
		)
	}
}

func smooth(old, sample float64) float64 {
	if old == 0 {
		return sample
	}
	return FrameRateSmoothing*old + (1-FrameRateSmoothing)*sample
}

// Stats returns a copy of the current loop statistics
func (l *Loop) Stats() Stats {
	l.statsMu.Lock()
	defer l.statsMu.Unlock()
	return l.stats
}

// LastTick returns the clock time of the most recent tick, or the zero
// time before the first frame
func (l *Loop) LastTick() time.Time {
	return l.Stats().LastTick
}

// Run calls RunFrame until ctx is cancelled
func (l *Loop) Run(ctx context.Context) error {
	s := l.state
	s.logger.Info(ctx, "simulation loop started",
		"updates_per_second", s.Config.LoopConfig.UpdatesPerSecond,
		"tick_cap", l.maxTicks,
	)
	s.EventBus.Publish(event.NewLifecycleEvent(event.SimulationStarted, s, l.Stats().Ticks))

	for {
		select {
		case <-ctx.Done():
			stats := l.Stats()
			s.logger.Info(ctx, "simulation loop stopped",
				"ticks", stats.Ticks,
				"frames", stats.Frames,
			)
			s.EventBus.Publish(event.NewLifecycleEvent(event.SimulationStopped, s, stats.Ticks))
			return nil
		default:
			l.RunFrame()
		}
	}
}
