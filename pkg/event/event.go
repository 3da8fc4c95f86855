// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Simulation event types
const (
	SimulationStarted Type = "simulation_started"
	SimulationStopped Type = "simulation_stopped"
	FieldReset        Type = "field_reset"
	DebugToggled      Type = "debug_toggled"
	TimeScaleChanged  Type = "time_scale_changed"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler. Cancel removes it.
type Subscription struct {
	ID     uint64
	Type   Type
	Cancel func()
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously on the publishing goroutine in subscription order.
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Type:   eventType,
		Cancel: func() { b.Unsubscribe(eventType, id) },
	}
}

// Unsubscribe removes the handler registered under id. Unknown IDs are ignored.
func (b *Bus) Unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			remaining := make([]subscriber, 0, len(subs)-1)
			remaining = append(remaining, subs[:i]...)
			remaining = append(remaining, subs[i+1:]...)
			if len(remaining) == 0 {
				delete(b.handlers, eventType)
			} else {
				b.handlers[eventType] = remaining
			}
			return
		}
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// Specific event implementations

// FieldEvent reports a rebuilt asteroid field
type FieldEvent struct {
	BaseEvent
	AsteroidCount int
	Generation    uint64
}

// NewFieldEvent creates a field reset event
func NewFieldEvent(source interface{}, asteroidCount int, generation uint64) *FieldEvent {
	return &FieldEvent{
		BaseEvent: BaseEvent{
			EventType: FieldReset,
			Source:    source,
		},
		AsteroidCount: asteroidCount,
		Generation:    generation,
	}
}

// ToggleEvent reports a boolean mode switch such as debug drawing
type ToggleEvent struct {
	BaseEvent
	Enabled bool
}

// NewToggleEvent creates a toggle event
func NewToggleEvent(eventType Type, source interface{}, enabled bool) *ToggleEvent {
	return &ToggleEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Enabled: enabled,
	}
}

// TimeScaleEvent reports a change of the simulated-time multiplier
type TimeScaleEvent struct {
	BaseEvent
	OldScale float64
	NewScale float64
}

// NewTimeScaleEvent creates a time scale event
func NewTimeScaleEvent(source interface{}, oldScale, newScale float64) *TimeScaleEvent {
	return &TimeScaleEvent{
		BaseEvent: BaseEvent{
			EventType: TimeScaleChanged,
			Source:    source,
		},
		OldScale: oldScale,
		NewScale: newScale,
	}
}

// LifecycleEvent reports the loop starting or stopping
type LifecycleEvent struct {
	BaseEvent
	Tick uint64
}

// NewLifecycleEvent creates a lifecycle event
func NewLifecycleEvent(eventType Type, source interface{}, tick uint64) *LifecycleEvent {
	return &LifecycleEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Tick: tick,
	}
}
