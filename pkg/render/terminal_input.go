package render

import (
	"context"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-blackhole/pkg/engine"
)

// DefaultHoldWindow is how long a terminal key counts as held after its
// last press or auto-repeat. Terminals report no key releases.
const DefaultHoldWindow = 150 * time.Millisecond

// Action is one control of engine.InputState
type Action int

const (
	ActionQuickThrust Action = iota
	ActionThrustForward
	ActionThrustBackward
	ActionThrustUp
	ActionThrustDown
	ActionThrustRight
	ActionThrustLeft
	ActionRollRight
	ActionRollLeft
	ActionPitchUp
	ActionPitchDown
	ActionYawLeft
	ActionYawRight
	ActionToggleDebug
	ActionFastForward
	ActionReset
	actionCount
)

// Set turns the action on in state
func (a Action) Set(state *engine.InputState) {
	switch a {
	case ActionQuickThrust:
		state.QuickThrust = true
	case ActionThrustForward:
		state.ThrustForward = true
	case ActionThrustBackward:
		state.ThrustBackward = true
	case ActionThrustUp:
		state.ThrustUp = true
	case ActionThrustDown:
		state.ThrustDown = true
	case ActionThrustRight:
		state.ThrustRight = true
	case ActionThrustLeft:
		state.ThrustLeft = true
	case ActionRollRight:
		state.RollRight = true
	case ActionRollLeft:
		state.RollLeft = true
	case ActionPitchUp:
		state.PitchUp = true
	case ActionPitchDown:
		state.PitchDown = true
	case ActionYawLeft:
		state.YawLeft = true
	case ActionYawRight:
		state.YawRight = true
	case ActionToggleDebug:
		state.ToggleDebug = true
	case ActionFastForward:
		state.FastForward = true
	case ActionReset:
		state.Reset = true
	}
}

// RuneBindings maps printable keys to actions
var RuneBindings = map[rune]Action{
	' ':  ActionQuickThrust,
	';':  ActionThrustForward,
	'\'': ActionThrustForward,
	'/':  ActionThrustBackward,
	'w':  ActionThrustUp,
	'e':  ActionThrustUp,
	's':  ActionThrustDown,
	'd':  ActionThrustRight,
	'a':  ActionThrustLeft,
	'.':  ActionRollRight,
	',':  ActionRollLeft,
	't':  ActionToggleDebug,
	'g':  ActionFastForward,
}

// KeyBindings maps special keys to actions
var KeyBindings = map[tcell.Key]Action{
	tcell.KeyUp:    ActionPitchUp,
	tcell.KeyDown:  ActionPitchDown,
	tcell.KeyLeft:  ActionYawLeft,
	tcell.KeyRight: ActionYawRight,
	tcell.KeyEnd:   ActionReset,
}

// TerminalInput turns tcell key events into engine.InputState samples. It
// implements engine.InputSource.
type TerminalInput struct {
	hold time.Duration
	now  func() time.Time

	mu      sync.Mutex
	pressed [actionCount]time.Time
}

// NewTerminalInput creates an input source with the default hold window
func NewTerminalInput() *TerminalInput {
	return &TerminalInput{hold: DefaultHoldWindow, now: time.Now}
}

// HandleEvent records a key press. It returns false when the event asks
// to quit.
func (in *TerminalInput) HandleEvent(ev tcell.Event) bool {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return true
	}

	switch key.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
		if a, found := RuneBindings[key.Rune()]; found {
			in.press(a)
		}
	default:
		if a, found := KeyBindings[key.Key()]; found {
			in.press(a)
		}
	}
	return true
}

func (in *TerminalInput) press(a Action) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.pressed[a] = in.now()
}

// Poll implements engine.InputSource
func (in *TerminalInput) Poll() engine.InputState {
	in.mu.Lock()
	defer in.mu.Unlock()

	var state engine.InputState
	now := in.now()
	for a, at := range in.pressed {
		if !at.IsZero() && now.Sub(at) <= in.hold {
			Action(a).Set(&state)
		}
	}
	return state
}

// Listen reads screen events until the screen is finalized, ctx ends or a
// quit key arrives. quit is called in the last case.
func (in *TerminalInput) Listen(ctx context.Context, screen tcell.Screen, quit func()) {
	for {
		ev := screen.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return
		}
		if !in.HandleEvent(ev) {
			quit()
			return
		}
	}
}
