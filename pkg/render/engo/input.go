// pkg/render/engo/input.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-blackhole/pkg/engine"
	"github.com/opd-ai/go-blackhole/pkg/render"
)

// Binding ties a named engo button to a control
type Binding struct {
	Button string
	Action render.Action
	Keys   []engo.Key
}

// Bindings lists the window controls
var Bindings = []Binding{
	{"quickThrust", render.ActionQuickThrust, []engo.Key{engo.KeySpace}},
	{"thrustForward", render.ActionThrustForward, []engo.Key{engo.KeySemicolon, engo.KeyApostrophe}},
	{"thrustBackward", render.ActionThrustBackward, []engo.Key{engo.KeySlash}},
	{"thrustUp", render.ActionThrustUp, []engo.Key{engo.KeyW, engo.KeyE}},
	{"thrustDown", render.ActionThrustDown, []engo.Key{engo.KeyS}},
	{"thrustRight", render.ActionThrustRight, []engo.Key{engo.KeyD}},
	{"thrustLeft", render.ActionThrustLeft, []engo.Key{engo.KeyA}},
	{"rollRight", render.ActionRollRight, []engo.Key{engo.KeyPeriod}},
	{"rollLeft", render.ActionRollLeft, []engo.Key{engo.KeyComma}},
	{"pitchUp", render.ActionPitchUp, []engo.Key{engo.KeyArrowUp}},
	{"pitchDown", render.ActionPitchDown, []engo.Key{engo.KeyArrowDown}},
	{"yawLeft", render.ActionYawLeft, []engo.Key{engo.KeyArrowLeft}},
	{"yawRight", render.ActionYawRight, []engo.Key{engo.KeyArrowRight}},
	{"toggleDebug", render.ActionToggleDebug, []engo.Key{engo.KeyT}},
	{"fastForward", render.ActionFastForward, []engo.Key{engo.KeyG}},
	{"reset", render.ActionReset, []engo.Key{engo.KeyEnd}},
}

// quitButton closes the window
const quitButton = "quit"

// InputSystem samples engo buttons into engine.InputState. It implements
// engine.InputSource and must be polled on the engo update goroutine.
type InputSystem struct {
	down    func(button string) bool
	pressed func(button string) bool
	exit    func()
}

// NewInputSystem creates an input system reading engo.Input
func NewInputSystem() *InputSystem {
	return &InputSystem{
		down:    func(b string) bool { return engo.Input.Button(b).Down() },
		pressed: func(b string) bool { return engo.Input.Button(b).JustPressed() },
		exit:    engo.Exit,
	}
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {
	// Not used for input system
}

// Update closes the window on the quit key
func (is *InputSystem) Update(dt float32) {
	if is.pressed(quitButton) {
		is.exit()
	}
}

// Poll implements engine.InputSource
func (is *InputSystem) Poll() engine.InputState {
	var state engine.InputState
	for _, b := range Bindings {
		if is.down(b.Button) {
			b.Action.Set(&state)
		}
	}
	return state
}

// SetupInputBindings sets up the key bindings for the simulation
func SetupInputBindings() {
	for _, b := range Bindings {
		engo.Input.RegisterButton(b.Button, b.Keys...)
	}
	engo.Input.RegisterButton(quitButton, engo.KeyEscape)
}
