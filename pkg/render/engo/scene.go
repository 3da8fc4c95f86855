// pkg/render/engo/scene.go
package engo

import (
	"bytes"
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/opd-ai/go-blackhole/pkg/engine"
)

// hudFontURL names the embedded overlay font in engo.Files
const hudFontURL = "fonts/goregular.ttf"

// SimulationSystem advances the loop once per engo update
type SimulationSystem struct {
	loop *engine.Loop
}

// NewSimulationSystem creates a system driving loop
func NewSimulationSystem(loop *engine.Loop) *SimulationSystem {
	return &SimulationSystem{loop: loop}
}

// Remove satisfies the ecs.System interface
func (ss *SimulationSystem) Remove(basic ecs.BasicEntity) {}

// Update runs one loop frame: input, ticks, render
func (ss *SimulationSystem) Update(dt float32) {
	ss.loop.RunFrame()
}

// GameScene shows the simulation in an engo window
type GameScene struct {
	state    *engine.SimulationState
	loopOpts []engine.LoopOption

	// Rendering components
	renderer   *EngoRenderer
	camera     *CameraSystem
	input      *InputSystem
	hud        *HUDSystem
	simulation *SimulationSystem

	loop *engine.Loop
}

// NewGameScene creates a scene for state. The loop is built in Setup with
// opts plus the scene's input and renderer.
func NewGameScene(state *engine.SimulationState, opts ...engine.LoopOption) *GameScene {
	return &GameScene{
		state:    state,
		loopOpts: opts,
	}
}

// Type returns the scene type (required by Engo)
func (scene *GameScene) Type() string {
	return "GameScene"
}

// Preload registers the embedded overlay font
func (scene *GameScene) Preload() {
	if err := engo.Files.LoadReaderData(hudFontURL, bytes.NewReader(goregular.TTF)); err != nil {
		scene.state.Logger().Error(scene.state.Context(), "Failed to load HUD font", err)
	}
}

// Setup is called when the scene starts (required by Engo)
func (scene *GameScene) Setup(u engo.Updater) {
	world, ok := u.(*ecs.World)
	if !ok {
		panic("engo scene requires an *ecs.World updater")
	}
	ctx := scene.state.Context()
	logger := scene.state.Logger()

	common.SetBackground(color.Black)
	renderSystem := &common.RenderSystem{}
	world.AddSystem(renderSystem)

	SetupInputBindings()
	SetupCameraControls()

	assets := NewAssetManager()
	if err := assets.LoadAssets(); err != nil {
		logger.Error(ctx, "Failed to load sprites", err)
	}
	font, err := NewHUDFont(hudFontURL)
	if err != nil {
		logger.Error(ctx, "HUD text disabled", err)
	}

	scene.camera = NewCameraSystem(float64(engo.GameWidth()), float64(engo.GameHeight()))
	scene.hud = NewHUDSystem(renderSystem, font)
	scene.renderer = NewEngoRenderer(renderSystem, scene.camera, assets, scene.hud)
	scene.input = NewInputSystem()

	opts := append([]engine.LoopOption{}, scene.loopOpts...)
	opts = append(opts, engine.WithInput(scene.input), engine.WithRenderer(scene.renderer))
	scene.loop = engine.NewLoop(scene.state, opts...)
	scene.simulation = NewSimulationSystem(scene.loop)

	// Update order: quit key, viewport, simulation frame, overlay text.
	// The render system draws last by priority.
	world.AddSystem(scene.input)
	world.AddSystem(scene.camera)
	world.AddSystem(scene.simulation)
	world.AddSystem(scene.hud)

	logger.Info(ctx, "Window scene ready",
		"width", engo.GameWidth(),
		"height", engo.GameHeight(),
		"asteroids", len(scene.state.Asteroids),
	)
}

// Loop returns the loop built by Setup, or nil before it
func (scene *GameScene) Loop() *engine.Loop {
	return scene.loop
}

// Exit is called when the window closes
func (scene *GameScene) Exit() {
	if scene.loop == nil {
		return
	}
	stats := scene.loop.Stats()
	scene.state.Logger().Info(scene.state.Context(), "Window closed",
		"ticks", stats.Ticks,
		"frames", stats.Frames,
	)
}
