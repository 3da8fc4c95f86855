package render

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-blackhole/pkg/engine"
	"github.com/opd-ai/go-blackhole/pkg/entity"
	"github.com/opd-ai/go-blackhole/pkg/physics"
)

func testAsteroid(pos physics.Vector3D, outer float64) *entity.Asteroid {
	return &entity.Asteroid{
		Body:         entity.Body{Frame: physics.IdentityFrame(pos)},
		InnerRadius:  outer / 2,
		OuterRadius:  outer,
		RotationAxis: physics.UnitX,
	}
}

func TestNewTerminalRenderer_CreatesValidRenderer_WithCorrectDimensions(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		scale  float64
	}{
		{"small renderer", 10, 5, 1.0},
		{"medium renderer", 80, 24, 10.0},
		{"large renderer", 120, 40, 5.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := NewTerminalRenderer(tt.width, tt.height, tt.scale)

			if renderer.width != tt.width || renderer.height != tt.height {
				t.Errorf("expected %dx%d, got %dx%d", tt.width, tt.height, renderer.width, renderer.height)
			}
			if renderer.scale != tt.scale {
				t.Errorf("expected scale %f, got %f", tt.scale, renderer.scale)
			}
			if len(renderer.buffer) != tt.height {
				t.Errorf("expected buffer height %d, got %d", tt.height, len(renderer.buffer))
			}
			for i, row := range renderer.buffer {
				if len(row) != tt.width {
					t.Errorf("row %d: expected width %d, got %d", i, tt.width, len(row))
				}
			}
			if !renderer.centerPos.IsZero() {
				t.Errorf("expected center at origin, got %v", renderer.centerPos)
			}
		})
	}
}

func TestScaleForDisk_FitsDiskAcrossWidth(t *testing.T) {
	if got := ScaleForDisk(10000, 80); got != 250 {
		t.Errorf("expected scale 250, got %v", got)
	}
	if got := ScaleForDisk(10000, 0); got != 1 {
		t.Errorf("expected fallback scale 1, got %v", got)
	}
}

func TestWorldToScreen_ConvertsCoordinates_Correctly(t *testing.T) {
	renderer := NewTerminalRenderer(80, 24, 10.0)

	tests := []struct {
		name      string
		centerPos physics.Vector3D
		worldPos  physics.Vector3D
		expectedX int
		expectedY int
	}{
		{
			name:      "center at origin, world at origin",
			worldPos:  physics.Vector3D{},
			expectedX: 40,
			expectedY: 12,
		},
		{
			name:      "center at origin, world offset",
			worldPos:  physics.Vector3D{X: 100, Y: 999, Z: 50},
			expectedX: 50, // 40 + 100/10
			expectedY: 14, // 12 + 50/20
		},
		{
			name:      "center offset, world at origin",
			centerPos: physics.Vector3D{X: 50, Z: 25},
			worldPos:  physics.Vector3D{},
			expectedX: 35, // 40 - 50/10
			expectedY: 10, // 12 - 25/20, floored
		},
		{
			name:      "negative coordinates",
			worldPos:  physics.Vector3D{X: -405, Z: -235},
			expectedX: -1,
			expectedY: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer.SetCenter(tt.centerPos)
			x, y := renderer.worldToScreen(tt.worldPos)

			if x != tt.expectedX {
				t.Errorf("expected screen X %d, got %d", tt.expectedX, x)
			}
			if y != tt.expectedY {
				t.Errorf("expected screen Y %d, got %d", tt.expectedY, y)
			}
		})
	}
}

func TestClear_ClearsBuffer_AndDrawsBlackHole(t *testing.T) {
	renderer := NewTerminalRenderer(10, 5, 1.0)

	for y := 0; y < renderer.height; y++ {
		for x := 0; x < renderer.width; x++ {
			renderer.buffer[y][x] = 'X'
		}
	}

	renderer.Clear()

	for y := 0; y < renderer.height; y++ {
		for x := 0; x < renderer.width; x++ {
			expected := GlyphEmpty
			if x == 5 && y == 2 {
				expected = GlyphBlackHole
			}
			if renderer.buffer[y][x] != expected {
				t.Errorf("position (%d, %d) expected %q, got %q", x, y, expected, renderer.buffer[y][x])
			}
		}
	}
}

func TestClear_BlackHoleOffScreen_WhenCenterMoved(t *testing.T) {
	renderer := NewTerminalRenderer(10, 5, 1.0)
	renderer.SetCenter(physics.Vector3D{X: 1000})
	renderer.Clear()

	if strings.ContainsRune(strings.Join(renderer.Lines(), ""), GlyphBlackHole) {
		t.Error("expected black hole outside the view")
	}
}

func TestRenderAsteroid_SmallAsteroid_IsPebble(t *testing.T) {
	renderer := NewTerminalRenderer(80, 24, 10.0)
	renderer.Clear()

	renderer.RenderAsteroid(testAsteroid(physics.Vector3D{X: 100}, 5))

	if renderer.buffer[12][50] != GlyphPebble {
		t.Errorf("expected pebble at (50, 12), got %q", renderer.buffer[12][50])
	}
}

func TestRenderAsteroid_LargeAsteroid_IsFilledEllipse(t *testing.T) {
	renderer := NewTerminalRenderer(80, 24, 10.0)
	renderer.Clear()

	// radius 4 columns by 2 rows centred on (20, 12)
	renderer.RenderAsteroid(testAsteroid(physics.Vector3D{X: -200}, 40))

	tests := []struct {
		x, y     int
		expected rune
	}{
		{20, 12, GlyphRock},
		{24, 12, GlyphRock},
		{16, 12, GlyphRock},
		{20, 14, GlyphRock},
		{20, 10, GlyphRock},
		{24, 14, GlyphEmpty},
		{25, 12, GlyphEmpty},
		{20, 15, GlyphEmpty},
	}

	for _, tt := range tests {
		if got := renderer.buffer[tt.y][tt.x]; got != tt.expected {
			t.Errorf("position (%d, %d) expected %q, got %q", tt.x, tt.y, tt.expected, got)
		}
	}
}

func TestRenderAsteroid_OutOfBounds_DrawsNothing(t *testing.T) {
	renderer := NewTerminalRenderer(20, 10, 1.0)
	renderer.SetCenter(physics.Vector3D{X: -5000})
	renderer.Clear()

	renderer.RenderAsteroid(testAsteroid(physics.Vector3D{X: 5000}, 3))

	for y, line := range renderer.Lines() {
		if strings.TrimSpace(line) != "" {
			t.Errorf("row %d: expected empty, got %q", y, line)
		}
	}
}

func TestRenderSpaceship_GlyphFollowsHeading(t *testing.T) {
	tests := []struct {
		name     string
		forward  physics.Vector3D
		expected rune
	}{
		{"facing +X", physics.UnitX, '>'},
		{"facing -X", physics.UnitX.Negate(), '<'},
		{"facing +Z", physics.UnitZ, 'v'},
		{"facing -Z", physics.UnitZ.Negate(), '^'},
		{"mostly +X", physics.Vector3D{X: 0.8, Z: -0.6}, '>'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := NewTerminalRenderer(20, 10, 100.0)
			renderer.Clear()

			ship := entity.NewSpaceship(physics.DefaultGravityWell(), nil)
			ship.Frame = physics.NewFrame(physics.Vector3D{X: -500}, tt.forward, physics.UnitY)
			renderer.RenderSpaceship(ship)

			if got := renderer.buffer[5][5]; got != tt.expected {
				t.Errorf("expected %q at (5, 5), got %q", tt.expected, got)
			}
		})
	}
}

func TestRenderHUD_DrawsPathAndStatus(t *testing.T) {
	renderer := NewTerminalRenderer(80, 24, 10.0)
	renderer.Clear()

	renderer.RenderHUD(engine.Snapshot{
		Tick:          5,
		AsteroidCount: 3,
		TimeScale:     10,
		PredictedPath: []physics.Vector3D{{X: 300}, {}},
		Stats:         engine.Stats{FrameRate: 59.5, PhysicsRate: 60},
	})

	if renderer.buffer[12][70] != GlyphPath {
		t.Errorf("expected path dot at (70, 12), got %q", renderer.buffer[12][70])
	}
	if renderer.buffer[12][40] != GlyphBlackHole {
		t.Error("expected path not to cover the black hole")
	}

	lines := renderer.Lines()
	if !strings.HasPrefix(lines[0], "tick 5  asteroids 3") || !strings.Contains(lines[0], "x10") {
		t.Errorf("unexpected status line %q", lines[0])
	}
	if strings.Contains(lines[0], "DEBUG") {
		t.Error("expected no debug marker when debug is off")
	}
	if !strings.HasPrefix(lines[1], "Frame Rate: 59.5  Physics Rate: 60.0") {
		t.Errorf("unexpected rate line %q", lines[1])
	}
}

func TestRenderHUD_DebugDrawsSpinAxes(t *testing.T) {
	renderer := NewTerminalRenderer(80, 24, 10.0)

	for _, debug := range []bool{false, true} {
		renderer.Clear()
		renderer.RenderAsteroid(testAsteroid(physics.Vector3D{X: -200}, 40))
		renderer.RenderHUD(engine.Snapshot{Debug: debug})

		// axis end at x = -200 + 40 + 50
		got := renderer.buffer[12][29]
		if debug && got != GlyphAxis {
			t.Errorf("expected axis marker in debug mode, got %q", got)
		}
		if !debug && got == GlyphAxis {
			t.Error("expected no axis marker outside debug mode")
		}
		if debug && !strings.Contains(renderer.Lines()[0], "DEBUG") {
			t.Error("expected debug marker in status line")
		}
	}
}

func TestWriteLine_TruncatesToWidth(t *testing.T) {
	renderer := NewTerminalRenderer(5, 2, 1.0)
	renderer.Clear()
	renderer.writeLine(0, "abcdefgh")
	renderer.writeLine(7, "ignored")

	if renderer.Lines()[0] != "abcde" {
		t.Errorf("expected truncated line, got %q", renderer.Lines()[0])
	}
}

func TestString_FramesBuffer(t *testing.T) {
	renderer := NewTerminalRenderer(3, 1, 1.0)
	renderer.Clear()

	expected := "+---+\n| @ |\n+---+\n"
	if renderer.String() != expected {
		t.Errorf("expected %q, got %q", expected, renderer.String())
	}
}

func TestPresent_WritesToScreen(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init failed: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(40, 12)

	renderer := NewScreenRenderer(screen, 10.0)
	w, h := screen.Size()
	if renderer.width != w || renderer.height != h {
		t.Fatalf("expected renderer sized %dx%d, got %dx%d", w, h, renderer.width, renderer.height)
	}

	renderer.Clear()
	renderer.Present()

	ch, _, _, _ := screen.GetContent(w/2, h/2)
	if ch != GlyphBlackHole {
		t.Errorf("expected black hole on screen, got %q", ch)
	}
}

func TestPresent_WithoutScreen_IsNoop(t *testing.T) {
	renderer := NewTerminalRenderer(4, 2, 1.0)
	renderer.Clear()
	renderer.Present()
}

func TestTerminalRenderer_ImplementsInterfaces(t *testing.T) {
	var r entity.Renderer = NewTerminalRenderer(4, 2, 1.0)
	if _, ok := r.(engine.HUDRenderer); !ok {
		t.Error("expected TerminalRenderer to draw a HUD")
	}
}

func newTestInput(now *time.Time) *TerminalInput {
	in := NewTerminalInput()
	in.now = func() time.Time { return *now }
	return in
}

func TestTerminalInput_MapsKeys(t *testing.T) {
	tests := []struct {
		name  string
		event *tcell.EventKey
		check func(engine.InputState) bool
	}{
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), func(s engine.InputState) bool { return s.QuickThrust }},
		{"semicolon", tcell.NewEventKey(tcell.KeyRune, ';', tcell.ModNone), func(s engine.InputState) bool { return s.ThrustForward }},
		{"quote", tcell.NewEventKey(tcell.KeyRune, '\'', tcell.ModNone), func(s engine.InputState) bool { return s.ThrustForward }},
		{"slash", tcell.NewEventKey(tcell.KeyRune, '/', tcell.ModNone), func(s engine.InputState) bool { return s.ThrustBackward }},
		{"w", tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone), func(s engine.InputState) bool { return s.ThrustUp }},
		{"e", tcell.NewEventKey(tcell.KeyRune, 'e', tcell.ModNone), func(s engine.InputState) bool { return s.ThrustUp }},
		{"s", tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModNone), func(s engine.InputState) bool { return s.ThrustDown }},
		{"d", tcell.NewEventKey(tcell.KeyRune, 'd', tcell.ModNone), func(s engine.InputState) bool { return s.ThrustRight }},
		{"a", tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone), func(s engine.InputState) bool { return s.ThrustLeft }},
		{"period", tcell.NewEventKey(tcell.KeyRune, '.', tcell.ModNone), func(s engine.InputState) bool { return s.RollRight }},
		{"comma", tcell.NewEventKey(tcell.KeyRune, ',', tcell.ModNone), func(s engine.InputState) bool { return s.RollLeft }},
		{"t", tcell.NewEventKey(tcell.KeyRune, 't', tcell.ModNone), func(s engine.InputState) bool { return s.ToggleDebug }},
		{"g", tcell.NewEventKey(tcell.KeyRune, 'g', tcell.ModNone), func(s engine.InputState) bool { return s.FastForward }},
		{"up", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), func(s engine.InputState) bool { return s.PitchUp }},
		{"down", tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), func(s engine.InputState) bool { return s.PitchDown }},
		{"left", tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), func(s engine.InputState) bool { return s.YawLeft }},
		{"right", tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), func(s engine.InputState) bool { return s.YawRight }},
		{"end", tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone), func(s engine.InputState) bool { return s.Reset }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Unix(100, 0)
			in := newTestInput(&now)

			if !in.HandleEvent(tt.event) {
				t.Fatal("expected key not to quit")
			}
			state := in.Poll()
			if !tt.check(state) {
				t.Errorf("expected %s to set its control, got %+v", tt.name, state)
			}

			var count int
			for a := Action(0); a < actionCount; a++ {
				var probe engine.InputState
				a.Set(&probe)
				if probe == (engine.InputState{}) {
					t.Errorf("action %d sets nothing", a)
				}
				if state == probe {
					count++
				}
			}
			if count != 1 {
				t.Errorf("expected exactly one control set, state %+v", state)
			}
		})
	}
}

func TestTerminalInput_HoldWindowExpires(t *testing.T) {
	now := time.Unix(100, 0)
	in := newTestInput(&now)

	in.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'g', tcell.ModNone))

	now = now.Add(DefaultHoldWindow / 2)
	if !in.Poll().FastForward {
		t.Error("expected key held inside the window")
	}

	now = now.Add(DefaultHoldWindow)
	if in.Poll().FastForward {
		t.Error("expected key released after the window")
	}
}

func TestTerminalInput_QuitKeys(t *testing.T) {
	in := NewTerminalInput()

	if in.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("expected Escape to quit")
	}
	if in.HandleEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone)) {
		t.Error("expected Ctrl-C to quit")
	}
	if !in.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone)) {
		t.Error("expected unbound key to be ignored")
	}
	if !in.HandleEvent(tcell.NewEventResize(80, 24)) {
		t.Error("expected non-key events to be ignored")
	}
	if in.Poll() != (engine.InputState{}) {
		t.Error("expected no controls from quit or unbound keys")
	}
}

func TestTerminalInput_Listen(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init failed: %v", err)
	}
	defer screen.Fini()

	in := NewTerminalInput()
	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		in.Listen(context.Background(), screen, func() { close(quit) })
		close(done)
	}()

	screen.InjectKey(tcell.KeyRune, 'w', tcell.ModNone)
	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	select {
	case <-quit:
	case <-time.After(2 * time.Second):
		t.Fatal("expected Escape to call quit")
	}
	<-done

	if !in.Poll().ThrustUp {
		t.Error("expected injected key to be recorded")
	}
}

func TestStatusLines(t *testing.T) {
	tests := []struct {
		name string
		snap engine.Snapshot
		want string
	}{
		{"Normal", engine.Snapshot{Tick: 5, AsteroidCount: 2, PlayerSpeed: 1.25, TimeScale: 1}, "tick 5  asteroids 2  speed 1.2  x1"},
		{"FastDebug", engine.Snapshot{Tick: 9, TimeScale: 10, Debug: true}, "tick 9  asteroids 0  speed 0.0  x10  DEBUG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := StatusLines(tt.snap)
			if len(lines) != 2 {
				t.Fatalf("Expected 2 lines, got %d", len(lines))
			}
			if lines[0] != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, lines[0])
			}
		})
	}
}
