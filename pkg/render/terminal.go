package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-blackhole/pkg/engine"
	"github.com/opd-ai/go-blackhole/pkg/entity"
	"github.com/opd-ai/go-blackhole/pkg/physics"
)

// CellAspect is the height of a terminal cell relative to its width
const CellAspect = 2.0

// Glyphs used by the terminal view
const (
	GlyphEmpty     = ' '
	GlyphBlackHole = '@'
	GlyphRock      = '#'
	GlyphPebble    = '*'
	GlyphPath      = '.'
	GlyphAxis      = '+'
)

// debugAxisMargin is how far past an asteroid's outer radius its spin axis
// marker is drawn
const debugAxisMargin = 50.0

type asteroidMark struct {
	position physics.Vector3D
	axis     physics.Vector3D
	radius   float64
}

// TerminalRenderer draws a top-down view of the field into a rune buffer.
// World X maps to columns and world Z to rows. With a screen attached,
// Present flushes the buffer through tcell.
type TerminalRenderer struct {
	width     int
	height    int
	buffer    [][]rune
	scale     float64 // world units per column
	centerPos physics.Vector3D
	screen    tcell.Screen
	marks     []asteroidMark
}

// NewTerminalRenderer creates a buffer-only renderer
func NewTerminalRenderer(width, height int, scale float64) *TerminalRenderer {
	r := &TerminalRenderer{scale: scale}
	r.resize(width, height)
	r.Clear()
	return r
}

// NewScreenRenderer creates a renderer sized to screen. The screen must
// already be initialized.
func NewScreenRenderer(screen tcell.Screen, scale float64) *TerminalRenderer {
	w, h := screen.Size()
	r := NewTerminalRenderer(w, h, scale)
	r.screen = screen
	return r
}

// ScaleForDisk returns the scale that fits a disk of the given radius
// across width columns
func ScaleForDisk(radius float64, width int) float64 {
	if width <= 0 {
		return 1
	}
	return 2 * radius / float64(width)
}

func (r *TerminalRenderer) resize(width, height int) {
	r.width = width
	r.height = height
	r.buffer = make([][]rune, height)
	for i := range r.buffer {
		r.buffer[i] = make([]rune, width)
	}
}

// SetCenter sets the world position shown at the middle of the view
func (r *TerminalRenderer) SetCenter(pos physics.Vector3D) {
	r.centerPos = pos
}

// worldToScreen projects onto the XZ plane
func (r *TerminalRenderer) worldToScreen(pos physics.Vector3D) (int, int) {
	screenX := int(math.Floor((pos.X-r.centerPos.X)/r.scale + float64(r.width)/2))
	screenY := int(math.Floor((pos.Z-r.centerPos.Z)/(r.scale*CellAspect) + float64(r.height)/2))
	return screenX, screenY
}

func (r *TerminalRenderer) inBounds(x, y int) bool {
	return x >= 0 && x < r.width && y >= 0 && y < r.height
}

func (r *TerminalRenderer) plot(x, y int, glyph rune) {
	if r.inBounds(x, y) {
		r.buffer[y][x] = glyph
	}
}

// plotIfEmpty draws glyph without covering anything already drawn
func (r *TerminalRenderer) plotIfEmpty(x, y int, glyph rune) {
	if r.inBounds(x, y) && r.buffer[y][x] == GlyphEmpty {
		r.buffer[y][x] = glyph
	}
}

// Clear implements entity.Renderer. It follows screen resizes and redraws
// the black hole.
func (r *TerminalRenderer) Clear() {
	if r.screen != nil {
		if w, h := r.screen.Size(); w != r.width || h != r.height {
			r.resize(w, h)
		}
	}
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = GlyphEmpty
		}
	}
	r.marks = r.marks[:0]

	x, y := r.worldToScreen(physics.Vector3D{})
	r.plot(x, y, GlyphBlackHole)
}

// RenderAsteroid implements entity.Renderer. Rocks smaller than a cell are
// a single pebble, larger ones a filled ellipse.
func (r *TerminalRenderer) RenderAsteroid(a *entity.Asteroid) {
	pos := a.GetPosition()
	r.marks = append(r.marks, asteroidMark{position: pos, axis: a.RotationAxis, radius: a.OuterRadius})

	cx, cy := r.worldToScreen(pos)
	rx := a.OuterRadius / r.scale
	if rx < 1 {
		r.plot(cx, cy, GlyphPebble)
		return
	}
	ry := rx / CellAspect
	for dy := -int(ry); dy <= int(ry); dy++ {
		for dx := -int(rx); dx <= int(rx); dx++ {
			nx, ny := float64(dx)/rx, float64(dy)/math.Max(ry, 1)
			if nx*nx+ny*ny <= 1 {
				r.plot(cx+dx, cy+dy, GlyphRock)
			}
		}
	}
}

// RenderSpaceship implements entity.Renderer. The glyph points along the
// ship's heading in the view plane.
func (r *TerminalRenderer) RenderSpaceship(s *entity.Spaceship) {
	x, y := r.worldToScreen(s.GetPosition())
	r.plot(x, y, headingGlyph(s.Frame.Forward))
}

func headingGlyph(forward physics.Vector3D) rune {
	if math.Abs(forward.X) >= math.Abs(forward.Z) {
		if forward.X >= 0 {
			return '>'
		}
		return '<'
	}
	if forward.Z > 0 {
		return 'v'
	}
	return '^'
}

// RenderHUD implements engine.HUDRenderer: the predicted path, spin axes
// in debug mode, and two status lines.
func (r *TerminalRenderer) RenderHUD(s engine.Snapshot) {
	for _, p := range s.PredictedPath {
		x, y := r.worldToScreen(p)
		r.plotIfEmpty(x, y, GlyphPath)
	}

	if s.Debug {
		for _, m := range r.marks {
			x, y := r.worldToScreen(m.position.Add(m.axis.Scale(m.radius + debugAxisMargin)))
			r.plotIfEmpty(x, y, GlyphAxis)
		}
	}

	for i, line := range StatusLines(s) {
		r.writeLine(i, line)
	}
}

// StatusLines formats the overlay text shared by the front ends
func StatusLines(s engine.Snapshot) []string {
	status := fmt.Sprintf("tick %d  asteroids %d  speed %.1f  x%g", s.Tick, s.AsteroidCount, s.PlayerSpeed, s.TimeScale)
	if s.Debug {
		status += "  DEBUG"
	}
	return []string{
		status,
		fmt.Sprintf("Frame Rate: %.1f  Physics Rate: %.1f", s.Stats.FrameRate, s.Stats.PhysicsRate),
	}
}

func (r *TerminalRenderer) writeLine(row int, text string) {
	if row < 0 || row >= r.height {
		return
	}
	x := 0
	for _, ch := range text {
		if x >= r.width {
			break
		}
		r.buffer[row][x] = ch
		x++
	}
}

// Present implements entity.Renderer
func (r *TerminalRenderer) Present() {
	if r.screen == nil {
		return
	}
	for y := range r.buffer {
		for x, ch := range r.buffer[y] {
			r.screen.SetContent(x, y, ch, nil, glyphStyle(ch))
		}
	}
	r.screen.Show()
}

func glyphStyle(ch rune) tcell.Style {
	switch ch {
	case GlyphRock, GlyphPebble:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	case GlyphBlackHole:
		return tcell.StyleDefault.Foreground(tcell.ColorOrange)
	case GlyphPath:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	case GlyphAxis:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case '>', '<', '^', 'v':
		return tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	default:
		return tcell.StyleDefault
	}
}

// Lines returns the buffer as strings, one per row
func (r *TerminalRenderer) Lines() []string {
	lines := make([]string, len(r.buffer))
	for i, row := range r.buffer {
		lines[i] = string(row)
	}
	return lines
}

// String returns the buffer framed by a border
func (r *TerminalRenderer) String() string {
	var sb strings.Builder
	border := "+" + strings.Repeat("-", r.width) + "+\n"
	sb.WriteString(border)
	for _, line := range r.Lines() {
		sb.WriteString("|" + line + "|\n")
	}
	sb.WriteString(border)
	return sb.String()
}
