// pkg/render/engo/hud.go
package engo

import (
	"image/color"
	"sync"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-blackhole/pkg/engine"
	"github.com/opd-ai/go-blackhole/pkg/render"
)

// HUD layout in pixels
const (
	hudMargin     = 10
	hudLineHeight = 22
	hudFontSize   = 16
)

// HUDSystem draws the status lines in the top-left corner
type HUDSystem struct {
	sink spriteSink
	font *common.Font

	mu    sync.Mutex
	lines []string
	dirty bool
	texts []*sprite

	hudColor color.Color
}

// NewHUDSystem creates a HUD drawing with font. A nil font keeps the text
// but draws nothing.
func NewHUDSystem(sink spriteSink, font *common.Font) *HUDSystem {
	return &HUDSystem{
		sink:     sink,
		font:     font,
		hudColor: color.RGBA{255, 255, 255, 255},
	}
}

// NewHUDFont builds the overlay font from a ttf already loaded under url
func NewHUDFont(url string) (*common.Font, error) {
	font := &common.Font{
		URL:  url,
		FG:   color.White,
		Size: hudFontSize,
	}
	if err := font.CreatePreloaded(); err != nil {
		return nil, err
	}
	return font, nil
}

// Remove satisfies the ecs.System interface
func (hud *HUDSystem) Remove(basic ecs.BasicEntity) {
	// Not used for HUD system
}

// SetSnapshot replaces the displayed values
func (hud *HUDSystem) SetSnapshot(s engine.Snapshot) {
	hud.mu.Lock()
	defer hud.mu.Unlock()
	hud.lines = render.StatusLines(s)
	hud.dirty = true
}

// Lines returns the text currently shown
func (hud *HUDSystem) Lines() []string {
	hud.mu.Lock()
	defer hud.mu.Unlock()
	return append([]string(nil), hud.lines...)
}

// Update rebuilds the text entities when the lines changed
func (hud *HUDSystem) Update(dt float32) {
	hud.mu.Lock()
	defer hud.mu.Unlock()
	if !hud.dirty || hud.font == nil {
		return
	}
	hud.dirty = false

	for len(hud.texts) < len(hud.lines) {
		hud.texts = append(hud.texts, newSprite(hud.sink, nil, hud.hudColor))
	}
	for i, s := range hud.texts {
		if i >= len(hud.lines) {
			s.Hidden = true
			continue
		}
		s.Drawable = common.Text{Font: hud.font, Text: hud.lines[i]}
		s.Position = engo.Point{X: hudMargin, Y: float32(hudMargin + i*hudLineHeight)}
		s.Hidden = false
	}
}
