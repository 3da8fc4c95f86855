// pkg/render/engo/assets.go
package engo

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/EngoEngine/engo/common"
)

// Sprite colors
var (
	shipColor       = color.NRGBA{255, 220, 80, 255}
	holeRimColor    = color.NRGBA{255, 140, 0, 255}
	holeCenterColor = color.NRGBA{20, 0, 30, 255}
)

// shipPattern is a chevron seen from behind
var shipPattern = [][]int{
	{0, 0, 0, 0, 0, 0, 0, 1, 1, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0},
	{0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0},
	{0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0},
	{0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0},
	{0, 0, 1, 1, 1, 1, 1, 0, 0, 1, 1, 1, 1, 1, 0, 0},
	{0, 0, 1, 1, 1, 1, 0, 0, 0, 0, 1, 1, 1, 1, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 0},
	{1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1},
	{1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1},
	{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1},
}

// holeSize is the edge of the baked black hole sprite in pixels
const holeSize = 64

// AssetManager bakes the sprites the window draws. Textures need a GL
// context, so LoadAssets only works once engo is running.
type AssetManager struct {
	shipSprite common.Drawable
	holeSprite common.Drawable
}

// NewAssetManager creates a new asset manager
func NewAssetManager() *AssetManager {
	return &AssetManager{}
}

// LoadAssets uploads all sprites
func (am *AssetManager) LoadAssets() error {
	am.shipSprite = am.convertToEngoTexture(bakePattern(shipPattern, shipColor))
	am.holeSprite = am.convertToEngoTexture(bakeBlackHole(holeSize))
	return nil
}

// bakePattern draws a 2D pixel pattern in c onto a transparent image
func bakePattern(pattern [][]int, c color.Color) *image.NRGBA {
	height := len(pattern)
	width := 0
	if height > 0 {
		width = len(pattern[0])
	}
	img := createBaseImage(width, height)
	for y, row := range pattern {
		for x, pixel := range row {
			if pixel == 1 && x < width {
				img.Set(x, y, c)
			}
		}
	}
	return img
}

// bakeBlackHole draws a dark disc with a bright accretion rim
func bakeBlackHole(size int) *image.NRGBA {
	img := createBaseImage(size, size)
	center := float64(size-1) / 2
	outer := float64(size) / 2
	rim := outer * 0.8
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-center, float64(y)-center
			d2 := dx*dx + dy*dy
			switch {
			case d2 <= rim*rim:
				img.Set(x, y, holeCenterColor)
			case d2 <= outer*outer:
				img.Set(x, y, holeRimColor)
			}
		}
	}
	return img
}

// createBaseImage creates a transparent image with the specified dimensions
func createBaseImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)
	return img
}

// convertToEngoTexture uploads an image as an engo texture
func (am *AssetManager) convertToEngoTexture(img *image.NRGBA) common.Drawable {
	texture := common.NewImageObject(img)
	return common.NewTextureSingle(texture)
}

// ShipSprite returns the player ship sprite
func (am *AssetManager) ShipSprite() common.Drawable {
	return am.shipSprite
}

// BlackHoleSprite returns the black hole sprite
func (am *AssetManager) BlackHoleSprite() common.Drawable {
	return am.holeSprite
}
