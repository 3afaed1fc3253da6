package game

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/powerflow-visualization/internal/flow"
)

// hsvToRgb converts HSV to RGB (hue: 0-360, saturation: 0-1, value: 0-1)
func hsvToRgb(h, s, v float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return uint8((r + m) * 255), uint8((g + m) * 255), uint8((b + m) * 255)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// formatDuration formats a duration as MM:SS
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// formatWatts prints W below 1 kW and kW with one decimal above.
func formatWatts(w float64) string {
	if math.Abs(w) < 1000 {
		return fmt.Sprintf("%.0f W", w)
	}
	return fmt.Sprintf("%.1f kW", w/1000)
}

func withAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	c.A = uint8(float64(c.A) * clamp01(alpha))
	return c
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

func sortedNodes(positions map[string]flow.Point) []string {
	names := make([]string, 0, len(positions))
	for name := range positions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type rect struct {
	x, y, w, h float64
}

func (r rect) contains(x, y float64) bool {
	return x >= r.x && x <= r.x+r.w && y >= r.y && y <= r.y+r.h
}

const spriteSize = 64

// spriteSet holds the white radial gradients every particle layer is drawn
// from, tinted per draw call.
type spriteSet struct {
	glow *ebiten.Image
	core *ebiten.Image
}

func newSpriteSet() *spriteSet {
	return &spriteSet{
		glow: ebiten.NewImageFromImage(radialImage(spriteSize, glowFalloff)),
		core: ebiten.NewImageFromImage(radialImage(spriteSize, coreFalloff)),
	}
}

// glowFalloff fades quadratically from the centre (d=0) to the rim (d=1).
func glowFalloff(d float64) float64 {
	return math.Pow(1-clamp01(d), 2)
}

// coreFalloff is solid out to half the radius and then fades out.
func coreFalloff(d float64) float64 {
	if d <= 0.5 {
		return 1
	}
	return clamp01((1 - d) / 0.5)
}

func radialImage(size int, falloff func(float64) float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)+0.5-c, float64(y)+0.5-c) / c
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: uint8(255 * falloff(d))})
		}
	}
	return img
}
