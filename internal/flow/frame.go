package flow

import (
	"image/color"
	"math"
)

// Theme selects the light or dark presentation of the glow layers.
type Theme int

const (
	ThemeDark Theme = iota
	ThemeLight
)

// ParseTheme maps "light" to ThemeLight and everything else to ThemeDark.
func ParseTheme(s string) Theme {
	if s == "light" {
		return ThemeLight
	}
	return ThemeDark
}

func (t Theme) String() string {
	if t == ThemeLight {
		return "light"
	}
	return "dark"
}

// Layer is one of the three concentric glow layers of a particle.
type Layer int

const (
	LayerOuter Layer = iota
	LayerMid
	LayerCore
)

// Line is a stroke between two node centres in pixel space.
type Line struct {
	From, To Point
	Color    color.NRGBA
	Alpha    float64
	Width    float64
}

// Sprite is one radial-gradient layer of a particle in pixel space.
type Sprite struct {
	Key    string
	Center Point
	Radius float64
	Color  color.NRGBA
	Alpha  float64
	Layer  Layer
}

// Frame is everything Step decided to draw for one frame, back to front.
type Frame struct {
	Width, Height float64
	Lines         []Line
	Sprites       []Sprite
}

// Empty reports whether the frame draws nothing.
func (f Frame) Empty() bool {
	return len(f.Lines) == 0 && len(f.Sprites) == 0
}

// SurfaceSize returns the pixel size of a drawing surface backing a container
// of the given logical size on a display with the given scale factor.
func SurfaceSize(containerW, containerH, scale float64) (int, int) {
	if scale <= 0 || math.IsNaN(scale) {
		scale = 1
	}
	w := int(math.Round(containerW * scale))
	h := int(math.Round(containerH * scale))
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}
