package flow

import (
	"image/color"
	"strconv"
	"strings"
)

// Node names used by the built-in layouts and by PathsFromFlows.
const (
	NodeSolar   = "solar"
	NodeBattery = "battery"
	NodeHome    = "home"
	NodeGrid    = "grid"
	NodeVehicle = "vehicle"
)

// Point is either a normalized node position in [0,1]x[0,1] or a pixel
// coordinate, depending on where it is used.
type Point struct {
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
}

// Path is a directed flow edge between two named nodes.
type Path struct {
	From   string
	To     string
	Color  string // "rgb(r,g,b)"
	Active bool
	PowerW float64
}

// Key identifies the particle set belonging to a path.
func (p Path) Key() string {
	return p.From + "-" + p.To
}

var white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// ParseColor parses "rgb(r,g,b)" or "rgba(r,g,b,a)" with decimal components.
// Anything it can't read comes back as opaque white.
func ParseColor(s string) color.NRGBA {
	s = strings.TrimSpace(strings.ToLower(s))
	var body string
	switch {
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		body = s[len("rgba(") : len(s)-1]
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		body = s[len("rgb(") : len(s)-1]
	default:
		return white
	}

	parts := strings.Split(body, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return white
	}

	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return white
		}
		rgb[i] = uint8(v)
	}

	alpha := uint8(255)
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return white
		}
		alpha = uint8(a*255 + 0.5)
	}

	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: alpha}
}
