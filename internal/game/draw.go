package game

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/powerflow-visualization/internal/config"
	"github.com/iburimskiy/powerflow-visualization/internal/feed"
	"github.com/iburimskiy/powerflow-visualization/internal/flow"
)

const nodeRadius = 18

type palette struct {
	top, bottom color.NRGBA
	panel       color.NRGBA
	border      color.NRGBA
}

var (
	darkColors = palette{
		top:    color.NRGBA{R: 10, G: 14, B: 28, A: 255},
		bottom: color.NRGBA{R: 20, G: 26, B: 46, A: 255},
		panel:  color.NRGBA{R: 20, G: 25, B: 35, A: 200},
		border: color.NRGBA{R: 60, G: 70, B: 90, A: 255},
	}
	lightColors = palette{
		top:    color.NRGBA{R: 244, G: 246, B: 250, A: 255},
		bottom: color.NRGBA{R: 222, G: 228, B: 238, A: 255},
		panel:  color.NRGBA{R: 255, G: 255, B: 255, A: 220},
		border: color.NRGBA{R: 170, G: 180, B: 200, A: 255},
	}
)

func (g *Game) colors() palette {
	if g.renderer.Theme() == flow.ThemeLight {
		return lightColors
	}
	return darkColors
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.sprites == nil {
		g.sprites = newSpriteSet()
	}

	g.drawBackground(screen)
	g.drawFrame(screen)
	g.drawNodes(screen)
	g.drawHistoryBar(screen)
	g.drawButton(screen)
	g.drawStatus(screen)
}

func (g *Game) drawBackground(screen *ebiten.Image) {
	c := g.colors()
	const bands = 32
	h := float64(g.surfaceH) / bands
	for i := 0; i < bands; i++ {
		t := float64(i) / (bands - 1)
		band := lerpColor(c.top, c.bottom, t)
		vector.DrawFilledRect(screen, 0, float32(float64(i)*h), float32(g.surfaceW), float32(h+1), band, false)
	}
}

func (g *Game) drawFrame(screen *ebiten.Image) {
	for _, l := range g.frame.Lines {
		vector.StrokeLine(screen,
			float32(l.From.X), float32(l.From.Y), float32(l.To.X), float32(l.To.Y),
			float32(l.Width*g.scale), withAlpha(l.Color, l.Alpha), true)
	}

	blend := ebiten.BlendLighter
	if g.renderer.Theme() == flow.ThemeLight {
		blend = ebiten.BlendSourceOver
	}
	for _, s := range g.frame.Sprites {
		img := g.sprites.glow
		if s.Layer == flow.LayerCore {
			img = g.sprites.core
		}
		size := float64(img.Bounds().Dx())
		k := 2 * s.Radius * g.scale / size

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(-size/2, -size/2)
		op.GeoM.Scale(k, k)
		op.GeoM.Translate(s.Center.X, s.Center.Y)
		a := float32(s.Alpha)
		op.ColorScale.Scale(
			float32(s.Color.R)/255*a,
			float32(s.Color.G)/255*a,
			float32(s.Color.B)/255*a,
			a,
		)
		op.Blend = blend
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(img, op)
	}
}

func (g *Game) nodeColor(node string) color.NRGBA {
	switch node {
	case flow.NodeSolar:
		return flow.ParseColor(g.palette.Solar)
	case flow.NodeBattery:
		return flow.ParseColor(g.palette.Battery)
	case flow.NodeGrid:
		return flow.ParseColor(g.palette.Grid)
	case flow.NodeVehicle:
		return flow.ParseColor(g.palette.Vehicle)
	default:
		return flow.ParseColor(g.palette.Home)
	}
}

func nodeWatts(r feed.Readings, node string) *float64 {
	switch node {
	case flow.NodeSolar:
		return r.SolarW
	case flow.NodeBattery:
		return r.BatteryW
	case flow.NodeGrid:
		return r.GridW
	case flow.NodeVehicle:
		return r.VehicleW
	case flow.NodeHome:
		return r.HomeW
	}
	return nil
}

func (g *Game) drawNodes(screen *ebiten.Image) {
	readings, _ := g.latest.get()
	radius := nodeRadius * g.scale
	for _, node := range sortedNodes(g.positions) {
		p := g.positions[node]
		x := p.X * float64(g.surfaceW)
		y := p.Y * float64(g.surfaceH)
		c := g.nodeColor(node)

		vector.DrawFilledCircle(screen, float32(x), float32(y), float32(radius), withAlpha(c, 0.25), true)
		vector.StrokeCircle(screen, float32(x), float32(y), float32(radius), float32(2*g.scale), withAlpha(c, 0.9), true)

		label := node
		if w := nodeWatts(readings, node); w != nil {
			label += " " + formatWatts(feed.Value(w))
		}
		ebitenutil.DebugPrintAt(screen, label, int(x)-len(label)*3, int(y+radius)+4)
	}
}

// drawHistoryBar plots recent grid power: imports above the centre line in
// red, exports below it in green.
func (g *Game) drawHistoryBar(screen *ebiten.Image) {
	samples := g.history.Snapshot(g.cfg.Window.HistorySize)
	if len(samples) == 0 {
		return
	}
	c := g.colors()

	barHeight := config.BarHeight * g.scale
	margin := config.BarMargin * g.scale
	barX := margin
	barY := float64(g.surfaceH) - barHeight - margin
	barWidth := float64(g.surfaceW) - 2*margin
	segmentWidth := barWidth / float64(g.cfg.Window.HistorySize)
	centerY := barY + barHeight/2

	vector.DrawFilledRect(screen, float32(barX), float32(barY), float32(barWidth), float32(barHeight), c.panel, false)
	vector.StrokeRect(screen, float32(barX), float32(barY), float32(barWidth), float32(barHeight), 2, c.border, false)

	peak := 0.0
	for _, v := range samples {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak == 0 {
		peak = 1
	}

	// Newest sample sits at the right edge.
	offset := g.cfg.Window.HistorySize - len(samples)
	for i, v := range samples {
		level := clamp01(math.Abs(v) / peak)
		h := level * (barHeight/2 - 4)
		if h < 1 {
			h = 1
		}
		hue := 140.0
		y := centerY
		if v > 0 {
			hue = 0
			y = centerY - h
		}
		r, gv, b := hsvToRgb(hue, 0.7, 0.9)
		col := color.NRGBA{R: r, G: gv, B: b, A: uint8(120 + 135*level)}
		x := barX + float64(offset+i)*segmentWidth
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(math.Max(segmentWidth-1, 1)), float32(h), col, false)
	}

	vector.StrokeLine(screen, float32(barX), float32(centerY), float32(barX+barWidth), float32(centerY), 1, c.border, false)
	ebitenutil.DebugPrintAt(screen, "Grid import", int(barX)+4, int(barY)-15)
	ebitenutil.DebugPrintAt(screen, "peak "+formatWatts(peak), int(barX+barWidth)-80, int(barY)-15)
}

func (g *Game) buttonRect() rect {
	return rect{
		x: config.ButtonX * g.scale,
		y: config.ButtonY * g.scale,
		w: config.ButtonWidth * g.scale,
		h: config.ButtonHeight * g.scale,
	}
}

func (g *Game) drawButton(screen *ebiten.Image) {
	var bgColor color.Color
	if g.buttonPressed {
		bgColor = color.RGBA{R: 60, G: 80, B: 120, A: 255} // Pressed
	} else if g.buttonHovered {
		bgColor = color.RGBA{R: 80, G: 100, B: 140, A: 255} // Hovered
	} else {
		bgColor = color.RGBA{R: 100, G: 120, B: 160, A: 255} // Normal
	}

	b := g.buttonRect()
	vector.DrawFilledRect(screen, float32(b.x), float32(b.y), float32(b.w), float32(b.h), bgColor, false)
	borderColor := color.RGBA{R: 150, G: 170, B: 200, A: 255}
	vector.StrokeRect(screen, float32(b.x), float32(b.y), float32(b.w), float32(b.h), 2, borderColor, false)

	text := "Open Recording"
	textWidth := len(text) * 6 // debug font glyph width
	ebitenutil.DebugPrintAt(screen, text, int(b.x+(b.w-float64(textWidth))/2), int(b.y+(b.h-16)/2))
}

func (g *Game) statusLine(now time.Time) string {
	var parts []string
	source := g.feeds.Current()
	if source == "" {
		source = "no source"
	}
	parts = append(parts, "Source: "+source)

	if _, received := g.latest.get(); !received.IsZero() {
		parts = append(parts, "updated "+formatDuration(now.Sub(received))+" ago")
	} else {
		parts = append(parts, "waiting for data")
	}
	if g.paused {
		parts = append(parts, "paused")
	}
	parts = append(parts, fmt.Sprintf("theme %s, layout %s", g.renderer.Theme(), g.layoutNames[g.layoutIdx]))

	status := strings.Join(parts, " | ")
	if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	}
	return status
}

func (g *Game) drawStatus(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, g.statusLine(time.Now()), 12, 12)
}
