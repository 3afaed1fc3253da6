// Package game hosts the power-flow renderer in an ebiten window.
package game

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/powerflow-visualization/internal/chime"
	"github.com/iburimskiy/powerflow-visualization/internal/config"
	"github.com/iburimskiy/powerflow-visualization/internal/feed"
	"github.com/iburimskiy/powerflow-visualization/internal/flow"
	"github.com/iburimskiy/powerflow-visualization/internal/logger"
	"github.com/iburimskiy/powerflow-visualization/internal/metrics"
)

// Options wire a Game to its collaborators.
type Options struct {
	Config  *config.Config
	Logger  *log.Logger
	Metrics *metrics.Registry
	Chime   *chime.Chime // optional
}

// latest holds the most recent readings for the status line and node labels.
type latest struct {
	mu       sync.RWMutex
	readings feed.Readings
	received time.Time
}

func (l *latest) set(r feed.Readings) {
	l.mu.Lock()
	l.readings = r
	l.received = time.Now()
	l.mu.Unlock()
}

func (l *latest) get() (feed.Readings, time.Time) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.readings, l.received
}

// Game implements ebiten.Game.
type Game struct {
	cfg      *config.Config
	log      *log.Logger
	metrics  *metrics.Registry
	chime    *chime.Chime
	renderer *flow.Renderer
	feeds    *feed.Manager
	history  *feed.History
	latest   latest

	// layout
	layouts     *flow.Layouts
	layoutNames []string
	layoutIdx   int
	positions   map[string]flow.Point
	palette     flow.Palette

	// surface
	surfaceW, surfaceH int
	scale              float64

	// viz
	frame   flow.Frame
	sprites *spriteSet

	// button state
	buttonHovered bool
	buttonPressed bool

	// state
	paused  bool
	lastErr error

	// file picker, replaced in tests
	pickRecording func() (string, error)
}

// New creates a game with no data source running.
func New(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	l := logger.Component(opts.Logger, "game")

	g := &Game{
		cfg:           cfg,
		log:           l,
		metrics:       opts.Metrics,
		chime:         opts.Chime,
		renderer:      flow.NewRenderer(cfg.RendererOptions()),
		history:       feed.NewHistory(cfg.Window.HistorySize),
		layouts:       cfg.NodeLayouts(),
		palette:       cfg.Palette(),
		scale:         1,
		pickRecording: selectRecordingFile,
	}
	g.feeds = feed.NewManager(g.OnReadings, opts.Logger, opts.Metrics)

	g.layoutNames = g.layouts.Names()
	for i, name := range g.layoutNames {
		if name == cfg.Flow.Layout {
			g.layoutIdx = i
		}
	}
	g.applyLayout()
	return g
}

// Start switches the game to src. A nil source leaves the game idle.
func (g *Game) Start(src feed.Source) {
	g.feeds.Switch(src)
}

// Close stops the data source and releases particle state.
func (g *Game) Close() {
	g.feeds.Close()
	g.renderer.Close()
}

// OnReadings turns a reading into paths for the renderer. It is called from
// the feed goroutine.
func (g *Game) OnReadings(r feed.Readings) {
	flows := r.Flows()
	g.renderer.SetPaths(flow.PathsFromFlows(flows, g.palette, g.cfg.Flow.ThresholdW))
	g.history.Record(flows.GridW)
	if g.chime != nil {
		g.chime.Observe(flows.GridW >= g.cfg.Flow.ThresholdW && flows.GridW > 0)
	}
	g.latest.set(r)
}

func (g *Game) applyLayout() {
	name := g.layoutNames[g.layoutIdx]
	positions, _ := g.layouts.Get(name)
	g.positions = positions
	g.renderer.SetPositions(positions)
	g.log.Debug("layout applied", "layout", name)
}

func (g *Game) cycleLayout() {
	g.layoutIdx = (g.layoutIdx + 1) % len(g.layoutNames)
	g.applyLayout()
}

func (g *Game) toggleTheme() {
	if g.renderer.Theme() == flow.ThemeDark {
		g.renderer.SetTheme(flow.ThemeLight)
	} else {
		g.renderer.SetTheme(flow.ThemeDark)
	}
}

func (g *Game) Update() error {
	// Handle button interactions
	mouseX, mouseY := ebiten.CursorPosition()
	g.buttonHovered = g.buttonRect().contains(float64(mouseX), float64(mouseY))

	if g.buttonHovered && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.buttonPressed = true
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if g.buttonPressed && g.buttonHovered {
			if err := g.openRecordingDialog(); err != nil {
				g.lastErr = err
				g.log.Error("opening recording", "err", err)
			}
		}
		g.buttonPressed = false
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.toggleTheme()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		g.cycleLayout()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	if g.paused {
		return nil
	}
	g.step()
	return nil
}

// step advances the animation by one frame on the current surface.
func (g *Game) step() {
	g.frame = g.renderer.Step(float64(g.surfaceW), float64(g.surfaceH))
	g.metrics.RecordFrame(g.renderer.ParticleCount(), g.renderer.ActivePaths())
}

// Layout sizes the drawing surface to the window in device pixels.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.resize(outsideWidth, outsideHeight, ebiten.Monitor().DeviceScaleFactor())
	return g.surfaceW, g.surfaceH
}

func (g *Game) resize(w, h int, scale float64) {
	sw, sh := flow.SurfaceSize(float64(w), float64(h), scale)
	if sw != g.surfaceW || sh != g.surfaceH {
		g.log.Debug("surface resized", "width", sw, "height", sh, "scale", scale)
	}
	g.surfaceW, g.surfaceH = sw, sh
	if scale > 0 {
		g.scale = scale
	}
}

func selectRecordingFile() (string, error) {
	return zenity.SelectFile(
		zenity.Title("Open Power Recording"),
		zenity.FileFilters{{
			Name:     "Recordings",
			Patterns: []string{"*.jsonl", "*.json"},
		}},
	)
}

func (g *Game) openRecordingDialog() error {
	filename, err := g.pickRecording()
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}
	return g.openRecording(filename)
}

// openRecording checks that path holds a usable recording and replays it in
// place of the current source.
func (g *Game) openRecording(path string) error {
	frames, err := feed.ReadRecording(path)
	if err != nil {
		return err
	}

	g.log.Info("replaying recording", "path", path, "frames", len(frames))
	g.lastErr = nil
	g.feeds.Switch(feed.NewReplayFrames(path, frames, g.cfg.ReplayInterval()))
	return nil
}
