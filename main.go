package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/powerflow-visualization/internal/chime"
	"github.com/iburimskiy/powerflow-visualization/internal/config"
	"github.com/iburimskiy/powerflow-visualization/internal/feed"
	"github.com/iburimskiy/powerflow-visualization/internal/game"
	"github.com/iburimskiy/powerflow-visualization/internal/logger"
	"github.com/iburimskiy/powerflow-visualization/internal/metrics"
)

// overrides holds command line values that take precedence over the config
// file. Empty strings leave the file value alone.
type overrides struct {
	mode      string
	url       string
	recording string
	theme     string
	debug     bool
}

func (o overrides) apply(cfg *config.Config) {
	if o.mode != "" {
		cfg.Feed.Mode = o.mode
	}
	if o.url != "" {
		cfg.Feed.URL = o.url
	}
	if o.recording != "" {
		cfg.Feed.Recording = o.recording
		if o.mode == "" {
			cfg.Feed.Mode = config.ModeReplay
		}
	}
	if o.theme != "" {
		cfg.Flow.Theme = o.theme
	}
	if o.debug {
		cfg.Log.Debug = true
	}
}

// newSource builds the feed source selected by cfg. It returns nil in "none"
// mode.
func newSource(cfg *config.Config, l *log.Logger, m *metrics.Registry) feed.Source {
	switch cfg.Feed.Mode {
	case config.ModePoll:
		return feed.NewPoller(cfg.Feed.URL, cfg.PollInterval(), l, m)
	case config.ModeStream:
		return feed.NewStream(cfg.Feed.URL, cfg.RedialDelay(), l, m)
	case config.ModeReplay:
		return feed.NewReplay(cfg.Feed.Recording, cfg.ReplayInterval())
	}
	return nil
}

func serveMetrics(addr string, m *metrics.Registry, l *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	l.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		l.Error("metrics listener stopped", "err", err)
	}
}

func main() {
	configPath := flag.String("config", config.ConfigPath(), "path to config.toml")
	var o overrides
	flag.StringVar(&o.mode, "mode", "", "feed mode: poll, stream, replay or none")
	flag.StringVar(&o.url, "url", "", "status endpoint (poll) or websocket url (stream)")
	flag.StringVar(&o.recording, "recording", "", "JSON-lines recording to replay")
	flag.StringVar(&o.theme, "theme", "", "color theme: dark or light")
	flag.BoolVar(&o.debug, "debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.LoadFromPath(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	o.apply(cfg)

	l := logger.New(logger.Options{Debug: cfg.Log.Debug})
	if err := cfg.Validate(); err != nil {
		l.Fatal("invalid config", "path", *configPath, "err", err)
	}

	m := metrics.NewRegistry()
	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics.Addr, m, l)
	}

	var c *chime.Chime
	if cfg.Audio.Chime {
		c, err = chime.New(cfg.Audio.SampleRate, cfg.Audio.FrequencyHz, l)
		if err != nil {
			l.Warn("chime disabled", "err", err)
			c = nil
		}
	}

	g := game.New(game.Options{
		Config:  cfg,
		Logger:  l,
		Metrics: m,
		Chime:   c,
	})
	g.Start(newSource(cfg, l, m))
	defer g.Close()

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		l.Error("game stopped", "err", err)
	}
}
