// Package config handles powerflow configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/iburimskiy/powerflow-visualization/internal/flow"
)

const (
	// Button dimensions
	ButtonWidth  = 150
	ButtonHeight = 40
	ButtonX      = 20
	ButtonY      = 50

	// History bar
	BarHeight = 60
	BarMargin = 20
)

// Feed modes
const (
	ModePoll   = "poll"
	ModeStream = "stream"
	ModeReplay = "replay"
	ModeNone   = "none"
)

var validate = validator.New()

// Config represents powerflow configuration.
type Config struct {
	Window  WindowConfig                     `toml:"window"`
	Feed    FeedConfig                       `toml:"feed"`
	Flow    FlowConfig                       `toml:"flow"`
	Colors  ColorsConfig                     `toml:"colors"`
	Audio   AudioConfig                      `toml:"audio"`
	Metrics MetricsConfig                    `toml:"metrics"`
	Log     LogConfig                        `toml:"log"`
	Layouts map[string]map[string]flow.Point `toml:"layouts"`
}

// WindowConfig contains window settings.
type WindowConfig struct {
	Width  int    `toml:"width" validate:"min=200"`
	Height int    `toml:"height" validate:"min=150"`
	Title  string `toml:"title"`

	// Number of grid power samples kept for the history bar
	HistorySize int `toml:"history_size" validate:"min=8,max=4096"`
}

// FeedConfig selects where power readings come from.
type FeedConfig struct {
	// "poll", "stream", "replay" or "none"
	Mode string `toml:"mode" validate:"oneof=poll stream replay none"`

	// Status endpoint for poll, ws:// url for stream
	URL string `toml:"url"`

	// Durations in time.ParseDuration syntax
	PollInterval   string `toml:"poll_interval" validate:"required"`
	Redial         string `toml:"redial"`
	ReplayInterval string `toml:"replay_interval" validate:"required"`

	// JSON-lines recording used in replay mode
	Recording string `toml:"recording"`
}

// FlowConfig tunes the particle animation.
type FlowConfig struct {
	// Color theme: dark, light
	Theme string `toml:"theme" validate:"oneof=dark light"`

	// Node layout name, built-in or from [layouts]
	Layout string `toml:"layout" validate:"required"`

	ThresholdW   float64 `toml:"threshold_w" validate:"gte=0"`
	MinCount     int     `toml:"min_count" validate:"min=1"`
	MaxCount     int     `toml:"max_count" validate:"gtefield=MinCount,max=200"`
	CountScale   float64 `toml:"count_scale" validate:"gt=0"`
	Exponent     float64 `toml:"exponent" validate:"gt=0,lte=1"`
	SaturationW  float64 `toml:"saturation_w" validate:"gt=0"`
	SpeedMin     float64 `toml:"speed_min" validate:"gt=0"`
	SpeedMax     float64 `toml:"speed_max" validate:"gtefield=SpeedMin,lt=0.5"`
	SizeMin      float64 `toml:"size_min" validate:"gt=0"`
	SizeMax      float64 `toml:"size_max" validate:"gtefield=SizeMin"`
	FadeZone     float64 `toml:"fade_zone" validate:"gt=0,lte=0.5"`
	MaxOvershoot int     `toml:"max_overshoot" validate:"min=1"`
}

// ColorsConfig assigns "rgb(r,g,b)" colours to source nodes.
type ColorsConfig struct {
	Solar   string `toml:"solar"`
	Battery string `toml:"battery"`
	Grid    string `toml:"grid"`
	Home    string `toml:"home"`
	Vehicle string `toml:"vehicle"`
}

// AudioConfig controls the grid-import chime.
type AudioConfig struct {
	Chime       bool    `toml:"chime"`
	FrequencyHz float64 `toml:"frequency_hz" validate:"gt=0,lt=20000"`
	SampleRate  int     `toml:"sample_rate" validate:"min=8000"`
}

// MetricsConfig controls the Prometheus listener. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Debug bool `toml:"debug"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	curve := flow.DefaultCurve()
	opts := flow.DefaultOptions()
	palette := flow.DefaultPalette()
	return &Config{
		Window: WindowConfig{
			Width:       1024,
			Height:      640,
			Title:       "Power Flow - Space: pause, T: theme, L: layout, Esc/Q: quit",
			HistorySize: 240,
		},
		Feed: FeedConfig{
			Mode:           ModePoll,
			URL:            "http://localhost:8080/api/status",
			PollInterval:   "5s",
			Redial:         "5s",
			ReplayInterval: "1s",
		},
		Flow: FlowConfig{
			Theme:        "dark",
			Layout:       "default",
			ThresholdW:   opts.ThresholdW,
			MinCount:     curve.MinCount,
			MaxCount:     curve.MaxCount,
			CountScale:   curve.CountScale,
			Exponent:     curve.Exponent,
			SaturationW:  curve.SaturationW,
			SpeedMin:     curve.SpeedMin,
			SpeedMax:     curve.SpeedMax,
			SizeMin:      curve.SizeMin,
			SizeMax:      curve.SizeMax,
			FadeZone:     opts.FadeZone,
			MaxOvershoot: opts.MaxOvershoot,
		},
		Colors: ColorsConfig{
			Solar:   palette.Solar,
			Battery: palette.Battery,
			Grid:    palette.Grid,
			Home:    palette.Home,
			Vehicle: palette.Vehicle,
		},
		Audio: AudioConfig{
			Chime:       false,
			FrequencyHz: 880,
			SampleRate:  44100,
		},
		Layouts: map[string]map[string]flow.Point{},
	}
}

// ConfigPath returns the path to the config file.
// Uses ~/.config/powerflow/config.toml (XDG style) on all Unix systems.
func ConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "powerflow", "config.toml")
	}
	home := os.Getenv("HOME")
	if home != "" {
		return filepath.Join(home, ".config", "powerflow", "config.toml")
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "powerflow", "config.toml")
	}
	return filepath.Join(configDir, "powerflow", "config.toml")
}

// Load loads configuration from the config file.
func Load() (*Config, error) {
	return LoadFromPath(ConfigPath())
}

// LoadFromPath loads configuration from a specific path. A missing file
// yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	// go-toml/v2 only overwrites fields present in the file.
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks struct constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}

	var problems []string
	for name, value := range map[string]string{
		"feed.poll_interval":   c.Feed.PollInterval,
		"feed.replay_interval": c.Feed.ReplayInterval,
	} {
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			problems = append(problems, fmt.Sprintf("%s: %q is not a positive duration", name, value))
		}
	}
	if c.Feed.Redial != "" {
		if _, err := time.ParseDuration(c.Feed.Redial); err != nil {
			problems = append(problems, fmt.Sprintf("feed.redial: %q is not a duration", c.Feed.Redial))
		}
	}
	if (c.Feed.Mode == ModePoll || c.Feed.Mode == ModeStream) && c.Feed.URL == "" {
		problems = append(problems, fmt.Sprintf("feed.url: required in %s mode", c.Feed.Mode))
	}
	if c.Feed.Mode == ModeStream && !strings.HasPrefix(c.Feed.URL, "ws://") && !strings.HasPrefix(c.Feed.URL, "wss://") {
		problems = append(problems, "feed.url: stream mode needs a ws:// or wss:// url")
	}
	if c.Feed.Mode == ModeReplay && c.Feed.Recording == "" {
		problems = append(problems, "feed.recording: required in replay mode")
	}
	if _, ok := c.NodeLayouts().Get(c.Flow.Layout); !ok {
		problems = append(problems, fmt.Sprintf("flow.layout: unknown layout %q", c.Flow.Layout))
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", e.Namespace(), e.Tag(), e.Param(), e.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// PollInterval returns the parsed poll interval.
func (c *Config) PollInterval() time.Duration {
	return duration(c.Feed.PollInterval, 5*time.Second)
}

// RedialDelay returns the parsed stream redial delay. Zero disables redial.
func (c *Config) RedialDelay() time.Duration {
	return duration(c.Feed.Redial, 0)
}

// ReplayInterval returns the parsed replay interval.
func (c *Config) ReplayInterval() time.Duration {
	return duration(c.Feed.ReplayInterval, time.Second)
}

// RendererOptions builds renderer options from the flow settings.
func (c *Config) RendererOptions() flow.Options {
	f := c.Flow
	return flow.Options{
		Curve: flow.Curve{
			MinCount:    f.MinCount,
			MaxCount:    f.MaxCount,
			CountScale:  f.CountScale,
			Exponent:    f.Exponent,
			SaturationW: f.SaturationW,
			SpeedMin:    f.SpeedMin,
			SpeedMax:    f.SpeedMax,
			SizeMin:     f.SizeMin,
			SizeMax:     f.SizeMax,
		},
		Theme:        flow.ParseTheme(f.Theme),
		ThresholdW:   f.ThresholdW,
		FadeZone:     f.FadeZone,
		MaxOvershoot: f.MaxOvershoot,
	}
}

// Palette returns the node colours.
func (c *Config) Palette() flow.Palette {
	return flow.Palette{
		Solar:   c.Colors.Solar,
		Battery: c.Colors.Battery,
		Grid:    c.Colors.Grid,
		Home:    c.Colors.Home,
		Vehicle: c.Colors.Vehicle,
	}
}

// NodeLayouts returns the built-in layouts with [layouts] applied on top.
func (c *Config) NodeLayouts() *flow.Layouts {
	l := flow.NewLayouts()
	for name, positions := range c.Layouts {
		l.Override(name, positions)
	}
	return l
}
