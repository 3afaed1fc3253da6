package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/powerflow-visualization/internal/config"
	"github.com/iburimskiy/powerflow-visualization/internal/feed"
)

func TestOverridesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	overrides{}.apply(cfg)
	assert.Equal(t, config.DefaultConfig(), cfg, "empty overrides change nothing")

	overrides{recording: "trace.jsonl", theme: "light", debug: true}.apply(cfg)
	assert.Equal(t, config.ModeReplay, cfg.Feed.Mode)
	assert.Equal(t, "trace.jsonl", cfg.Feed.Recording)
	assert.Equal(t, "light", cfg.Flow.Theme)
	assert.True(t, cfg.Log.Debug)

	cfg = config.DefaultConfig()
	overrides{mode: "stream", url: "ws://hub:8080/ws", recording: "x.jsonl"}.apply(cfg)
	assert.Equal(t, config.ModeStream, cfg.Feed.Mode, "explicit mode wins over recording")
	assert.Equal(t, "ws://hub:8080/ws", cfg.Feed.URL)
	require.NoError(t, cfg.Validate())
}

func TestNewSource(t *testing.T) {
	tests := []struct {
		mode string
		name string
	}{
		{config.ModePoll, "poll"},
		{config.ModeStream, "stream"},
		{config.ModeReplay, "replay"},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Feed.Mode = tt.mode
			src := newSource(cfg, nil, nil)
			require.NotNil(t, src)
			assert.Equal(t, tt.name, src.Name())
		})
	}

	cfg := config.DefaultConfig()
	cfg.Feed.Mode = config.ModeNone
	assert.Nil(t, newSource(cfg, nil, nil))
}

func TestNewSource_UsesConfiguredIntervals(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Feed.PollInterval = "250ms"
	p, ok := newSource(cfg, nil, nil).(*feed.Poller)
	require.True(t, ok)
	assert.Equal(t, 250*time.Millisecond, p.Interval)

	cfg.Feed.Mode = config.ModeReplay
	cfg.Feed.Recording = "trace.jsonl"
	cfg.Feed.ReplayInterval = "2s"
	r, ok := newSource(cfg, nil, nil).(*feed.Replay)
	require.True(t, ok)
	assert.Equal(t, "trace.jsonl", r.Path)
	assert.Equal(t, 2*time.Second, r.Interval)
}
