package game

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ncruces/zenity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/powerflow-visualization/internal/config"
	"github.com/iburimskiy/powerflow-visualization/internal/feed"
	"github.com/iburimskiy/powerflow-visualization/internal/flow"
	"github.com/iburimskiy/powerflow-visualization/internal/metrics"
)

func newTestGame(t *testing.T) *Game {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Feed.ReplayInterval = "10ms"
	g := New(Options{Config: cfg, Metrics: metrics.NewRegistry()})
	g.resize(400, 300, 1)
	t.Cleanup(g.Close)
	return g
}

func TestGame_ReadingsDriveParticles(t *testing.T) {
	g := newTestGame(t)

	g.OnReadings(feed.Readings{
		SolarW: feed.Watts(3000),
		HomeW:  feed.Watts(1000),
		GridW:  feed.Watts(-2000),
	})
	g.step()

	assert.NotEmpty(t, g.frame.Sprites)
	assert.Equal(t, 2, g.renderer.ActivePaths())
	assert.LessOrEqual(t, len(g.frame.Sprites), 3*g.renderer.ParticleCount())
	assert.Equal(t, []float64{-2000}, g.history.Snapshot(10))

	readings, received := g.latest.get()
	assert.Equal(t, 3000.0, feed.Value(readings.SolarW))
	assert.False(t, received.IsZero())
}

func TestGame_CycleLayout(t *testing.T) {
	g := newTestGame(t)
	require.Equal(t, []string{"compact", "default"}, g.layoutNames)
	assert.Equal(t, "default", g.layoutNames[g.layoutIdx])

	g.cycleLayout()
	assert.Equal(t, "compact", g.layoutNames[g.layoutIdx])
	compact, _ := g.layouts.Get("compact")
	assert.Equal(t, compact, g.positions)

	g.cycleLayout()
	assert.Equal(t, "default", g.layoutNames[g.layoutIdx])
}

func TestGame_CustomLayoutFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Flow.Layout = "wide"
	cfg.Layouts["wide"] = map[string]flow.Point{
		flow.NodeSolar: {X: 0.1, Y: 0.5},
		flow.NodeHome:  {X: 0.9, Y: 0.5},
	}
	g := New(Options{Config: cfg})
	t.Cleanup(g.Close)

	assert.Equal(t, "wide", g.layoutNames[g.layoutIdx])
	assert.Len(t, g.positions, 2)
}

func TestGame_ToggleTheme(t *testing.T) {
	g := newTestGame(t)
	assert.Equal(t, flow.ThemeDark, g.renderer.Theme())
	assert.Equal(t, darkColors, g.colors())

	g.toggleTheme()
	assert.Equal(t, flow.ThemeLight, g.renderer.Theme())
	assert.Equal(t, lightColors, g.colors())

	g.toggleTheme()
	assert.Equal(t, flow.ThemeDark, g.renderer.Theme())
}

func TestGame_Resize(t *testing.T) {
	g := newTestGame(t)

	g.resize(800, 600, 2)
	assert.Equal(t, 1600, g.surfaceW)
	assert.Equal(t, 1200, g.surfaceH)
	assert.Equal(t, 2.0, g.scale)
	assert.Equal(t, rect{x: 40, y: 100, w: 300, h: 80}, g.buttonRect())

	g.resize(800, 600, 0)
	assert.Equal(t, 800, g.surfaceW)
	assert.Equal(t, 2.0, g.scale, "invalid scale keeps the last good one")
}

func writeRecording(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestGame_OpenRecording(t *testing.T) {
	g := newTestGame(t)
	path := writeRecording(t, `{"solar_power": 2500, "home_power": 2500}`+"\n")

	require.NoError(t, g.openRecording(path))
	assert.Equal(t, "replay", g.feeds.Current())

	assert.Eventually(t, func() bool {
		r, _ := g.latest.get()
		return feed.Value(r.SolarW) == 2500
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGame_OpenRecording_UsesLoadedFrames(t *testing.T) {
	g := newTestGame(t)
	path := writeRecording(t, `{"grid_power": 1800, "home_power": 1800}`+"\n")

	require.NoError(t, g.openRecording(path))
	require.NoError(t, os.Remove(path))

	assert.Eventually(t, func() bool {
		r, _ := g.latest.get()
		return feed.Value(r.GridW) == 1800
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "replay", g.feeds.Current())
}

func TestGame_OpenRecording_Invalid(t *testing.T) {
	g := newTestGame(t)

	err := g.openRecording(writeRecording(t, "# only a comment\n"))
	assert.ErrorIs(t, err, feed.ErrEmptyRecording)
	assert.Empty(t, g.feeds.Current())

	err = g.openRecording(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}

func TestGame_OpenRecordingDialog(t *testing.T) {
	g := newTestGame(t)

	g.pickRecording = func() (string, error) { return "", zenity.ErrCanceled }
	assert.NoError(t, g.openRecordingDialog())
	assert.Empty(t, g.feeds.Current())

	boom := errors.New("no display")
	g.pickRecording = func() (string, error) { return "", boom }
	assert.ErrorIs(t, g.openRecordingDialog(), boom)

	path := writeRecording(t, `{"grid_power": 400, "home_power": 400}`+"\n")
	g.pickRecording = func() (string, error) { return path, nil }
	require.NoError(t, g.openRecordingDialog())
	assert.Equal(t, "replay", g.feeds.Current())
}

func TestGame_StatusLine(t *testing.T) {
	g := newTestGame(t)
	now := time.Now()

	assert.Equal(t, "Source: no source | waiting for data | theme dark, layout default", g.statusLine(now))

	g.OnReadings(feed.Readings{HomeW: feed.Watts(100)})
	g.paused = true
	g.lastErr = errors.New("bad file")
	_, received := g.latest.get()

	assert.Equal(t,
		"Source: no source | updated 01:05 ago | paused | theme dark, layout default | Error: bad file",
		g.statusLine(received.Add(65*time.Second)))
}
