package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/powerflow-visualization/internal/logger"
	"github.com/iburimskiy/powerflow-visualization/internal/metrics"
)

// fakeSource emits one reading and then blocks until cancelled or fails.
type fakeSource struct {
	name    string
	watts   float64
	fail    error
	stopped chan struct{}
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Run(ctx context.Context, emit func(Readings)) error {
	defer close(f.stopped)
	emit(Readings{GridW: Watts(f.watts)})
	if f.fail != nil {
		return f.fail
	}
	<-ctx.Done()
	return ctx.Err()
}

func newFake(name string, w float64) *fakeSource {
	return &fakeSource{name: name, watts: w, stopped: make(chan struct{})}
}

type sink struct {
	mu   sync.Mutex
	last Readings
	n    int
}

func (s *sink) put(r Readings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = r
	s.n++
}

func (s *sink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

func TestManager_SwitchStopsPrevious(t *testing.T) {
	var out sink
	m := metrics.NewRegistry()
	mgr := NewManager(out.put, logger.Discard(), m)

	first := newFake("poll", 100)
	mgr.Switch(first)
	assert.Equal(t, "poll", mgr.Current())

	second := newFake("replay", 200)
	mgr.Switch(second)

	select {
	case <-first.stopped:
	default:
		t.Fatal("first source still running after switch")
	}
	assert.Equal(t, "replay", mgr.Current())

	require.Eventually(t, func() bool { return out.count() == 2 }, time.Second, time.Millisecond)
	mgr.Close()
	<-second.stopped
	assert.Equal(t, "", mgr.Current())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FeedSwitchesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedUpdatesTotal.WithLabelValues("poll")))
	assert.Equal(t, 200.0, Value(out.last.GridW))
}

func TestManager_SourceFailureIsCounted(t *testing.T) {
	var out sink
	m := metrics.NewRegistry()
	mgr := NewManager(out.put, logger.Discard(), m)

	src := newFake("stream", 1)
	src.fail = errors.New("connection refused")
	mgr.Switch(src)
	<-src.stopped

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.FeedErrorsTotal.WithLabelValues("stream")) == 1
	}, time.Second, time.Millisecond)
	mgr.Close()
}

func TestManager_FinishedSourceIsCleared(t *testing.T) {
	mgr := NewManager(func(Readings) {}, logger.Discard(), nil)
	src := newFake("stream", 1)
	src.fail = errors.New("connection refused")
	mgr.Switch(src)
	<-src.stopped

	require.Eventually(t, func() bool { return mgr.Current() == "" }, time.Second, time.Millisecond)

	next := newFake("poll", 2)
	mgr.Switch(next)
	assert.Equal(t, "poll", mgr.Current())
	mgr.Close()
	<-next.stopped
	assert.Equal(t, "", mgr.Current())
}

func TestManager_SwitchToNilIdles(t *testing.T) {
	mgr := NewManager(func(Readings) {}, logger.Discard(), nil)
	src := newFake("poll", 1)
	mgr.Switch(src)
	mgr.Switch(nil)

	<-src.stopped
	assert.Equal(t, "", mgr.Current())
	mgr.Close()
}
