package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/iburimskiy/powerflow-visualization/internal/logger"
	"github.com/iburimskiy/powerflow-visualization/internal/metrics"
)

// Source produces readings until ctx is cancelled or it fails for good.
type Source interface {
	Name() string
	Run(ctx context.Context, emit func(Readings)) error
}

// Manager runs one Source at a time and forwards its readings to a sink.
// Readings are delivered as they arrive; the sink sees the last write win.
type Manager struct {
	sink    func(Readings)
	log     *log.Logger
	metrics *metrics.Registry

	mu      sync.Mutex
	current string
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewManager creates a manager that delivers readings to sink.
func NewManager(sink func(Readings), l *log.Logger, m *metrics.Registry) *Manager {
	return &Manager{
		sink:    sink,
		log:     logger.Component(l, "feed"),
		metrics: m,
	}
}

// Switch stops the running source, waits for it to exit and starts src.
func (m *Manager) Switch(src Source) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()
	if src == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.current = src.Name()
	m.cancel = cancel
	m.done = done
	m.metrics.RecordFeedSwitch()
	m.log.Info("source started", "source", src.Name())

	go func() {
		err := src.Run(ctx, func(r Readings) {
			m.metrics.RecordFeedUpdate(src.Name())
			m.sink(r)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			m.metrics.RecordFeedError(src.Name())
			m.log.Error("source stopped", "source", src.Name(), "err", err)
		}
		close(done)

		// A source that exits on its own leaves the manager idle.
		m.mu.Lock()
		if m.done == done {
			cancel()
			m.current = ""
			m.cancel = nil
			m.done = nil
		}
		m.mu.Unlock()
	}()
}

// Current returns the name of the running source, or "" when idle.
func (m *Manager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Close stops the running source and waits for it.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Manager) stopLocked() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.log.Debug("source stopped", "source", m.current)
	m.cancel = nil
	m.done = nil
	m.current = ""
}
