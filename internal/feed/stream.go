package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/iburimskiy/powerflow-visualization/internal/logger"
	"github.com/iburimskiy/powerflow-visualization/internal/metrics"
)

// Stream reads pushed readings from a WebSocket. Partial updates are merged
// into the last known readings before being emitted. A dropped connection is
// redialled after a fixed delay.
type Stream struct {
	URL    string
	Redial time.Duration
	Dialer *websocket.Dialer

	log     *log.Logger
	metrics *metrics.Registry
}

// NewStream creates a stream client for a ws:// or wss:// url.
func NewStream(url string, redial time.Duration, l *log.Logger, m *metrics.Registry) *Stream {
	return &Stream{
		URL:     url,
		Redial:  redial,
		Dialer:  websocket.DefaultDialer,
		log:     logger.Component(l, "stream"),
		metrics: m,
	}
}

func (s *Stream) Name() string { return "stream" }

// Run keeps a connection open until ctx is done.
func (s *Stream) Run(ctx context.Context, emit func(Readings)) error {
	var last Readings
	for {
		err := s.session(ctx, &last, emit)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.metrics.RecordFeedError(s.Name())
		s.log.Warn("stream dropped", "url", s.URL, "err", err, "redial", s.Redial)
		if s.Redial <= 0 {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.Redial):
		}
	}
}

func (s *Stream) session(ctx context.Context, last *Readings, emit func(Readings)) error {
	conn, _, err := s.Dialer.DialContext(ctx, s.URL, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", s.URL, err)
	}
	defer conn.Close()
	s.log.Info("stream connected", "url", s.URL)

	// Unblock ReadMessage when ctx is cancelled.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("reading: %w", err)
		}
		update, ok, err := decodeMessage(data)
		if err != nil {
			s.log.Debug("skipping message", "err", err)
			continue
		}
		if !ok {
			continue
		}
		*last = last.Merge(update)
		if update.Timestamp.IsZero() {
			last.Timestamp = time.Now()
		}
		emit(*last)
	}
}
