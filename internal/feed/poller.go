package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/iburimskiy/powerflow-visualization/internal/logger"
	"github.com/iburimskiy/powerflow-visualization/internal/metrics"
)

// Poller fetches Readings as JSON from a status endpoint on a fixed interval.
// A failed fetch is logged and the next tick simply tries again.
type Poller struct {
	URL      string
	Interval time.Duration
	Client   *http.Client

	log     *log.Logger
	metrics *metrics.Registry
}

// NewPoller creates a poller for url.
func NewPoller(url string, interval time.Duration, l *log.Logger, m *metrics.Registry) *Poller {
	return &Poller{
		URL:      url,
		Interval: interval,
		Client:   &http.Client{Timeout: 10 * time.Second},
		log:      logger.Component(l, "poller"),
		metrics:  m,
	}
}

func (p *Poller) Name() string { return "poll" }

// Run polls immediately and then once per Interval until ctx is done.
func (p *Poller) Run(ctx context.Context, emit func(Readings)) error {
	if p.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", p.Interval)
	}
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		r, err := p.Fetch(ctx)
		switch {
		case err == nil:
			emit(r)
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			p.metrics.RecordFeedError(p.Name())
			p.log.Warn("poll failed", "url", p.URL, "err", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Fetch performs a single request.
func (p *Poller) Fetch(ctx context.Context) (Readings, error) {
	var r Readings
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return r, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return r, fmt.Errorf("fetching %s: %w", p.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return r, fmt.Errorf("fetching %s: unexpected status %d", p.URL, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return r, fmt.Errorf("decoding status: %w", err)
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	return r, nil
}
