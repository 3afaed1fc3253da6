// Package metrics exposes renderer and feed counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all powerflow metrics. A nil *Registry is valid and records
// nothing.
type Registry struct {
	registry *prometheus.Registry

	FramesTotal       prometheus.Counter
	ParticlesLive     prometheus.Gauge
	ActivePaths       prometheus.Gauge
	FeedUpdatesTotal  *prometheus.CounterVec
	FeedErrorsTotal   *prometheus.CounterVec
	FeedSwitchesTotal prometheus.Counter
}

// NewRegistry creates a registry with every metric registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{registry: reg}

	r.FramesTotal = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "powerflow_frames_total",
		Help: "Total number of animation frames stepped",
	})
	r.ParticlesLive = promauto.With(reg).NewGauge(prometheus.GaugeOpts{
		Name: "powerflow_particles",
		Help: "Particles alive after the last frame",
	})
	r.ActivePaths = promauto.With(reg).NewGauge(prometheus.GaugeOpts{
		Name: "powerflow_active_paths",
		Help: "Paths holding particles after the last frame",
	})
	r.FeedUpdatesTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "powerflow_feed_updates_total",
			Help: "Power readings received, by source",
		},
		[]string{"source"},
	)
	r.FeedErrorsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "powerflow_feed_errors_total",
			Help: "Failed fetches or dropped connections, by source",
		},
		[]string{"source"},
	)
	r.FeedSwitchesTotal = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "powerflow_feed_switches_total",
		Help: "Number of times the active data source changed",
	})
	return r
}

// RecordFrame records one stepped frame and the particle state it left.
func (r *Registry) RecordFrame(particles, activePaths int) {
	if r == nil {
		return
	}
	r.FramesTotal.Inc()
	r.ParticlesLive.Set(float64(particles))
	r.ActivePaths.Set(float64(activePaths))
}

// RecordFeedUpdate counts a reading delivered by source.
func (r *Registry) RecordFeedUpdate(source string) {
	if r == nil {
		return
	}
	r.FeedUpdatesTotal.WithLabelValues(source).Inc()
}

// RecordFeedError counts a failure in source.
func (r *Registry) RecordFeedError(source string) {
	if r == nil {
		return
	}
	r.FeedErrorsTotal.WithLabelValues(source).Inc()
}

// RecordFeedSwitch counts a change of data source.
func (r *Registry) RecordFeedSwitch() {
	if r == nil {
		return
	}
	r.FeedSwitchesTotal.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
