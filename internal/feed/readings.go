// Package feed supplies power readings to the visualizer from a polled JSON
// endpoint, a WebSocket stream or a recorded trace.
package feed

import (
	"math"
	"time"

	"github.com/iburimskiy/powerflow-visualization/internal/flow"
)

// Readings is one snapshot of node power in watts. Any field may be missing.
// Battery is positive while discharging, Grid is positive while importing.
type Readings struct {
	Timestamp time.Time `json:"timestamp"`
	SolarW    *float64  `json:"solar_power,omitempty"`
	BatteryW  *float64  `json:"battery_power,omitempty"`
	GridW     *float64  `json:"grid_power,omitempty"`
	HomeW     *float64  `json:"home_power,omitempty"`
	VehicleW  *float64  `json:"vehicle_power,omitempty"`
}

// Value dereferences a reading, treating missing and non-finite values as 0.
func Value(p *float64) float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0
	}
	return *p
}

// Watts returns a pointer to w, for building Readings by hand.
func Watts(w float64) *float64 {
	return &w
}

// Merge returns r with every field present in o overriding it.
func (r Readings) Merge(o Readings) Readings {
	if !o.Timestamp.IsZero() {
		r.Timestamp = o.Timestamp
	}
	if o.SolarW != nil {
		r.SolarW = o.SolarW
	}
	if o.BatteryW != nil {
		r.BatteryW = o.BatteryW
	}
	if o.GridW != nil {
		r.GridW = o.GridW
	}
	if o.HomeW != nil {
		r.HomeW = o.HomeW
	}
	if o.VehicleW != nil {
		r.VehicleW = o.VehicleW
	}
	return r
}

// Flows converts the readings into the renderer's input.
func (r Readings) Flows() flow.Flows {
	return flow.Flows{
		SolarW:   Value(r.SolarW),
		BatteryW: Value(r.BatteryW),
		GridW:    Value(r.GridW),
		HomeW:    Value(r.HomeW),
		VehicleW: Value(r.VehicleW),
	}
}
