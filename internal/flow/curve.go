package flow

import "math"

// Curve maps a path's power magnitude to particle count, base speed and base
// size. All three follow the same power law, (w/1kW)^Exponent for the count
// and (w/SaturationW)^Exponent for speed and size, so growth flattens out at
// high power.
type Curve struct {
	MinCount   int
	MaxCount   int
	CountScale float64 // particles added per kW^Exponent
	Exponent   float64

	// Speed and size reach their maximum at SaturationW.
	SaturationW float64
	SpeedMin    float64 // progress per frame
	SpeedMax    float64
	SizeMin     float64 // core radius in pixels
	SizeMax     float64
}

// DefaultCurve returns the tuned power-law curve.
func DefaultCurve() Curve {
	return Curve{
		MinCount:    2,
		MaxCount:    25,
		CountScale:  6,
		Exponent:    0.55,
		SaturationW: 10000,
		SpeedMin:    0.004,
		SpeedMax:    0.014,
		SizeMin:     1.5,
		SizeMax:     3.5,
	}
}

// magnitude returns |w|, with NaN read as no power at all.
func magnitude(w float64) float64 {
	if math.IsNaN(w) {
		return 0
	}
	return math.Abs(w)
}

// TargetCount is the number of particles a path carrying w watts should hold.
func (c Curve) TargetCount(w float64) int {
	m := magnitude(w)
	n := float64(c.MinCount) + c.CountScale*math.Pow(m/1000, c.Exponent)
	if math.IsNaN(n) || n > float64(c.MaxCount) {
		return c.MaxCount
	}
	count := int(math.Round(n))
	if count < c.MinCount {
		return c.MinCount
	}
	if count > c.MaxCount {
		return c.MaxCount
	}
	return count
}

func (c Curve) level(w float64) float64 {
	if c.SaturationW <= 0 {
		return 1
	}
	return math.Pow(clamp01(magnitude(w)/c.SaturationW), c.Exponent)
}

// BaseSpeed is the progress per frame before per-particle jitter.
func (c Curve) BaseSpeed(w float64) float64 {
	return c.SpeedMin + (c.SpeedMax-c.SpeedMin)*c.level(w)
}

// BaseSize is the core radius before per-particle jitter.
func (c Curve) BaseSize(w float64) float64 {
	return c.SizeMin + (c.SizeMax-c.SizeMin)*c.level(w)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
