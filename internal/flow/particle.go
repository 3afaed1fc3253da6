package flow

import (
	"math"
	"math/rand/v2"
)

// Jitter ranges applied around the curve's base values.
const (
	speedJitterMin = 0.8
	speedJitterMax = 1.2
	sizeJitterMin  = 0.7
	sizeJitterMax  = 1.3
	opacityMin     = 0.6
	opacityMax     = 1.0
)

// Particle is one animated dot travelling along a path.
type Particle struct {
	Progress float64 // [0,1)
	Speed    float64
	Size     float64
	Opacity  float64
}

func between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

func spawn(rng *rand.Rand, baseSpeed, baseSize float64) Particle {
	p := Particle{Progress: rng.Float64()}
	reroll(rng, &p, baseSpeed, baseSize)
	return p
}

func reroll(rng *rand.Rand, p *Particle, baseSpeed, baseSize float64) {
	p.Speed = baseSpeed * between(rng, speedJitterMin, speedJitterMax)
	p.Size = baseSize * between(rng, sizeJitterMin, sizeJitterMax)
	p.Opacity = between(rng, opacityMin, opacityMax)
}

// advance moves p by its speed and reports whether it wrapped past the end.
func advance(p *Particle) bool {
	p.Progress += p.Speed
	if p.Progress < 1 {
		return false
	}
	p.Progress = math.Mod(p.Progress, 1)
	return true
}

// edgeFade ramps alpha from 0 at either end of a path to 1 once the particle
// is fadeZone away from both nodes.
func edgeFade(progress, fadeZone float64) float64 {
	if fadeZone <= 0 {
		return 1
	}
	return clamp01(math.Min(progress, 1-progress) / fadeZone)
}

func lerp(a, b Point, t float64) Point {
	return Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}
