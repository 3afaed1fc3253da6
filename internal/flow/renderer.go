// Package flow animates energy particles travelling along directed paths
// between named nodes.
//
// A Renderer keeps one particle set per path. Callers publish the latest
// paths and node positions with SetPaths and SetPositions from whatever
// goroutine receives data; the frame loop calls Step once per frame and draws
// the returned Frame. Step is the only place particle state changes.
package flow

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Drawing constants shared by both themes.
const (
	lineWidth       = 1.5
	glowLineWidth   = 6.0
	lineAlphaIdle   = 0.08
	lineAlphaActive = 0.25
	glowLineAlpha   = 0.15

	outerRadius = 4.0
	outerAlpha  = 0.15
	midRadius   = 2.0
	midAlpha    = 0.4

	// Frames a path may carry surplus particles before they are truncated.
	maxOvershootFrames = 60
)

// Options configure a Renderer. Zero fields take the defaults.
type Options struct {
	Curve Curve
	Theme Theme

	// Paths carrying less than this are drawn idle even when marked active.
	ThresholdW float64

	// Fraction of the path over which particles fade in and out.
	FadeZone float64

	// How far a shrinking set may exceed its target before it is truncated
	// instead of retired one wrap at a time.
	MaxOvershoot int

	Rand *rand.Rand
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Curve:        DefaultCurve(),
		Theme:        ThemeDark,
		ThresholdW:   10,
		FadeZone:     0.15,
		MaxOvershoot: 4,
	}
}

// Renderer owns the particle state for a set of paths.
type Renderer struct {
	// latest inputs, written by SetPaths/SetPositions/SetTheme
	mu        sync.RWMutex
	paths     []Path
	positions map[string]Point
	theme     Theme

	// frame loop state, touched only by Step, Particles and Close
	opts      Options
	rng       *rand.Rand
	particles map[string][]Particle
	overshoot map[string]int // consecutive frames above target
}

// NewRenderer creates a renderer with no paths.
func NewRenderer(opts Options) *Renderer {
	def := DefaultOptions()
	if opts.Curve.MaxCount == 0 {
		opts.Curve = def.Curve
	}
	if opts.FadeZone <= 0 {
		opts.FadeZone = def.FadeZone
	}
	if opts.MaxOvershoot <= 0 {
		opts.MaxOvershoot = def.MaxOvershoot
	}
	rng := opts.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Renderer{
		positions: map[string]Point{},
		theme:     opts.Theme,
		opts:      opts,
		rng:       rng,
		particles: map[string][]Particle{},
		overshoot: map[string]int{},
	}
}

// SetPaths replaces the path list read by the next Step.
func (r *Renderer) SetPaths(paths []Path) {
	cp := make([]Path, len(paths))
	copy(cp, paths)
	r.mu.Lock()
	r.paths = cp
	r.mu.Unlock()
}

// SetPositions replaces the node positions read by the next Step.
func (r *Renderer) SetPositions(positions map[string]Point) {
	cp := make(map[string]Point, len(positions))
	for k, v := range positions {
		cp[k] = v
	}
	r.mu.Lock()
	r.positions = cp
	r.mu.Unlock()
}

// SetTheme switches between the light and dark glow styles.
func (r *Renderer) SetTheme(t Theme) {
	r.mu.Lock()
	r.theme = t
	r.mu.Unlock()
}

// Theme returns the current theme.
func (r *Renderer) Theme() Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.theme
}

func (r *Renderer) inputs() ([]Path, map[string]Point, Theme) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.paths, r.positions, r.theme
}

// Particles returns a copy of the particle set stored for a path key.
func (r *Renderer) Particles(key string) []Particle {
	ps := r.particles[key]
	if ps == nil {
		return nil
	}
	out := make([]Particle, len(ps))
	copy(out, ps)
	return out
}

// Close drops all particle state. Step returns empty frames afterwards.
func (r *Renderer) Close() {
	r.particles = nil
	r.overshoot = nil
}

func (r *Renderer) drop(key string) {
	delete(r.particles, key)
	delete(r.overshoot, key)
}

// Active reports whether p is drawn with particles.
func (r *Renderer) Active(p Path) bool {
	m := magnitude(p.PowerW)
	return p.Active && m > 0 && m >= r.opts.ThresholdW
}

// Step advances every particle by one frame on a width x height pixel
// surface and returns what to draw. A zero-sized surface draws nothing and
// leaves particle state untouched.
func (r *Renderer) Step(width, height float64) Frame {
	if r.particles == nil || width <= 0 || height <= 0 {
		return Frame{}
	}

	paths, positions, theme := r.inputs()
	glow := 1.0
	if theme == ThemeLight {
		glow = 0.5
	}

	// The last path listed for a key wins.
	last := make(map[string]int, len(paths))
	for i, p := range paths {
		last[p.Key()] = i
	}

	frame := Frame{Width: width, Height: height}
	for i, p := range paths {
		key := p.Key()
		if last[key] != i {
			continue
		}

		from, ok := positions[p.From]
		if !ok {
			r.drop(key)
			continue
		}
		to, ok := positions[p.To]
		if !ok {
			r.drop(key)
			continue
		}
		a := Point{X: from.X * width, Y: from.Y * height}
		b := Point{X: to.X * width, Y: to.Y * height}
		c := ParseColor(p.Color)

		if !r.Active(p) {
			frame.Lines = append(frame.Lines, Line{From: a, To: b, Color: c, Alpha: lineAlphaIdle, Width: lineWidth})
			r.drop(key)
			continue
		}

		frame.Lines = append(frame.Lines,
			Line{From: a, To: b, Color: c, Alpha: lineAlphaActive, Width: lineWidth},
			Line{From: a, To: b, Color: c, Alpha: glowLineAlpha * glow, Width: glowLineWidth},
		)

		core := white
		if theme == ThemeLight {
			core = c
		}
		for _, pt := range r.update(key, p.PowerW) {
			alpha := pt.Opacity * edgeFade(pt.Progress, r.opts.FadeZone)
			if alpha <= 0 {
				continue
			}
			pos := lerp(a, b, pt.Progress)
			frame.Sprites = append(frame.Sprites,
				Sprite{Key: key, Center: pos, Radius: pt.Size * outerRadius, Color: c, Alpha: alpha * outerAlpha * glow, Layer: LayerOuter},
				Sprite{Key: key, Center: pos, Radius: pt.Size * midRadius, Color: c, Alpha: alpha * midAlpha * glow, Layer: LayerMid},
				Sprite{Key: key, Center: pos, Radius: pt.Size, Color: core, Alpha: alpha, Layer: LayerCore},
			)
		}
	}

	for key := range r.particles {
		if _, ok := last[key]; !ok {
			r.drop(key)
		}
	}
	return frame
}

// update grows, advances and retires the particles of one active path.
func (r *Renderer) update(key string, powerW float64) []Particle {
	curve := r.opts.Curve
	target := curve.TargetCount(powerW)
	speed := curve.BaseSpeed(powerW)
	size := curve.BaseSize(powerW)

	ps := r.particles[key]
	for len(ps) < target {
		ps = append(ps, spawn(r.rng, speed, size))
	}
	if len(ps) > target {
		r.overshoot[key]++
		if len(ps) > target+r.opts.MaxOvershoot || r.overshoot[key] > maxOvershootFrames {
			ps = ps[:target]
		}
	}

	// Surplus particles leave at the end of their run, where they are
	// already faded out.
	surplus := len(ps) - target
	kept := ps[:0]
	for _, pt := range ps {
		if advance(&pt) {
			if surplus > 0 {
				surplus--
				continue
			}
			reroll(r.rng, &pt, speed, size)
		}
		kept = append(kept, pt)
	}
	if len(kept) <= target {
		delete(r.overshoot, key)
	}
	r.particles[key] = kept
	return kept
}

// ParticleCount returns the total number of live particles.
func (r *Renderer) ParticleCount() int {
	n := 0
	for _, ps := range r.particles {
		n += len(ps)
	}
	return n
}

// ActivePaths returns the number of paths currently holding particles.
func (r *Renderer) ActivePaths() int {
	return len(r.particles)
}
