package flow

import (
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestAdvance_WrapsAtOne(t *testing.T) {
	p := Particle{Progress: 0.5, Speed: 0.25}

	assert.False(t, advance(&p))
	assert.InDelta(t, 0.75, p.Progress, 1e-12)

	assert.True(t, advance(&p), "reaching exactly 1 wraps")
	assert.InDelta(t, 0, p.Progress, 1e-12)

	assert.False(t, advance(&p))
	assert.InDelta(t, 0.25, p.Progress, 1e-12)
}

func TestAdvanceProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("progress stays in [0,1) and wraps when the sum reaches 1", prop.ForAll(
		func(start, speed float64, steps int) bool {
			p := Particle{Progress: start, Speed: speed}
			for i := 0; i < steps; i++ {
				before := p.Progress
				wrapped := advance(&p)
				if wrapped != (before+speed >= 1) {
					return false
				}
				if p.Progress < 0 || p.Progress >= 1 {
					return false
				}
			}
			return true
		},
		gen.Float64Range(0, 0.999),
		gen.Float64Range(0.001, 0.05),
		gen.IntRange(1, 500),
	))

	properties.TestingRun(t)
}

func TestSpawn_JitterRanges(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 100; i++ {
		p := spawn(rng, 0.01, 2)
		assert.GreaterOrEqual(t, p.Progress, 0.0)
		assert.Less(t, p.Progress, 1.0)
		assert.GreaterOrEqual(t, p.Speed, 0.01*speedJitterMin)
		assert.LessOrEqual(t, p.Speed, 0.01*speedJitterMax)
		assert.GreaterOrEqual(t, p.Size, 2*sizeJitterMin)
		assert.LessOrEqual(t, p.Size, 2*sizeJitterMax)
		assert.GreaterOrEqual(t, p.Opacity, opacityMin)
		assert.LessOrEqual(t, p.Opacity, opacityMax)
	}
}

func TestEdgeFade(t *testing.T) {
	assert.Equal(t, 0.0, edgeFade(0, 0.15))
	assert.InDelta(t, 0.5, edgeFade(0.075, 0.15), 1e-12)
	assert.Equal(t, 1.0, edgeFade(0.5, 0.15))
	assert.InDelta(t, 0.5, edgeFade(0.925, 0.15), 1e-12)
	assert.Equal(t, 1.0, edgeFade(0.01, 0), "no fade zone means full opacity")
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"rgb(251,191,36)", color.NRGBA{R: 251, G: 191, B: 36, A: 255}},
		{"rgb( 1, 2, 3 )", color.NRGBA{R: 1, G: 2, B: 3, A: 255}},
		{"RGBA(10,20,30,0.5)", color.NRGBA{R: 10, G: 20, B: 30, A: 128}},
		{"rgb(300,0,0)", white},
		{"rgb(1,2)", white},
		{"#ff0000", white},
		{"", white},
		{"rgba(1,2,3,2)", white},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseColor(tt.in))
		})
	}
}

func TestSurfaceSize(t *testing.T) {
	w, h := SurfaceSize(400, 300, 2)
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	w, h = SurfaceSize(333, 111, 1.5)
	assert.Equal(t, 500, w)
	assert.Equal(t, 167, h)

	w, h = SurfaceSize(400, 300, 0)
	assert.Equal(t, 400, w)
	assert.Equal(t, 300, h)
}
