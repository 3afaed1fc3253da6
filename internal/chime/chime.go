// Package chime plays a short tone when the house starts drawing from the
// grid.
package chime

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"github.com/iburimskiy/powerflow-visualization/internal/logger"
)

const (
	toneLength = 250 * time.Millisecond
	toneGain   = 0.3
)

// Chime watches an on/off signal and plays a tone on every off->on edge.
type Chime struct {
	rate      beep.SampleRate
	frequency float64
	play      func(beep.Streamer)
	log       *log.Logger

	mu   sync.Mutex
	prev bool
}

// New initialises the speaker at sampleRate and returns a chime playing
// frequency Hz tones.
func New(sampleRate int, frequency float64, l *log.Logger) (*Chime, error) {
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/20)); err != nil {
		return nil, err
	}
	return newChime(sr, frequency, func(s beep.Streamer) { speaker.Play(s) }, l), nil
}

func newChime(sr beep.SampleRate, frequency float64, play func(beep.Streamer), l *log.Logger) *Chime {
	return &Chime{
		rate:      sr,
		frequency: frequency,
		play:      play,
		log:       logger.Component(l, "chime"),
	}
}

// Observe feeds the current state; a rising edge plays the tone.
func (c *Chime) Observe(on bool) {
	c.mu.Lock()
	rising := on && !c.prev
	c.prev = on
	c.mu.Unlock()

	if rising {
		c.log.Debug("grid import started")
		c.play(Tone(c.rate, c.frequency, toneLength, toneGain))
	}
}

// Tone returns a sine tone of length d with a linear fade out.
func Tone(sr beep.SampleRate, frequency float64, d time.Duration, gain float64) beep.Streamer {
	total := sr.N(d)
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if pos >= total {
			return 0, false
		}
		for i := range samples {
			if pos >= total {
				return i, true
			}
			t := float64(pos) / float64(sr)
			env := 1 - float64(pos)/float64(total)
			v := math.Sin(2*math.Pi*frequency*t) * gain * env
			samples[i] = [2]float64{v, v}
			pos++
		}
		return len(samples), true
	})
}
