package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ErrEmptyRecording is returned when a recording holds no readings.
var ErrEmptyRecording = errors.New("recording has no readings")

// Replay plays back a recording of Readings, one per line of JSON, at a
// fixed interval, looping when it reaches the end.
type Replay struct {
	Path     string
	Interval time.Duration

	// Frames, when set, are played instead of reading Path.
	Frames []Readings
}

// NewReplay creates a replay of the recording at path.
func NewReplay(path string, interval time.Duration) *Replay {
	return &Replay{Path: path, Interval: interval}
}

// NewReplayFrames creates a replay of a recording already loaded from path.
func NewReplayFrames(path string, frames []Readings, interval time.Duration) *Replay {
	return &Replay{Path: path, Interval: interval, Frames: frames}
}

func (r *Replay) Name() string { return "replay" }

// Run loads the recording and emits it frame by frame until ctx is done.
func (r *Replay) Run(ctx context.Context, emit func(Readings)) error {
	if r.Interval <= 0 {
		return fmt.Errorf("replay interval must be positive, got %s", r.Interval)
	}
	frames := r.Frames
	if len(frames) == 0 {
		var err error
		if frames, err = ReadRecording(r.Path); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	for i := 0; ; i = (i + 1) % len(frames) {
		emit(frames[i])
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ReadRecording opens and parses the recording at path.
func ReadRecording(path string) ([]Readings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}
	defer f.Close()
	frames, err := LoadRecording(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return frames, nil
}

// LoadRecording parses JSON-lines readings. Blank lines and lines starting
// with '#' are skipped.
func LoadRecording(rd io.Reader) ([]Readings, error) {
	var frames []Readings
	scanner := bufio.NewScanner(rd)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var r Readings
		if err := json.Unmarshal([]byte(text), &r); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		frames = append(frames, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, ErrEmptyRecording
	}
	return frames, nil
}
