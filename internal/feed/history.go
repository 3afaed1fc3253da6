package feed

import "sync"

// History records the last N samples of a single power series into a ring
// buffer so the UI can draw recent values.
type History struct {
	buffer    []float64
	nextIndex int
	filled    bool
	mu        sync.RWMutex
}

// NewHistory creates a ring holding up to size samples.
func NewHistory(size int) *History {
	if size < 1 {
		size = 1
	}
	return &History{buffer: make([]float64, size)}
}

// Record appends a sample, overwriting the oldest once full.
func (h *History) Record(v float64) {
	h.mu.Lock()
	h.buffer[h.nextIndex] = v
	h.nextIndex++
	if h.nextIndex >= len(h.buffer) {
		h.nextIndex = 0
		h.filled = true
	}
	h.mu.Unlock()
}

// Len returns the number of samples stored.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.filled {
		return len(h.buffer)
	}
	return h.nextIndex
}

// Snapshot returns up to the last n samples, oldest first.
func (h *History) Snapshot(n int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stored := h.nextIndex
	if h.filled {
		stored = len(h.buffer)
	}
	if n > stored {
		n = stored
	}
	if n < 0 {
		n = 0
	}
	out := make([]float64, n)
	// Walk backwards from nextIndex - 1
	idx := h.nextIndex - 1
	for i := n - 1; i >= 0; i-- {
		if idx < 0 {
			idx = len(h.buffer) - 1
		}
		out[i] = h.buffer[idx]
		idx--
	}
	return out
}
