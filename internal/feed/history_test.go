package feed

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistory_Snapshot(t *testing.T) {
	h := NewHistory(4)
	assert.Empty(t, h.Snapshot(4))

	h.Record(1)
	h.Record(2)
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []float64{1, 2}, h.Snapshot(10))
	assert.Equal(t, []float64{2}, h.Snapshot(1))

	for _, v := range []float64{3, 4, 5, 6} {
		h.Record(v)
	}
	assert.Equal(t, 4, h.Len())
	assert.Equal(t, []float64{3, 4, 5, 6}, h.Snapshot(4))
	assert.Equal(t, []float64{5, 6}, h.Snapshot(2))
}

func TestHistory_MinimumSize(t *testing.T) {
	h := NewHistory(0)
	h.Record(7)
	h.Record(8)
	assert.Equal(t, []float64{8}, h.Snapshot(5))
}

func TestHistory_Concurrent(t *testing.T) {
	h := NewHistory(16)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				h.Record(float64(i))
				_ = h.Snapshot(8)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 16, h.Len())
}

func TestHistory_NegativeCount(t *testing.T) {
	h := NewHistory(4)
	h.Record(1)
	assert.Empty(t, h.Snapshot(-3))
}
