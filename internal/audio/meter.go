package audio

import (
	"math"
	"sync"

	"github.com/faiface/beep"
)

const (
	meterRingSize = 8192
	meterWindow   = 2048
)

// Meter wraps a beep.Streamer and records the last N samples into a ring
// buffer so the UI can read a loudness level from recently played audio.
type Meter struct {
	Source    beep.Streamer
	buffer    [][2]float64
	nextIndex int
	filled    bool
	mu        sync.RWMutex
}

func NewMeter(src beep.Streamer, ringSize int) *Meter {
	return &Meter{
		Source: src,
		buffer: make([][2]float64, ringSize),
	}
}

func (m *Meter) Stream(samples [][2]float64) (int, bool) {
	n, ok := m.Source.Stream(samples)
	if n > 0 {
		m.mu.Lock()
		for i := 0; i < n; i++ {
			m.buffer[m.nextIndex] = samples[i]
			m.nextIndex++
			if m.nextIndex >= len(m.buffer) {
				m.nextIndex = 0
				m.filled = true
			}
		}
		m.mu.Unlock()
	}
	return n, ok
}

func (m *Meter) Err() error { return m.Source.Err() }

// Snapshot returns up to the last n recorded samples, oldest first.
func (m *Meter) Snapshot(n int) [][2]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	avail := m.nextIndex
	if m.filled {
		avail = len(m.buffer)
	}
	if n > avail {
		n = avail
	}
	out := make([][2]float64, n)
	idx := m.nextIndex - n
	if idx < 0 {
		idx += len(m.buffer)
	}
	for i := range out {
		out[i] = m.buffer[idx]
		idx++
		if idx >= len(m.buffer) {
			idx = 0
		}
	}
	return out
}

// Level is the RMS of the recent window, folded to mono, in [0, 1].
func (m *Meter) Level() float64 {
	samples := m.Snapshot(meterWindow)
	if len(samples) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range samples {
		mono := (s[0] + s[1]) * 0.5
		sumSquares += mono * mono
	}
	return clamp01(math.Sqrt(sumSquares / float64(len(samples))))
}

// Reset forgets everything recorded so far, e.g. after pausing.
func (m *Meter) Reset() {
	m.mu.Lock()
	clear(m.buffer)
	m.nextIndex = 0
	m.filled = false
	m.mu.Unlock()
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
