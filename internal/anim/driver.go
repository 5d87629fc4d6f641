// Package anim turns a monotonic clock into per-frame deltas for the
// particle field. ebiten calls Update/Draw once per refresh for the
// lifetime of the window; the driver only measures time between calls.
package anim

import "time"

// MaxDelta bounds one step, e.g. after the window was minimized.
const MaxDelta = 32 * time.Millisecond

// Clock returns monotonic time since an arbitrary origin.
type Clock func() time.Duration

// SinceStart is a Clock anchored at the moment it is created.
func SinceStart() Clock {
	start := time.Now()
	return func() time.Duration { return time.Since(start) }
}

// Stepper is anything advanced by elapsed milliseconds.
type Stepper interface {
	Advance(deltaMillis float64)
}

type Driver struct {
	clock Clock
	last  time.Duration
}

func NewDriver(clock Clock) *Driver {
	if clock == nil {
		clock = SinceStart()
	}
	return &Driver{clock: clock, last: clock()}
}

// Tick returns the clamped milliseconds since the previous tick.
func (d *Driver) Tick(now time.Duration) float64 {
	dt := now - d.last
	d.last = now
	if dt > MaxDelta {
		dt = MaxDelta
	}
	if dt < 0 {
		dt = 0
	}
	return float64(dt) / float64(time.Millisecond)
}

// Step reads the clock and advances s. A nil stepper only updates the clock.
func (d *Driver) Step(s Stepper) float64 {
	dt := d.Tick(d.clock())
	if s != nil {
		s.Advance(dt)
	}
	return dt
}
