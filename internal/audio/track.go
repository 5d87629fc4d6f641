package audio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
)

// ErrUnavailable is returned by Play when the track's source never loaded.
var ErrUnavailable = errors.New("audio source unavailable")

type State int

const (
	Idle State = iota
	Playing
	Paused
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Errored:
		return "errored"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Track is one playable source wired into the mixer:
// source -> loop -> resample -> meter -> volume -> ctrl.
//
// Play may run on any goroutine; the rest is meant for the UI goroutine.
// Stream state is guarded by the output lock, attachment by mu.
type Track struct {
	name string
	out  Output
	loop bool

	mu       sync.Mutex
	src      beep.StreamSeekCloser
	format   beep.Format
	meter    *Meter
	vol      *effects.Volume
	ctrl     *beep.Ctrl
	err      error
	started  bool
	attached bool

	// dropped is set once the mixer has let go of a finished stream.
	dropped atomic.Bool
	onEnded func()
}

// Load opens path and builds a track around it. A load failure is not
// returned: the track comes back Errored so the UI can report it.
func Load(name, path string, out Output, loop bool) *Track {
	src, format, err := Open(path)
	if err != nil {
		log.Printf("Failed to load %s track %q: %v", name, path, err)
		t := NewTrack(name, nil, beep.Format{}, out, loop)
		t.err = err
		return t
	}
	return NewTrack(name, src, format, out, loop)
}

// NewTrack wraps an already decoded source. src may be nil, in which case
// the track is Errored.
func NewTrack(name string, src beep.StreamSeekCloser, format beep.Format, out Output, loop bool) *Track {
	t := &Track{name: name, out: out, loop: loop}
	t.vol = &effects.Volume{Base: 2}
	t.ctrl = &beep.Ctrl{Streamer: t.vol, Paused: true}
	if src == nil {
		t.err = ErrUnavailable
		return t
	}
	t.setSource(src, format)
	return t
}

// setSource rebuilds the chain below the volume stage. Callers hold the
// output lock if the track may be streaming.
func (t *Track) setSource(src beep.StreamSeekCloser, format beep.Format) {
	var s beep.Streamer = src
	if t.loop {
		s = beep.Loop(-1, src)
	}
	if format.SampleRate != 0 && format.SampleRate != SampleRate {
		s = beep.Resample(4, format.SampleRate, SampleRate, s)
	}
	t.src = src
	t.format = format
	t.meter = NewMeter(s, meterRingSize)
	t.vol.Streamer = t.meter
}

func (t *Track) Name() string { return t.name }

// Err reports why the source could not be loaded.
func (t *Track) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// OnEnded registers fn to run when a non-looping track reaches its end.
// It runs on the audio goroutine with the mixer locked, so it must not
// block or call back into the track. Set it before the first Play.
func (t *Track) OnEnded(fn func()) { t.onEnded = fn }

// Play starts or resumes playback. It blocks while the device initializes,
// so the UI calls it from a goroutine.
func (t *Track) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.Err() != nil {
		return fmt.Errorf("%s: %w", t.name, ErrUnavailable)
	}
	// Init may block on the device; mu stays free so the UI can keep
	// reading position and level meanwhile.
	if err := t.out.Init(); err != nil {
		return fmt.Errorf("%s: %w", t.name, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return fmt.Errorf("%s: %w", t.name, ErrUnavailable)
	}
	if t.dropped.Swap(false) || !t.attached {
		t.out.Play(beep.Seq(t.ctrl, beep.Callback(t.finish)))
		t.attached = true
	}
	t.out.Lock()
	t.ctrl.Paused = false
	t.out.Unlock()
	t.started = true
	return nil
}

func (t *Track) finish() {
	t.dropped.Store(true)
	if t.onEnded != nil {
		t.onEnded()
	}
}

// Pause always succeeds.
func (t *Track) Pause() {
	t.out.Lock()
	t.ctrl.Paused = true
	t.out.Unlock()
	t.mu.Lock()
	if t.meter != nil {
		t.meter.Reset()
	}
	t.mu.Unlock()
}

// Paused reports whether the mixer is currently silent for this track.
func (t *Track) Paused() bool {
	if t.dropped.Load() {
		return true
	}
	t.mu.Lock()
	attached := t.attached
	t.mu.Unlock()
	if !attached {
		return true
	}
	t.out.Lock()
	defer t.out.Unlock()
	return t.ctrl.Paused
}

func (t *Track) State() State {
	t.mu.Lock()
	errored, started := t.err != nil, t.started
	t.mu.Unlock()
	switch {
	case errored:
		return Errored
	case !started:
		return Idle
	case t.Paused():
		return Paused
	}
	return Playing
}

// Position is the playback offset within the source.
func (t *Track) Position() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.src == nil {
		return 0
	}
	t.out.Lock()
	defer t.out.Unlock()
	return t.format.SampleRate.D(t.src.Position())
}

// Seek moves to d, clamped to the source length.
func (t *Track) Seek(d time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.src == nil {
		return fmt.Errorf("%s: %w", t.name, ErrUnavailable)
	}
	n := t.format.SampleRate.N(d)
	if n < 0 {
		n = 0
	}
	if l := t.src.Len(); n > l {
		n = l
	}
	t.out.Lock()
	err := t.src.Seek(n)
	t.out.Unlock()
	if err != nil {
		return fmt.Errorf("%s: seek: %w", t.name, err)
	}
	return nil
}

// SetVolume takes a linear gain in [0, 1].
func (t *Track) SetVolume(linear float64) {
	linear = clamp01(linear)
	t.out.Lock()
	defer t.out.Unlock()
	t.vol.Silent = linear == 0
	if linear > 0 {
		t.vol.Volume = math.Log2(linear)
	}
}

// Level is the recent loudness in [0, 1]; zero while paused.
func (t *Track) Level() float64 {
	t.mu.Lock()
	m := t.meter
	t.mu.Unlock()
	if m == nil {
		return 0
	}
	return m.Level()
}

// Duration is the length of one pass through the source.
func (t *Track) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.src == nil {
		return 0
	}
	return t.format.SampleRate.D(t.src.Len())
}

// Replace swaps in a new source, keeping volume and paused state. A
// previously errored track becomes playable.
func (t *Track) Replace(path string) error {
	src, format, err := Open(path)
	if err != nil {
		return fmt.Errorf("%s: %w", t.name, err)
	}
	t.mu.Lock()
	old := t.src
	t.out.Lock()
	t.setSource(src, format)
	t.out.Unlock()
	t.err = nil
	t.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	log.Printf("Replaced %s track with %q", t.name, path)
	return nil
}

func (t *Track) Close() error {
	t.Pause()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.src == nil {
		return nil
	}
	err := t.src.Close()
	t.src = nil
	return err
}
