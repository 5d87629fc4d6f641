// Package session coordinates the background track with the easter-egg
// overlay track: the overlay pauses the background, and closing the overlay
// resumes the background where it stopped, if it was playing.
//
// All methods except OverlayEnded must be called from the UI goroutine.
// Play requests run on their own goroutines; their results are applied by
// Poll, so state only changes once a request has settled.
package session

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

const (
	MsgUnavailable = "Music file not found / unsupported"
	MsgCannotPlay  = "Cannot play audio"
)

// Player is one audio track.
type Player interface {
	Play(ctx context.Context) error
	Pause()
	Paused() bool
	Position() time.Duration
	Seek(d time.Duration) error
	SetVolume(linear float64)
	Err() error
}

// Dialog is the overlay's modal. ForceOpen is the fallback when Open fails.
type Dialog interface {
	Open() error
	ForceOpen()
	Close()
	IsOpen() bool
}

// Indicator shows the background track's committed state.
type Indicator interface {
	SetPlaying(playing bool)
	SetDisabled(disabled bool)
}

// Notifier shows transient error text.
type Notifier interface {
	Show(msg string)
	Hide()
}

// Timer is a cancellable pending call.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d on another goroutine.
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

type CloseReason int

const (
	CloseButton CloseReason = iota
	OutsideClick
	Escape
	AutoClose
	Ended
)

func (r CloseReason) String() string {
	switch r {
	case CloseButton:
		return "close button"
	case OutsideClick:
		return "outside click"
	case Escape:
		return "escape"
	case AutoClose:
		return "auto-close"
	case Ended:
		return "track ended"
	}
	return "unknown"
}

type Options struct {
	OverlayVolume float64

	// AutoClose closes the overlay after this long; 0 disables it.
	AutoClose time.Duration
	AfterFunc AfterFunc
}

type eventKind int

const (
	primaryPlayed eventKind = iota
	primaryResumed
	overlayPlayed
	timerFired
	overlayEnded
)

type event struct {
	kind eventKind
	gen  uint64
	err  error
}

// overlay is the bookkeeping for one open dialog.
type overlay struct {
	wasPlaying bool
	resumeAt   time.Duration
}

type Coordinator struct {
	primary   Player
	overlay   Player
	dialog    Dialog
	indicator Indicator
	notify    Notifier
	opts      Options

	ctx    context.Context
	cancel context.CancelFunc

	isPlaying bool
	open      *overlay

	// resuming is the last closed session while its resume is in flight.
	resuming *overlay

	// Generations tell a settled request whether it is still wanted.
	primaryGen      uint64
	primaryInflight int
	overlayGen      atomic.Uint64
	timerGen        atomic.Uint64
	timer           Timer

	events   chan event
	inflight int
}

func New(primary, overlay Player, dialog Dialog, indicator Indicator, notify Notifier, opts Options) *Coordinator {
	if opts.AfterFunc == nil {
		opts.AfterFunc = stdAfterFunc
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		primary:   primary,
		overlay:   overlay,
		dialog:    dialog,
		indicator: indicator,
		notify:    notify,
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		events:    make(chan event, 64),
	}
	if primary.Err() != nil {
		indicator.SetDisabled(true)
		notify.Show(MsgUnavailable)
	}
	c.syncIndicator(false)
	return c
}

// IsPlaying is the committed state of the background track.
func (c *Coordinator) IsPlaying() bool { return c.isPlaying }

func (c *Coordinator) OverlayOpen() bool { return c.open != nil }

// Saved returns the snapshot taken when the overlay opened.
func (c *Coordinator) Saved() (wasPlaying bool, resumeAt time.Duration, ok bool) {
	if c.open == nil {
		return false, 0, false
	}
	return c.open.wasPlaying, c.open.resumeAt, true
}

// TogglePrimary flips the background track. Pausing is immediate; playing
// is committed when the request settles. Ignored while the overlay is up.
func (c *Coordinator) TogglePrimary() {
	if c.open != nil {
		return
	}
	if c.primary.Err() != nil {
		c.notify.Show(MsgUnavailable)
		return
	}
	c.resuming = nil
	c.primaryGen++
	if c.isPlaying {
		c.primary.Pause()
		c.isPlaying = false
		c.syncIndicator(false)
		return
	}
	c.launchPrimary(primaryPlayed)
}

// PrimaryReplaced re-enables the toggle after the background source changed.
func (c *Coordinator) PrimaryReplaced() {
	if c.primary.Err() != nil {
		return
	}
	c.indicator.SetDisabled(false)
	c.notify.Hide()
}

// OpenOverlay pauses the background, opens the dialog and (re)starts the
// overlay track from the top. Triggering it again while open restarts the
// overlay and the auto-close timer but keeps the first snapshot.
func (c *Coordinator) OpenOverlay() {
	if c.open == nil {
		c.open = &overlay{
			wasPlaying: !c.primary.Paused(),
			resumeAt:   c.primary.Position(),
		}
		if r := c.resuming; r != nil && !c.open.wasPlaying {
			// Reopened before the previous resume settled.
			c.open.wasPlaying, c.open.resumeAt = true, r.resumeAt
		}
		c.resuming = nil
		log.Printf("Overlay opened (background playing=%v at %v)", c.open.wasPlaying, c.open.resumeAt)
	}
	c.primaryGen++
	c.primary.Pause()
	if err := c.primary.Seek(c.open.resumeAt); err != nil && c.primary.Err() == nil {
		log.Printf("Background seek failed: %v", err)
	}
	c.isPlaying = false
	c.syncIndicator(false)

	if !c.dialog.IsOpen() {
		if err := c.dialog.Open(); err != nil {
			log.Printf("Dialog open failed, forcing: %v", err)
			c.dialog.ForceOpen()
		}
	}

	gen := c.overlayGen.Add(1)
	if err := c.overlay.Seek(0); err != nil && c.overlay.Err() == nil {
		log.Printf("Overlay rewind failed: %v", err)
	}
	c.overlay.SetVolume(c.opts.OverlayVolume)
	c.launch(overlayPlayed, gen, c.overlay)
	c.armTimer()
}

// CloseOverlay stops the overlay and resumes the background if it was
// playing when the overlay opened. Resume failures are silent.
func (c *Coordinator) CloseOverlay(reason CloseReason) {
	s := c.open
	if s == nil {
		return
	}
	c.open = nil
	c.cancelTimer()
	c.overlayGen.Add(1)
	c.overlay.Pause()
	if c.dialog.IsOpen() {
		c.dialog.Close()
	}
	log.Printf("Overlay closed (%v)", reason)

	if !s.wasPlaying {
		c.isPlaying = !c.primary.Paused()
		c.syncIndicator(c.isPlaying)
		return
	}
	if err := c.primary.Seek(s.resumeAt); err != nil {
		log.Printf("Background seek failed: %v", err)
	}
	c.syncIndicator(!c.primary.Paused())
	c.resuming = s
	c.primaryGen++
	c.launchPrimary(primaryResumed)
}

// OverlayEnded reports that the overlay track ran out. It is safe to call
// from the audio goroutine and never blocks.
func (c *Coordinator) OverlayEnded() {
	c.post(event{kind: overlayEnded, gen: c.overlayGen.Load()})
}

// Poll applies everything that settled since the last call.
func (c *Coordinator) Poll() {
	for {
		select {
		case ev := <-c.events:
			c.apply(ev)
		default:
			return
		}
	}
}

// Wait applies results until no play request is in flight.
func (c *Coordinator) Wait(ctx context.Context) error {
	for c.inflight > 0 {
		select {
		case ev := <-c.events:
			c.apply(ev)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Close cancels pending requests and the auto-close timer.
func (c *Coordinator) Close() {
	c.cancelTimer()
	c.cancel()
}

func (c *Coordinator) launchPrimary(kind eventKind) {
	c.primaryInflight++
	c.launch(kind, c.primaryGen, c.primary)
}

func (c *Coordinator) launch(kind eventKind, gen uint64, p Player) {
	c.inflight++
	go func() {
		err := p.Play(c.ctx)
		c.events <- event{kind: kind, gen: gen, err: err}
	}()
}

// post is for events that must never block the sender.
func (c *Coordinator) post(ev event) {
	select {
	case c.events <- ev:
	default:
		log.Printf("Session event dropped: %v", ev.kind)
	}
}

func (c *Coordinator) apply(ev event) {
	switch ev.kind {
	case primaryPlayed, primaryResumed:
		c.inflight--
		c.primaryInflight--
		c.applyPrimary(ev)
	case overlayPlayed:
		c.inflight--
		c.applyOverlay(ev)
	case timerFired:
		if c.open != nil && ev.gen == c.timerGen.Load() {
			c.CloseOverlay(AutoClose)
		}
	case overlayEnded:
		if c.open != nil && ev.gen == c.overlayGen.Load() {
			c.CloseOverlay(Ended)
		}
	}
}

func (c *Coordinator) applyPrimary(ev event) {
	if ev.gen != c.primaryGen {
		// Superseded. A late success must not leave music running that
		// nobody asked for, unless a newer request is about to settle.
		if ev.err == nil && c.primaryInflight == 0 && (!c.isPlaying || c.open != nil) {
			c.primary.Pause()
		}
		return
	}
	switch {
	case ev.kind == primaryResumed:
		c.resuming = nil
		if ev.err != nil {
			log.Printf("Background resume failed: %v", ev.err)
		}
		c.isPlaying = !c.primary.Paused()
	case ev.err != nil:
		log.Printf("Background play failed: %v", ev.err)
		c.notify.Show(MsgCannotPlay)
		c.isPlaying = false
	default:
		c.notify.Hide()
		c.isPlaying = true
	}
	c.syncIndicator(c.isPlaying)
}

func (c *Coordinator) applyOverlay(ev event) {
	if ev.gen != c.overlayGen.Load() {
		if ev.err == nil && c.open == nil {
			c.overlay.Pause()
		}
		return
	}
	if ev.err != nil {
		log.Printf("Overlay play failed: %v", ev.err)
		c.notify.Show(MsgCannotPlay)
		return
	}
	c.notify.Hide()
}

func (c *Coordinator) armTimer() {
	c.cancelTimer()
	if c.opts.AutoClose <= 0 {
		return
	}
	gen := c.timerGen.Load()
	c.timer = c.opts.AfterFunc(c.opts.AutoClose, func() {
		c.post(event{kind: timerFired, gen: gen})
	})
}

// cancelTimer stops the pending auto-close and invalidates one that already
// fired but has not been polled yet.
func (c *Coordinator) cancelTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerGen.Add(1)
}

func (c *Coordinator) syncIndicator(playing bool) {
	c.indicator.SetPlaying(playing)
}
