package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakePlayer struct {
	mu      sync.Mutex
	paused  bool
	pos     time.Duration
	volume  float64
	playErr error
	loadErr error
	plays   int
	seeks   []time.Duration

	// gate, when set, holds Play until closed.
	gate chan struct{}
}

func newFakePlayer() *fakePlayer { return &fakePlayer{paused: true} }

func (p *fakePlayer) Play(ctx context.Context) error {
	if p.gate != nil {
		<-p.gate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays++
	if p.playErr != nil {
		return p.playErr
	}
	p.paused = false
	return nil
}

func (p *fakePlayer) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
}

func (p *fakePlayer) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *fakePlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

func (p *fakePlayer) Seek(d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = d
	p.seeks = append(p.seeks, d)
	return nil
}

func (p *fakePlayer) SetVolume(v float64) {
	p.mu.Lock()
	p.volume = v
	p.mu.Unlock()
}

func (p *fakePlayer) Err() error { return p.loadErr }

func (p *fakePlayer) setPos(d time.Duration) {
	p.mu.Lock()
	p.pos = d
	p.mu.Unlock()
}

func (p *fakePlayer) playCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays
}

type fakeDialog struct {
	open, forced bool
	openErr      error
	closes       int
}

func (d *fakeDialog) Open() error {
	if d.openErr != nil {
		return d.openErr
	}
	d.open = true
	return nil
}
func (d *fakeDialog) ForceOpen()   { d.open, d.forced = true, true }
func (d *fakeDialog) Close()       { d.open = false; d.closes++ }
func (d *fakeDialog) IsOpen() bool { return d.open }

type fakeIndicator struct {
	playing, disabled bool
	syncs             int
}

func (i *fakeIndicator) SetPlaying(p bool)  { i.playing = p; i.syncs++ }
func (i *fakeIndicator) SetDisabled(d bool) { i.disabled = d }

type fakeNotifier struct {
	msg     string
	visible bool
}

func (n *fakeNotifier) Show(msg string) { n.msg, n.visible = msg, true }
func (n *fakeNotifier) Hide()           { n.visible = false }

type fakeTimer struct {
	f       func()
	d       time.Duration
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type timers struct{ all []*fakeTimer }

func (ts *timers) after(d time.Duration, f func()) Timer {
	t := &fakeTimer{f: f, d: d}
	ts.all = append(ts.all, t)
	return t
}

func (ts *timers) last() *fakeTimer { return ts.all[len(ts.all)-1] }

type rig struct {
	c         *Coordinator
	primary   *fakePlayer
	overlay   *fakePlayer
	dialog    *fakeDialog
	indicator *fakeIndicator
	notify    *fakeNotifier
	timers    *timers
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{
		primary:   newFakePlayer(),
		overlay:   newFakePlayer(),
		dialog:    &fakeDialog{},
		indicator: &fakeIndicator{},
		notify:    &fakeNotifier{},
		timers:    &timers{},
	}
	r.build(t)
	return r
}

func (r *rig) build(t *testing.T) {
	r.c = New(r.primary, r.overlay, r.dialog, r.indicator, r.notify, Options{
		OverlayVolume: 0.9,
		AutoClose:     10 * time.Second,
		AfterFunc:     r.timers.after,
	})
	t.Cleanup(r.c.Close)
}

func (r *rig) settle(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.c.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestToggleTwiceRestoresState(t *testing.T) {
	r := newRig(t)

	r.c.TogglePrimary()
	if r.c.IsPlaying() {
		t.Fatal("isPlaying committed before the play request settled")
	}
	r.settle(t)
	if !r.c.IsPlaying() || !r.indicator.playing || r.primary.Paused() {
		t.Fatalf("after first toggle: isPlaying=%v indicator=%v paused=%v",
			r.c.IsPlaying(), r.indicator.playing, r.primary.Paused())
	}

	r.c.TogglePrimary()
	if r.c.IsPlaying() || r.indicator.playing || !r.primary.Paused() {
		t.Errorf("after second toggle: isPlaying=%v indicator=%v paused=%v",
			r.c.IsPlaying(), r.indicator.playing, r.primary.Paused())
	}
}

func TestToggleRejected(t *testing.T) {
	r := newRig(t)
	r.primary.playErr = errors.New("autoplay blocked")

	r.c.TogglePrimary()
	r.settle(t)

	if r.c.IsPlaying() || r.indicator.playing {
		t.Error("rejected play committed as playing")
	}
	if !r.notify.visible || r.notify.msg != MsgCannotPlay {
		t.Errorf("notice = %q visible=%v, want %q", r.notify.msg, r.notify.visible, MsgCannotPlay)
	}

	r.primary.playErr = nil
	r.c.TogglePrimary()
	r.settle(t)
	if !r.c.IsPlaying() || r.notify.visible {
		t.Errorf("retry: isPlaying=%v notice visible=%v", r.c.IsPlaying(), r.notify.visible)
	}
}

func TestUnavailablePrimary(t *testing.T) {
	r := &rig{
		primary:   newFakePlayer(),
		overlay:   newFakePlayer(),
		dialog:    &fakeDialog{},
		indicator: &fakeIndicator{},
		notify:    &fakeNotifier{},
		timers:    &timers{},
	}
	r.primary.loadErr = errors.New("no such file")
	r.build(t)

	if !r.indicator.disabled {
		t.Error("toggle not disabled after load failure")
	}
	if r.notify.msg != MsgUnavailable {
		t.Errorf("notice = %q, want %q", r.notify.msg, MsgUnavailable)
	}
	r.notify.Hide()
	r.c.TogglePrimary()
	r.settle(t)
	if r.primary.playCount() != 0 {
		t.Error("play requested on an unavailable track")
	}
	if !r.notify.visible || r.notify.msg != MsgUnavailable {
		t.Errorf("toggle notice = %q visible=%v", r.notify.msg, r.notify.visible)
	}
}

func TestOverlayResumesPrimaryAtSavedPosition(t *testing.T) {
	r := newRig(t)
	r.c.TogglePrimary()
	r.settle(t)
	r.primary.setPos(12400 * time.Millisecond)

	r.c.OpenOverlay()
	if r.c.IsPlaying() || !r.primary.Paused() {
		t.Error("background still playing under the overlay")
	}
	was, at, ok := r.c.Saved()
	if !ok || !was || at != 12400*time.Millisecond {
		t.Errorf("Saved = %v,%v,%v, want true,12.4s,true", was, at, ok)
	}
	if !r.dialog.open {
		t.Error("dialog not open")
	}
	r.settle(t)
	if r.overlay.Paused() || r.overlay.Position() != 0 || r.overlay.volume != 0.9 {
		t.Errorf("overlay paused=%v pos=%v volume=%v", r.overlay.Paused(), r.overlay.Position(), r.overlay.volume)
	}

	// The background drifts while paused, e.g. a stray seek.
	r.primary.setPos(3 * time.Second)
	r.c.CloseOverlay(CloseButton)
	if r.dialog.open {
		t.Error("dialog still open")
	}
	if !r.overlay.Paused() {
		t.Error("overlay still playing")
	}
	r.settle(t)

	if r.primary.Paused() || !r.c.IsPlaying() || !r.indicator.playing {
		t.Errorf("background not resumed: paused=%v isPlaying=%v indicator=%v",
			r.primary.Paused(), r.c.IsPlaying(), r.indicator.playing)
	}
	if got := r.primary.Position(); got != 12400*time.Millisecond {
		t.Errorf("resumed at %v, want 12.4s", got)
	}
	if _, _, ok := r.c.Saved(); ok {
		t.Error("overlay snapshot survived close")
	}
}

func TestOverlayLeavesPausedPrimaryPaused(t *testing.T) {
	r := newRig(t)
	r.c.OpenOverlay()
	r.settle(t)
	r.c.CloseOverlay(OutsideClick)
	r.settle(t)

	if !r.primary.Paused() || r.c.IsPlaying() || r.indicator.playing {
		t.Error("background started by the overlay")
	}
	if r.primary.playCount() != 0 {
		t.Errorf("background play requested %d times, want 0", r.primary.playCount())
	}
}

func TestResumeFailureIsSilent(t *testing.T) {
	r := newRig(t)
	r.c.TogglePrimary()
	r.settle(t)
	r.c.OpenOverlay()
	r.settle(t)

	r.primary.playErr = errors.New("device lost")
	r.c.CloseOverlay(Escape)
	r.settle(t)

	if r.notify.visible {
		t.Errorf("resume failure surfaced %q", r.notify.msg)
	}
	if r.c.IsPlaying() || r.indicator.playing {
		t.Error("indicator shows playing after a failed resume")
	}
}

func TestOverlayPlayRejected(t *testing.T) {
	r := newRig(t)
	r.overlay.playErr = errors.New("decode error")
	r.c.OpenOverlay()
	r.settle(t)

	if !r.notify.visible || r.notify.msg != MsgCannotPlay {
		t.Errorf("notice = %q visible=%v", r.notify.msg, r.notify.visible)
	}
	if !r.c.OverlayOpen() {
		t.Error("overlay closed by a play failure")
	}
}

func TestDialogFallback(t *testing.T) {
	r := newRig(t)
	r.dialog.openErr = errors.New("no content")
	r.c.OpenOverlay()
	if !r.dialog.open || !r.dialog.forced {
		t.Error("dialog not force-opened after Open failed")
	}
}

func TestRetriggerRestartsAndRearms(t *testing.T) {
	r := newRig(t)
	r.c.TogglePrimary()
	r.settle(t)
	r.primary.setPos(5 * time.Second)

	r.c.OpenOverlay()
	r.settle(t)
	first := r.timers.last()
	r.overlay.setPos(4 * time.Second)

	r.c.OpenOverlay()
	r.settle(t)

	if !first.stopped {
		t.Error("first auto-close timer not cancelled")
	}
	if len(r.timers.all) != 2 || r.timers.last().stopped {
		t.Errorf("timers = %d, want a fresh second one", len(r.timers.all))
	}
	if r.overlay.Position() != 0 {
		t.Errorf("overlay at %v, want restarted from 0", r.overlay.Position())
	}
	if r.overlay.playCount() != 2 {
		t.Errorf("overlay plays = %d, want 2", r.overlay.playCount())
	}
	if was, at, _ := r.c.Saved(); !was || at != 5*time.Second {
		t.Errorf("snapshot = %v,%v, want the first one (true, 5s)", was, at)
	}

	// The cancelled timer firing late must not close anything.
	first.f()
	r.c.Poll()
	if !r.c.OverlayOpen() {
		t.Error("stale timer closed the overlay")
	}
}

func TestAutoCloseTimer(t *testing.T) {
	r := newRig(t)
	r.c.TogglePrimary()
	r.settle(t)
	r.c.OpenOverlay()
	r.settle(t)

	tm := r.timers.last()
	if tm.d != 10*time.Second {
		t.Errorf("timer = %v, want 10s", tm.d)
	}
	tm.f()
	r.c.Poll()
	if r.c.OverlayOpen() || r.dialog.open {
		t.Fatal("auto-close did not close the overlay")
	}
	r.settle(t)
	if !r.c.IsPlaying() {
		t.Error("background not resumed after auto-close")
	}
}

func TestAutoCloseDisabled(t *testing.T) {
	r := &rig{
		primary:   newFakePlayer(),
		overlay:   newFakePlayer(),
		dialog:    &fakeDialog{},
		indicator: &fakeIndicator{},
		notify:    &fakeNotifier{},
		timers:    &timers{},
	}
	r.c = New(r.primary, r.overlay, r.dialog, r.indicator, r.notify, Options{AfterFunc: r.timers.after})
	t.Cleanup(r.c.Close)

	r.c.OpenOverlay()
	r.settle(t)
	if len(r.timers.all) != 0 {
		t.Errorf("armed %d timers with auto-close disabled", len(r.timers.all))
	}
}

func TestOverlayEndedCloses(t *testing.T) {
	r := newRig(t)
	r.c.TogglePrimary()
	r.settle(t)
	r.c.OpenOverlay()
	r.settle(t)

	r.c.OverlayEnded()
	r.c.Poll()
	if r.c.OverlayOpen() {
		t.Fatal("natural end did not close the overlay")
	}
	if !r.timers.last().stopped {
		t.Error("auto-close timer left armed")
	}
	r.settle(t)
	if r.primary.Paused() {
		t.Error("background not resumed after natural end")
	}
}

func TestStaleEndedIgnored(t *testing.T) {
	r := newRig(t)
	r.c.OpenOverlay()
	r.settle(t)
	r.c.OverlayEnded()
	r.c.OpenOverlay() // restart bumps the generation
	r.settle(t)
	r.c.Poll()
	if !r.c.OverlayOpen() {
		t.Error("end of the previous playthrough closed the restarted overlay")
	}
}

func TestToggleIgnoredWhileOverlayOpen(t *testing.T) {
	r := newRig(t)
	r.c.OpenOverlay()
	r.settle(t)
	r.c.TogglePrimary()
	r.settle(t)
	if r.primary.playCount() != 0 {
		t.Error("background toggled under the modal")
	}
}

func TestLatePlayUnderOverlayIsPaused(t *testing.T) {
	r := newRig(t)
	r.primary.gate = make(chan struct{})
	r.c.TogglePrimary() // request in flight
	r.c.OpenOverlay()
	close(r.primary.gate)
	r.settle(t)

	if !r.primary.Paused() {
		t.Error("late background play left running under the overlay")
	}
	if was, _, _ := r.c.Saved(); was {
		t.Error("uncommitted play recorded as playing")
	}
}

func TestQuickReopenKeepsBackgroundIntent(t *testing.T) {
	r := newRig(t)
	r.c.TogglePrimary()
	r.settle(t)
	r.primary.setPos(12 * time.Second)
	r.c.OpenOverlay()
	r.settle(t)

	// Close, then reopen while the resume is still in flight.
	r.primary.gate = make(chan struct{})
	r.c.CloseOverlay(CloseButton)
	r.c.OpenOverlay()
	if was, at, _ := r.c.Saved(); !was || at != 12*time.Second {
		t.Errorf("snapshot = %v,%v, want true,12s", was, at)
	}
	close(r.primary.gate)
	r.settle(t)
	if !r.primary.Paused() {
		t.Error("late resume left running under the reopened overlay")
	}

	r.c.CloseOverlay(CloseButton)
	r.settle(t)
	if r.primary.Paused() || !r.c.IsPlaying() || !r.indicator.playing {
		t.Errorf("after second close: paused=%v isPlaying=%v indicator=%v",
			r.primary.Paused(), r.c.IsPlaying(), r.indicator.playing)
	}
	if got := r.primary.Position(); got != 12*time.Second {
		t.Errorf("resumed at %v, want 12s", got)
	}
}

func TestIndicatorSyncedAcrossOverlay(t *testing.T) {
	r := newRig(t)
	r.c.TogglePrimary()
	r.settle(t)

	r.c.OpenOverlay()
	if r.indicator.playing || r.c.IsPlaying() {
		t.Errorf("under the overlay: indicator=%v isPlaying=%v", r.indicator.playing, r.c.IsPlaying())
	}
	r.settle(t)

	r.primary.gate = make(chan struct{})
	syncs := r.indicator.syncs
	r.c.CloseOverlay(CloseButton)
	if r.indicator.syncs != syncs+1 || r.indicator.playing {
		t.Errorf("on close: syncs=%d playing=%v, want one sync to the paused state",
			r.indicator.syncs-syncs, r.indicator.playing)
	}
	close(r.primary.gate)
	r.settle(t)
	if r.indicator.syncs != syncs+2 || !r.indicator.playing {
		t.Errorf("after resume: syncs=%d playing=%v, want a second sync to playing",
			r.indicator.syncs-syncs, r.indicator.playing)
	}
}
