package ui

import (
	"image/color"
	"time"
)

const (
	LabelOn  = "Music: On"
	LabelOff = "Music: Off"
)

var (
	dotOn   = color.NRGBA{R: 255, G: 215, B: 0, A: 191} // 0.75
	glowOn  = color.NRGBA{R: 255, G: 215, B: 0, A: 115} // 0.45
	dotOff  = color.NRGBA{R: 255, G: 68, B: 68, A: 140} // 0.55
	glowOff = color.NRGBA{R: 255, G: 68, B: 68, A: 89}  // 0.35
)

// MusicButton is the background-track toggle: a status dot and a label.
// It is the session's indicator.
type MusicButton struct {
	Button

	playing bool
	pulse   float64

	position time.Duration
	duration time.Duration
}

func NewMusicButton(r Rect) *MusicButton {
	b := &MusicButton{Button: Button{Rect: r}}
	b.SetPlaying(false)
	return b
}

func (b *MusicButton) SetPlaying(playing bool) {
	b.playing = playing
	if playing {
		b.Label = LabelOn
	} else {
		b.Label = LabelOff
	}
}

func (b *MusicButton) SetDisabled(disabled bool) { b.Disabled = disabled }

// Pressed mirrors the toggle's pressed state for assistive readers.
func (b *MusicButton) Pressed() bool { return b.playing }

// Dot returns the status dot and glow colors for the current state.
func (b *MusicButton) Dot() (dot, glow color.NRGBA) {
	if b.playing {
		return dotOn, glowOn
	}
	return dotOff, glowOff
}

// SetLevel feeds the playing track's loudness into the dot pulse.
func (b *MusicButton) SetLevel(level float64) {
	b.pulse = 0.7*b.pulse + 0.3*clamp01(level)
}

// SetProgress is shown as a hover hint.
func (b *MusicButton) SetProgress(pos, dur time.Duration) {
	b.position, b.duration = pos, dur
}

func (b *MusicButton) Draw(c Canvas) {
	r := b.Rect
	bg := color.NRGBA{R: 20, G: 20, B: 20, A: 210}
	if b.Disabled {
		bg.A = 120
	} else if b.hovered {
		bg = color.NRGBA{R: 40, G: 36, B: 24, A: 220}
	}
	c.FillRect(r.X, r.Y, r.W, r.H, bg)
	c.StrokeRect(r.X, r.Y, r.W, r.H, 1, edgeColor)

	dot, glow := b.Dot()
	cx, cy := r.X+16, r.Y+r.H/2
	c.FillCircle(cx, cy, 7+4*b.pulse, glow)
	c.FillCircle(cx, cy, 4, dot)

	fg := color.Color(textColor)
	if b.Disabled {
		fg = mutedColor
	}
	c.Text(b.Label, r.X+30, r.Y+(r.H-textHeight)/2, fg)

	// A latched toggle is underlined.
	if b.Pressed() {
		c.FillRect(r.X+8, r.Y+r.H-3, r.W-16, 2, dot)
	}

	if b.hovered && b.duration > 0 {
		hint := formatDuration(b.position) + " / " + formatDuration(b.duration)
		c.Text(hint, r.X, r.Y+r.H+6, mutedColor)
	}
}
