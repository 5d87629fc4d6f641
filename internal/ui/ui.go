// Package ui holds the hand-drawn widgets of the card: buttons, the music
// toggle, the error banner, the easter-egg dialog, link cards, the cursor
// glow and the copy button. Coordinates are in CSS units.
package ui

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Canvas is the drawing surface widgets render onto.
type Canvas interface {
	FillRect(x, y, w, h float64, clr color.Color)
	StrokeRect(x, y, w, h, width float64, clr color.Color)
	FillCircle(x, y, r float64, clr color.Color)
	Text(s string, x, y float64, clr color.Color)
	DrawImage(img *ebiten.Image, x, y, w, h, alpha float64)
}

// Pointer is the mouse state for one tick.
type Pointer struct {
	X, Y     float64
	Pressed  bool // left button went down this tick
	Released bool // left button went up this tick
}

type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

var (
	textColor  = color.NRGBA{R: 240, G: 240, B: 240, A: 255}
	mutedColor = color.NRGBA{R: 160, G: 160, B: 160, A: 255}
	panelColor = color.NRGBA{R: 22, G: 22, B: 22, A: 220}
	edgeColor  = color.NRGBA{R: 255, G: 215, B: 0, A: 70}
)

// textHeight is the line height of the debug font in CSS units.
const textHeight = 13

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// formatDuration formats a duration as MM:SS
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(float64(c.A) * clamp01(a))
	return c
}
