package ui

import (
	"image/color"

	"github.com/iburimskiy/linkcard/internal/surface"
)

// Button fires on release when the press also started inside it.
type Button struct {
	Rect     Rect
	Label    string
	Disabled bool
	Hidden   bool

	hovered bool
	pressed bool
}

// Update tracks hover and press state and reports a completed click.
func (b *Button) Update(p Pointer) bool {
	if b.Hidden {
		b.hovered, b.pressed = false, false
		return false
	}
	b.hovered = b.Rect.Contains(p.X, p.Y)
	if b.Disabled {
		b.pressed = false
		return false
	}
	if b.hovered && p.Pressed {
		b.pressed = true
	}
	clicked := false
	if p.Released {
		clicked = b.pressed && b.hovered
		b.pressed = false
	}
	return clicked
}

func (b *Button) Hovered() bool { return b.hovered }

func (b *Button) Draw(c Canvas) {
	if b.Hidden {
		return
	}
	bg := color.NRGBA{R: 30, G: 30, B: 30, A: 220}
	switch {
	case b.Disabled:
		bg = color.NRGBA{R: 30, G: 30, B: 30, A: 120}
	case b.pressed:
		bg = color.NRGBA{R: 60, G: 52, B: 20, A: 230}
	case b.hovered:
		bg = color.NRGBA{R: 48, G: 44, B: 28, A: 230}
	}
	r := b.Rect
	c.FillRect(r.X, r.Y, r.W, r.H, bg)
	c.StrokeRect(r.X, r.Y, r.W, r.H, 1, edgeColor)

	fg := color.Color(textColor)
	if b.Disabled {
		fg = mutedColor
	}
	tw := surface.TextWidth(b.Label)
	c.Text(b.Label, r.X+(r.W-tw)/2, r.Y+(r.H-textHeight)/2, fg)
}
