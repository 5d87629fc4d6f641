package ui

import (
	"image/color"

	"github.com/iburimskiy/linkcard/internal/surface"
)

// ErrorBanner is a one-line inline error under the music toggle.
type ErrorBanner struct {
	X, Y    float64
	text    string
	visible bool
}

func (e *ErrorBanner) Show(msg string) {
	e.text = msg
	e.visible = true
}

func (e *ErrorBanner) Hide()         { e.visible = false }
func (e *ErrorBanner) Visible() bool { return e.visible }
func (e *ErrorBanner) Text() string  { return e.text }

func (e *ErrorBanner) Draw(c Canvas) {
	if !e.visible || e.text == "" {
		return
	}
	w := surface.TextWidth(e.text) + 16
	c.FillRect(e.X, e.Y, w, textHeight+10, color.NRGBA{R: 60, G: 12, B: 12, A: 200})
	c.Text(e.text, e.X+8, e.Y+5, color.NRGBA{R: 255, G: 140, B: 140, A: 255})
}
