package ui

import (
	"errors"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/linkcard/internal/surface"
)

// ErrNoContent is returned by Dialog.Open when there is no image to show.
var ErrNoContent = errors.New("dialog has no content")

// Dialog is the modal easter-egg box. Clicks outside Rect dismiss it.
type Dialog struct {
	Rect    Rect
	Image   *ebiten.Image
	Caption string

	close  Button
	open   bool
	forced bool
}

func NewDialog(img *ebiten.Image, caption string) *Dialog {
	return &Dialog{Image: img, Caption: caption, close: Button{Label: "x"}}
}

// Layout centres the dialog in a w*h viewport.
func (d *Dialog) Layout(w, h, dw, dh float64) {
	dw = min(dw, w-24)
	dh = min(dh, h-24)
	d.Rect = Rect{X: (w - dw) / 2, Y: (h - dh) / 2, W: dw, H: dh}
	d.close.Rect = Rect{X: d.Rect.X + d.Rect.W - 34, Y: d.Rect.Y + 8, W: 26, H: 26}
}

// Open shows the dialog with its image.
func (d *Dialog) Open() error {
	if d.Image == nil {
		return ErrNoContent
	}
	d.open, d.forced = true, false
	return nil
}

// ForceOpen shows the dialog even without an image, caption only.
func (d *Dialog) ForceOpen() { d.open, d.forced = true, true }

func (d *Dialog) Close()       { d.open = false }
func (d *Dialog) IsOpen() bool { return d.open }

func (d *Dialog) Contains(x, y float64) bool { return d.Rect.Contains(x, y) }

// DialogAction is what a pointer event did to an open dialog.
type DialogAction int

const (
	DialogNone DialogAction = iota
	DialogCloseButton
	DialogOutside
)

// Update routes the pointer while the dialog is open. Being modal, it
// consumes every click.
func (d *Dialog) Update(p Pointer) DialogAction {
	if !d.open {
		return DialogNone
	}
	if d.close.Update(p) {
		return DialogCloseButton
	}
	if p.Pressed && !d.Contains(p.X, p.Y) {
		return DialogOutside
	}
	return DialogNone
}

func (d *Dialog) Draw(c Canvas, viewW, viewH float64) {
	if !d.open {
		return
	}
	c.FillRect(0, 0, viewW, viewH, color.NRGBA{A: 150})
	r := d.Rect
	c.FillRect(r.X, r.Y, r.W, r.H, panelColor)
	c.StrokeRect(r.X, r.Y, r.W, r.H, 2, color.NRGBA{R: 255, G: 215, B: 0, A: 140})

	captionY := r.Y + r.H - textHeight - 14
	if d.Image != nil && !d.forced {
		b := d.Image.Bounds()
		iw, ih := float64(b.Dx()), float64(b.Dy())
		maxW, maxH := r.W-32, captionY-r.Y-50
		scale := min(maxW/iw, maxH/ih)
		w, h := iw*scale, ih*scale
		c.DrawImage(d.Image, r.X+(r.W-w)/2, r.Y+42, w, h, 1)
	}
	if d.Caption != "" {
		tw := surface.TextWidth(d.Caption)
		c.Text(d.Caption, r.X+(r.W-tw)/2, captionY, textColor)
	}
	d.close.Draw(c)
}
