// Package surface sizes the backing store to the window at the device
// scale factor and lets everything else draw in unscaled (CSS) units.
package surface

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

// MaxRatio bounds the backing store on very dense displays.
const MaxRatio = 2

var face = text.NewGoXFace(basicfont.Face7x13)

// State is the result of the last Configure call.
type State struct {
	PixelW, PixelH int
	Ratio          float64
	CSSW, CSSH     float64
}

// Configure computes backing-store and display sizes for a viewport.
// A ratio that is unknown (<= 0) counts as 1.
func Configure(viewportW, viewportH, dpr float64) State {
	ratio := dpr
	if ratio <= 0 {
		ratio = 1
	}
	if ratio > MaxRatio {
		ratio = MaxRatio
	}
	return State{
		PixelW: int(math.Floor(viewportW * ratio)),
		PixelH: int(math.Floor(viewportH * ratio)),
		Ratio:  ratio,
		CSSW:   viewportW,
		CSSH:   viewportH,
	}
}

// Adapter tracks the window size and reconfigures on every change.
type Adapter struct {
	state State
	ratio func() float64
}

// NewAdapter takes the device scale source; nil uses the current monitor.
func NewAdapter(ratio func() float64) *Adapter {
	if ratio == nil {
		ratio = func() float64 { return ebiten.Monitor().DeviceScaleFactor() }
	}
	return &Adapter{ratio: ratio}
}

// Layout is meant to be called from ebiten's Layout hook. changed reports a
// resize (or a scale change, e.g. the window moved to another monitor).
func (a *Adapter) Layout(outsideW, outsideH int) (pixelW, pixelH int, changed bool) {
	next := Configure(float64(outsideW), float64(outsideH), a.ratio())
	if next != a.state {
		a.state = next
		changed = true
	}
	return a.state.PixelW, a.state.PixelH, changed
}

func (a *Adapter) State() State { return a.state }

// ToCSS maps a cursor position in backing-store pixels to CSS units.
func (a *Adapter) ToCSS(px, py int) (float64, float64) {
	r := a.state.Ratio
	if r == 0 {
		r = 1
	}
	return float64(px) / r, float64(py) / r
}

// Wrap returns a drawing surface over dst using the current scale.
func (a *Adapter) Wrap(dst *ebiten.Image) *Surface {
	r := a.state.Ratio
	if r == 0 {
		r = 1
	}
	return &Surface{dst: dst, ratio: r, w: a.state.CSSW, h: a.state.CSSH}
}

// Surface draws onto an ebiten image; all coordinates are CSS units.
type Surface struct {
	dst   *ebiten.Image
	ratio float64
	w, h  float64
}

func (s *Surface) Size() (float64, float64) { return s.w, s.h }

func (s *Surface) FillRect(x, y, w, h float64, clr color.Color) {
	px, py, pw, ph := scaleRect(s.ratio, x, y, w, h)
	vector.DrawFilledRect(s.dst, px, py, pw, ph, clr, false)
}

func (s *Surface) StrokeRect(x, y, w, h, width float64, clr color.Color) {
	px, py, pw, ph := scaleRect(s.ratio, x, y, w, h)
	vector.StrokeRect(s.dst, px, py, pw, ph, float32(width*s.ratio), clr, true)
}

func (s *Surface) FillCircle(x, y, radius float64, clr color.Color) {
	px, py, r, _ := scaleRect(s.ratio, x, y, radius, 0)
	vector.DrawFilledCircle(s.dst, px, py, r, clr, true)
}

// DrawImage stretches img into the given rectangle at the given opacity.
func (s *Surface) DrawImage(img *ebiten.Image, x, y, w, h, alpha float64) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM = imageGeoM(s.ratio, float64(b.Dx()), float64(b.Dy()), x, y, w, h)
	op.ColorScale.ScaleAlpha(float32(alpha))
	op.Filter = ebiten.FilterLinear
	s.dst.DrawImage(img, op)
}

// Text draws a single line with its top-left corner at (x, y).
func (s *Surface) Text(str string, x, y float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM = textGeoM(s.ratio, x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(s.dst, str, face, op)
}

// scaleRect maps a rectangle in CSS units to backing-store pixels.
func scaleRect(ratio, x, y, w, h float64) (px, py, pw, ph float32) {
	return float32(x * ratio), float32(y * ratio), float32(w * ratio), float32(h * ratio)
}

// imageGeoM stretches a srcW*srcH image onto the CSS rectangle (x, y, w, h).
func imageGeoM(ratio, srcW, srcH, x, y, w, h float64) ebiten.GeoM {
	var m ebiten.GeoM
	m.Scale(w*ratio/srcW, h*ratio/srcH)
	m.Translate(x*ratio, y*ratio)
	return m
}

// textGeoM renders glyphs at ratio size with their origin at CSS (x, y).
func textGeoM(ratio, x, y float64) ebiten.GeoM {
	var m ebiten.GeoM
	m.Scale(ratio, ratio)
	m.Translate(x*ratio, y*ratio)
	return m
}

// TextWidth is the advance of str in CSS units.
func TextWidth(str string) float64 {
	return text.Advance(str, face)
}
