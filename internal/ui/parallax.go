package ui

import (
	"image/color"
	"math"

	"github.com/charmbracelet/harmonica"
)

const (
	// parallaxRange is the glow's travel across the viewport, in percent.
	parallaxRange = 30
	glowRings     = 14

	// glowReach is where the gradient fades out, relative to the farthest corner.
	glowReach = 0.55
)

var glowColor = color.NRGBA{R: 255, G: 215, B: 0, A: 26} // 0.10

// Parallax is a soft gold glow that drifts toward the cursor. It is off on
// narrow viewports.
type Parallax struct {
	MinWidth float64

	spring   harmonica.Spring
	x, y     float64 // glow centre, percent of viewport
	vx, vy   float64
	tx, ty   float64
	disabled bool
}

func NewParallax(minWidth float64, fps int) *Parallax {
	return &Parallax{
		MinWidth: minWidth,
		spring:   harmonica.NewSpring(harmonica.FPS(fps), 6.0, 0.9),
		x:        50, y: 50, tx: 50, ty: 50,
	}
}

// Target maps a cursor position to the glow centre in percent.
func Target(cx, cy, w, h float64) (px, py float64) {
	x := (cx/w - 0.5) * parallaxRange
	y := (cy/h - 0.5) * parallaxRange
	return 50 + x*0.5, 50 + y*0.5
}

func (p *Parallax) Enabled() bool { return !p.disabled }

// Update moves the glow toward the cursor for a w*h viewport.
func (p *Parallax) Update(cx, cy, w, h float64) {
	p.disabled = w <= p.MinWidth || w <= 0 || h <= 0
	if p.disabled {
		return
	}
	p.tx, p.ty = Target(cx, cy, w, h)
	p.x, p.vx = p.spring.Update(p.x, p.vx, p.tx)
	p.y, p.vy = p.spring.Update(p.y, p.vy, p.ty)
}

// Centre is the current glow centre in percent.
func (p *Parallax) Centre() (x, y float64) { return p.x, p.y }

// Draw approximates a radial gradient with stacked translucent discs.
func (p *Parallax) Draw(c Canvas, w, h float64) {
	if !p.Enabled() {
		return
	}
	px, py := p.Centre()
	cx, cy := w*px/100, h*py/100
	far := math.Hypot(math.Max(cx, w-cx), math.Max(cy, h-cy))
	reach := far * glowReach
	step := float64(glowColor.A) / glowRings
	for i := glowRings; i >= 1; i-- {
		ring := glowColor
		ring.A = uint8(step)
		c.FillCircle(cx, cy, reach*float64(i)/glowRings, ring)
	}
}
