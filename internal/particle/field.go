package particle

import (
	"image/color"
	"math"
	"math/rand/v2"
)

const (
	MinCount     = 18
	MaxCount     = 60
	AreaPerPoint = 24000

	// Margin is how far past an edge a particle drifts before it wraps.
	Margin = 10

	// StepMillis is the nominal frame a velocity is expressed against.
	StepMillis = 16

	// MaxDeltaMillis bounds a single step after a stall.
	MaxDeltaMillis = 32

	minRadius   = 0.6
	radiusRange = 2.2
	speedRange  = 0.35
	minAlpha    = 0.12
	alphaRange  = 0.45
)

var (
	Gold = [3]uint8{255, 215, 0}
	Red  = [3]uint8{255, 68, 68}

	// Trail is painted over the whole viewport before every frame; older
	// frames bleed through at 8%.
	Trail = color.NRGBA{R: 10, G: 10, B: 10, A: 20}
)

// Canvas is what the field draws onto, in viewport units.
type Canvas interface {
	Size() (w, h float64)
	FillRect(x, y, w, h float64, clr color.Color)
	FillCircle(x, y, r float64, clr color.Color)
}

type Particle struct {
	X, Y   float64
	VX, VY float64
	R      float64
	RGB    [3]uint8
	Alpha  float64
}

// Color is the particle's fill with its alpha applied.
func (p Particle) Color() color.NRGBA {
	return color.NRGBA{R: p.RGB[0], G: p.RGB[1], B: p.RGB[2], A: uint8(math.Round(p.Alpha * 255))}
}

// Field is a set of drifting points that wrap around the viewport edges.
type Field struct {
	P    []Particle
	W, H float64
	rng  *rand.Rand
}

// NewField builds and populates a field for the given viewport.
func NewField(w, h float64, rng *rand.Rand) *Field {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	f := &Field{rng: rng}
	f.Reinitialize(w, h)
	return f
}

// Count returns how many particles a viewport of w*h gets.
func Count(w, h float64) int {
	n := int(math.Floor(w * h / AreaPerPoint))
	if n < MinCount {
		return MinCount
	}
	if n > MaxCount {
		return MaxCount
	}
	return n
}

// Reinitialize discards every particle and scatters a new batch over the
// viewport. Call it after every resize.
func (f *Field) Reinitialize(w, h float64) {
	f.W, f.H = w, h
	n := Count(w, h)
	f.P = make([]Particle, n)
	for i := range f.P {
		rgb := Red
		if f.rng.Float64() > 0.5 {
			rgb = Gold
		}
		f.P[i] = Particle{
			X:     f.rng.Float64() * w,
			Y:     f.rng.Float64() * h,
			R:     f.rng.Float64()*radiusRange + minRadius,
			VX:    (f.rng.Float64() - 0.5) * speedRange,
			VY:    (f.rng.Float64() - 0.5) * speedRange,
			RGB:   rgb,
			Alpha: f.rng.Float64()*alphaRange + minAlpha,
		}
	}
}

// Advance moves every particle by deltaMillis worth of velocity and wraps
// each axis independently.
func (f *Field) Advance(deltaMillis float64) {
	if deltaMillis > MaxDeltaMillis {
		deltaMillis = MaxDeltaMillis
	}
	if deltaMillis < 0 {
		deltaMillis = 0
	}
	step := deltaMillis / StepMillis
	for i := range f.P {
		p := &f.P[i]
		p.X = wrap(p.X+p.VX*step, f.W)
		p.Y = wrap(p.Y+p.VY*step, f.H)
	}
}

func wrap(v, extent float64) float64 {
	if v < -Margin {
		return extent + Margin
	}
	if v > extent+Margin {
		return -Margin
	}
	return v
}

// Render fades the previous frame and draws every particle on top.
func (f *Field) Render(c Canvas) {
	w, h := c.Size()
	c.FillRect(0, 0, w, h, Trail)
	for _, p := range f.P {
		c.FillCircle(p.X, p.Y, p.R, p.Color())
	}
}
