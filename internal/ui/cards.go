package ui

import (
	"image/color"
	"log"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/iburimskiy/linkcard/internal/config"
	"github.com/iburimskiy/linkcard/internal/surface"
)

// entranceOffset is how far below its slot a card starts.
const entranceOffset = 24

// Card is one link with its own entrance spring.
type Card struct {
	Link   config.Link
	Rect   Rect
	Delay  time.Duration
	button Button
	pos    float64
	vel    float64
}

// Progress is the entrance animation position, 0 hidden to 1 settled.
func (c *Card) Progress() float64 { return c.pos }

// Cards fades link cards in one after another and opens a link on click.
type Cards struct {
	Items  []*Card
	spring harmonica.Spring
	open   func(url string) error
}

// NewCards staggers the entrance: card i starts after delay + i*stagger.
// open is called with the URL of a clicked card.
func NewCards(links []config.Link, delay, stagger time.Duration, fps int, open func(url string) error) *Cards {
	cs := &Cards{
		// Critically damped, settles in roughly 0.6s.
		spring: harmonica.NewSpring(harmonica.FPS(fps), 9.0, 1.0),
		open:   open,
	}
	for i, l := range links {
		cs.Items = append(cs.Items, &Card{
			Link:   l,
			Delay:  delay + time.Duration(i)*stagger,
			button: Button{Label: l.Label},
		})
	}
	return cs
}

// Layout stacks the cards from top, centred horizontally in width w.
func (cs *Cards) Layout(w, top, cardW, cardH, spacing float64) {
	cardW = min(cardW, w-32)
	for i, c := range cs.Items {
		c.Rect = Rect{X: (w - cardW) / 2, Y: top + float64(i)*(cardH+spacing), W: cardW, H: cardH}
		c.button.Rect = c.Rect
	}
}

// Update advances the entrance springs; elapsed is time since start.
// Cards only take clicks once they are mostly visible.
func (cs *Cards) Update(elapsed time.Duration, p Pointer) {
	for _, c := range cs.Items {
		target := 0.0
		if elapsed >= c.Delay {
			target = 1
		}
		c.pos, c.vel = cs.spring.Update(c.pos, c.vel, target)
		c.button.Disabled = c.pos < 0.5

		if c.button.Update(p) && cs.open != nil {
			if err := cs.open(c.Link.URL); err != nil {
				log.Printf("Failed to open %q: %v", c.Link.URL, err)
			}
		}
	}
}

func (cs *Cards) Draw(cv Canvas) {
	for _, c := range cs.Items {
		a := clamp01(c.Progress())
		if a == 0 {
			continue
		}
		r := c.Rect
		r.Y += (1 - a) * entranceOffset

		bg := panelColor
		if c.button.Hovered() && !c.button.Disabled {
			bg = color.NRGBA{R: 40, G: 36, B: 24, A: 230}
		}
		cv.FillRect(r.X, r.Y, r.W, r.H, withAlpha(bg, a))
		cv.StrokeRect(r.X, r.Y, r.W, r.H, 1, withAlpha(edgeColor, a))

		tw := surface.TextWidth(c.Link.Label)
		cv.Text(c.Link.Label, r.X+(r.W-tw)/2, r.Y+(r.H-textHeight)/2, withAlpha(textColor, a))
	}
}
