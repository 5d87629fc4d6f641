package game

import (
	"github.com/iburimskiy/linkcard/internal/config"
	"github.com/iburimskiy/linkcard/internal/ui"
)

const (
	headerY      = 48
	cardsTop     = 118
	copyWidth    = 160
	copyHeight   = 36
	eggWidth     = 110
	eggHeight    = 30
	bannerOffset = 26
)

// frame is where every widget sits in a w*h viewport, in CSS units.
type frame struct {
	Music   ui.Rect
	Banner  ui.Rect
	Egg     ui.Rect
	Copy    ui.Rect
	HeaderY float64
}

func computeFrame(w, h float64, cards int) frame {
	m := float64(config.MusicButtonMargin)
	f := frame{HeaderY: headerY}
	f.Music = ui.Rect{
		X: w - config.MusicButtonWidth - m,
		Y: m,
		W: config.MusicButtonWidth,
		H: config.MusicButtonHeight,
	}
	if f.Music.X < m {
		f.Music.X = m
	}
	f.Banner = ui.Rect{X: max(m, w-m-260), Y: f.Music.Y + f.Music.H + bannerOffset}

	stack := float64(cards) * (config.CardHeight + config.CardSpacing)
	f.Copy = ui.Rect{X: (w - copyWidth) / 2, Y: cardsTop + stack + 8, W: copyWidth, H: copyHeight}
	f.Egg = ui.Rect{X: m, Y: h - m - eggHeight, W: eggWidth, H: eggHeight}
	return f
}
