package game

import (
	"testing"

	"github.com/iburimskiy/linkcard/internal/config"
)

func TestComputeFrame(t *testing.T) {
	f := computeFrame(1024, 720, 4)

	if f.Music.X+f.Music.W != 1024-config.MusicButtonMargin || f.Music.Y != config.MusicButtonMargin {
		t.Errorf("music button at %+v, want top-right with margin", f.Music)
	}
	if f.Banner.Y <= f.Music.Y+f.Music.H {
		t.Errorf("banner at y=%v overlaps the music button", f.Banner.Y)
	}
	if f.Copy.X+f.Copy.W/2 != 512 {
		t.Errorf("copy button not centred: %+v", f.Copy)
	}
	lastCard := cardsTop + 3*(config.CardHeight+config.CardSpacing) + config.CardHeight
	if f.Copy.Y < float64(lastCard) {
		t.Errorf("copy button y=%v overlaps the last card ending at %v", f.Copy.Y, lastCard)
	}
	if f.Egg.Y+f.Egg.H != 720-config.MusicButtonMargin {
		t.Errorf("easter-egg button at %+v, want bottom-left", f.Egg)
	}
}

func TestComputeFrameNarrowViewport(t *testing.T) {
	f := computeFrame(100, 400, 0)
	if f.Music.X < config.MusicButtonMargin {
		t.Errorf("music button pushed off-screen: %+v", f.Music)
	}
	if f.Banner.X < config.MusicButtonMargin {
		t.Errorf("banner pushed off-screen: %+v", f.Banner)
	}
}
