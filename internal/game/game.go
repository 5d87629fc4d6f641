// Package game wires the card together: it owns the window loop, routes
// input to the widgets and the audio session, and draws every layer.
package game

import (
	"errors"
	"image/color"
	"log"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/ncruces/zenity"
	"github.com/pkg/browser"

	"github.com/iburimskiy/linkcard/internal/anim"
	"github.com/iburimskiy/linkcard/internal/audio"
	"github.com/iburimskiy/linkcard/internal/config"
	"github.com/iburimskiy/linkcard/internal/particle"
	"github.com/iburimskiy/linkcard/internal/session"
	"github.com/iburimskiy/linkcard/internal/surface"
	"github.com/iburimskiy/linkcard/internal/ui"
)

var background = color.NRGBA{R: 10, G: 10, B: 10, A: 255}

type Game struct {
	cfg config.Config

	// rendering
	adapter *surface.Adapter
	clock   anim.Clock
	driver  *anim.Driver
	field   *particle.Field
	trail   *ebiten.Image
	rng     *rand.Rand
	layout  frame

	// audio
	primary *audio.Track
	overlay *audio.Track
	coord   *session.Coordinator

	// widgets
	music  *ui.MusicButton
	egg    *ui.Button
	copy   *ui.CopyButton
	banner *ui.ErrorBanner
	dialog *ui.Dialog
	cards  *ui.Cards
	glow   *ui.Parallax
}

// New builds every component once. Missing assets are logged and degrade
// the matching feature; they never fail construction.
func New(cfg config.Config) *Game {
	g := &Game{
		cfg:     cfg,
		adapter: surface.NewAdapter(nil),
		clock:   anim.SinceStart(),
	}
	g.driver = anim.NewDriver(g.clock)
	if cfg.Seed != 0 {
		g.rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed>>1|1))
	}

	g.primary = audio.Load("background", cfg.MusicPath, audio.Speaker, true)
	g.primary.SetVolume(cfg.MusicVolume)
	g.overlay = audio.Load("overlay", cfg.OverlayMusicPath, audio.Speaker, false)

	img, _, err := ebitenutil.NewImageFromFile(cfg.OverlayImagePath)
	if err != nil {
		log.Printf("Failed to load overlay image %q: %v", cfg.OverlayImagePath, err)
	}

	fps := ebiten.TPS()
	g.music = ui.NewMusicButton(ui.Rect{})
	g.banner = &ui.ErrorBanner{}
	g.dialog = ui.NewDialog(img, "gotcha")
	g.egg = &ui.Button{Label: "Surprise", Hidden: g.overlay.Err() != nil}
	g.copy = ui.NewCopyButton(ui.Rect{}, "Copy link", cfg.CopyText, config.CopiedFor,
		ui.SystemClipboard{}, ui.SelectDialog{}, nil)
	g.cards = ui.NewCards(cfg.Links, config.CardDelay, config.CardStagger, fps, browser.OpenURL)
	g.glow = ui.NewParallax(float64(cfg.ParallaxMinWidth), fps)

	g.coord = session.New(g.primary, g.overlay, g.dialog, g.music, g.banner, session.Options{
		OverlayVolume: cfg.OverlayVolume,
		AutoClose:     cfg.AutoClose,
	})
	g.overlay.OnEnded(g.coord.OverlayEnded)
	return g
}

func (g *Game) Update() error {
	if g.field != nil {
		g.driver.Step(g.field)
	} else {
		g.driver.Step(nil)
	}
	g.coord.Poll()

	p := g.pointer()
	if g.dialog.IsOpen() {
		switch g.dialog.Update(p) {
		case ui.DialogCloseButton:
			g.coord.CloseOverlay(session.CloseButton)
		case ui.DialogOutside:
			g.coord.CloseOverlay(session.OutsideClick)
		}
		// Modal: nothing underneath sees the click.
		p.Pressed, p.Released = false, false
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.coord.CloseOverlay(session.Escape)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.coord.TogglePrimary()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) && !g.egg.Hidden {
		g.coord.OpenOverlay()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) && !g.coord.OverlayOpen() {
		if err := g.pickTrack(); err != nil {
			log.Printf("Track picker failed: %v", err)
		}
	}

	if g.music.Update(p) {
		g.coord.TogglePrimary()
	}
	if g.egg.Update(p) {
		g.coord.OpenOverlay()
	}
	if g.copy.Update(p) {
		if err := g.copy.Copy(); err != nil {
			log.Printf("Copy failed: %v", err)
		}
	}
	g.copy.Tick()

	st := g.adapter.State()
	g.cards.Update(g.clock(), p)
	g.glow.Update(p.X, p.Y, st.CSSW, st.CSSH)

	if g.coord.IsPlaying() {
		g.music.SetLevel(g.primary.Level())
	} else {
		g.music.SetLevel(0)
	}
	g.music.SetProgress(g.primary.Position(), g.primary.Duration())
	return nil
}

func (g *Game) pointer() ui.Pointer {
	x, y := g.adapter.ToCSS(ebiten.CursorPosition())
	return ui.Pointer{
		X:        x,
		Y:        y,
		Pressed:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		Released: inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
	}
}

// pickTrack swaps the background source for a file chosen by the user.
func (g *Game) pickTrack() error {
	path, err := zenity.SelectFile(
		zenity.Title("Choose background music"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: audio.Extensions,
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}
	if err := g.primary.Replace(path); err != nil {
		g.banner.Show(session.MsgUnavailable)
		return err
	}
	g.coord.PrimaryReplaced()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	if g.field != nil && g.trail != nil {
		g.field.Render(g.adapter.Wrap(g.trail))
		screen.DrawImage(g.trail, nil)
	}

	s := g.adapter.Wrap(screen)
	w, h := s.Size()
	g.glow.Draw(s, w, h)
	g.drawHeader(s, w)
	g.cards.Draw(s)
	g.copy.Draw(s)
	g.egg.Draw(s)
	g.music.Draw(s)
	g.banner.Draw(s)
	g.dialog.Draw(s, w, h)
}

func (g *Game) drawHeader(s *surface.Surface, w float64) {
	name := g.cfg.DisplayName
	s.Text(name, (w-surface.TextWidth(name))/2, g.layout.HeaderY, color.White)
	bio := g.cfg.Bio
	s.Text(bio, (w-surface.TextWidth(bio))/2, g.layout.HeaderY+24, color.NRGBA{R: 180, G: 180, B: 180, A: 255})
}

// Layout renders at device resolution. A size or scale change rebuilds the
// particle field and the trail layer and reflows the widgets.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	pw, ph, changed := g.adapter.Layout(outsideWidth, outsideHeight)
	if pw < 1 || ph < 1 {
		return 1, 1
	}
	if changed || g.trail == nil {
		g.resize(pw, ph)
	}
	return pw, ph
}

func (g *Game) resize(pw, ph int) {
	st := g.adapter.State()
	if g.field == nil {
		g.field = particle.NewField(st.CSSW, st.CSSH, g.rng)
	} else {
		g.field.Reinitialize(st.CSSW, st.CSSH)
	}
	if g.trail != nil {
		g.trail.Deallocate()
	}
	g.trail = ebiten.NewImage(pw, ph)

	g.layout = computeFrame(st.CSSW, st.CSSH, len(g.cards.Items))
	g.music.Rect = g.layout.Music
	g.banner.X, g.banner.Y = g.layout.Banner.X, g.layout.Banner.Y
	g.egg.Rect = g.layout.Egg
	g.copy.Rect = g.layout.Copy
	g.cards.Layout(st.CSSW, cardsTop, config.CardWidth, config.CardHeight, config.CardSpacing)
	g.dialog.Layout(st.CSSW, st.CSSH, config.DialogWidth, config.DialogHeight)
	log.Printf("Viewport %vx%v at %vx (%d particles)", st.CSSW, st.CSSH, st.Ratio, len(g.field.P))
}

// Close stops audio and pending session work.
func (g *Game) Close() {
	g.coord.Close()
	for _, t := range []*audio.Track{g.primary, g.overlay} {
		if err := t.Close(); err != nil {
			log.Printf("Closing %s track: %v", t.Name(), err)
		}
	}
}
