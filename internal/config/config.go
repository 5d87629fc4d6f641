package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	WindowWidth  = 1024
	WindowHeight = 720

	// Music button
	MusicButtonWidth  = 132
	MusicButtonHeight = 34
	MusicButtonMargin = 20

	// Link cards
	CardWidth   = 360
	CardHeight  = 48
	CardSpacing = 14

	// Card entrance: first card after CardDelay, each next one CardStagger later.
	CardDelay   = 200 * time.Millisecond
	CardStagger = 100 * time.Millisecond

	// Dialog
	DialogWidth  = 420
	DialogHeight = 380

	CopiedFor = 2000 * time.Millisecond
)

// Link is one entry on the card list.
type Link struct {
	Label string
	URL   string
}

// Config holds runtime configuration, loaded from environment variables.
type Config struct {
	Title        string
	DisplayName  string
	Bio          string
	WindowWidth  int
	WindowHeight int

	// Audio assets
	MusicPath        string
	OverlayMusicPath string
	OverlayImagePath string
	MusicVolume      float64 // linear, 0..1
	OverlayVolume    float64 // linear, 0..1
	AutoClose        time.Duration

	CopyText         string
	Links            []Link
	ParallaxMinWidth int
	Seed             uint64 // 0 seeds from the clock
}

var defaultLinks = []Link{
	{Label: "Instagram", URL: "https://instagram.com/"},
	{Label: "TikTok", URL: "https://tiktok.com/"},
	{Label: "YouTube", URL: "https://youtube.com/"},
	{Label: "Twitch", URL: "https://twitch.tv/"},
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Title:        envStr("LINKCARD_TITLE", "linkcard"),
		DisplayName:  envStr("LINKCARD_NAME", "@me"),
		Bio:          envStr("LINKCARD_BIO", "links, music and one secret button"),
		WindowWidth:  envInt("LINKCARD_WIDTH", WindowWidth),
		WindowHeight: envInt("LINKCARD_HEIGHT", WindowHeight),

		MusicPath:        envStr("LINKCARD_MUSIC", "assets/music.mp3"),
		OverlayMusicPath: envStr("LINKCARD_OVERLAY_MUSIC", "assets/troll.mp3"),
		OverlayImagePath: envStr("LINKCARD_OVERLAY_IMAGE", "assets/cat.png"),
		MusicVolume:      envFloat("LINKCARD_MUSIC_VOLUME", 0.35),
		OverlayVolume:    envFloat("LINKCARD_OVERLAY_VOLUME", 0.9),
		AutoClose:        envDuration("LINKCARD_AUTOCLOSE", 10*time.Second),

		CopyText:         envStr("LINKCARD_COPY", "https://example.com/me"),
		Links:            envLinks("LINKCARD_LINKS", defaultLinks),
		ParallaxMinWidth: envInt("LINKCARD_PARALLAX_MIN_WIDTH", 768),
		Seed:             uint64(envInt("LINKCARD_SEED", 0)),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// envDuration accepts Go durations ("8s") or bare seconds ("8").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

// envLinks parses "Label=url;Label=url". Malformed entries are skipped;
// if nothing usable remains the fallback is returned.
func envLinks(key string, fallback []Link) []Link {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var links []Link
	for _, entry := range strings.Split(v, ";") {
		label, url, ok := strings.Cut(entry, "=")
		label, url = strings.TrimSpace(label), strings.TrimSpace(url)
		if !ok || label == "" || url == "" {
			continue
		}
		links = append(links, Link{Label: label, URL: url})
	}
	if len(links) == 0 {
		return fallback
	}
	return links
}
