package ui

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/atotto/clipboard"
	"github.com/ncruces/zenity"
)

const LabelCopied = "Copied!"

// ClipboardWriter puts text on the system clipboard.
type ClipboardWriter interface {
	WriteAll(text string) error
}

// Fallback lets the user copy text by hand when the clipboard is blocked.
type Fallback interface {
	Copy(text string) error
}

// SystemClipboard writes through the OS clipboard tools.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard unsupported on this system")
	}
	return clipboard.WriteAll(text)
}

// SelectDialog shows the text preselected in a native entry box so the
// user can copy it with the keyboard.
type SelectDialog struct{}

func (SelectDialog) Copy(text string) error {
	_, err := zenity.Entry("Select the link and copy it:",
		zenity.Title("Copy link"),
		zenity.EntryText(text),
	)
	if err != nil && !errors.Is(err, zenity.ErrCanceled) {
		return err
	}
	return nil
}

// CopyButton copies Text and shows "Copied!" for CopiedFor.
type CopyButton struct {
	Button
	Text      string
	CopiedFor time.Duration

	label       string
	writer      ClipboardWriter
	fallback    Fallback
	now         func() time.Time
	copiedUntil time.Time
}

func NewCopyButton(r Rect, label, text string, copiedFor time.Duration, w ClipboardWriter, f Fallback, now func() time.Time) *CopyButton {
	if now == nil {
		now = time.Now
	}
	return &CopyButton{
		Button:    Button{Rect: r, Label: label},
		Text:      text,
		CopiedFor: copiedFor,
		label:     label,
		writer:    w,
		fallback:  f,
		now:       now,
	}
}

// Copy writes to the clipboard, falling back to manual selection. The
// fallback's own failure is returned to the caller.
func (b *CopyButton) Copy() error {
	if err := b.writer.WriteAll(b.Text); err != nil {
		log.Printf("Clipboard write failed, falling back to manual copy: %v", err)
		if b.fallback == nil {
			return fmt.Errorf("copy: %w", err)
		}
		if ferr := b.fallback.Copy(b.Text); ferr != nil {
			return fmt.Errorf("copy fallback: %w", ferr)
		}
	}
	b.copiedUntil = b.now().Add(b.CopiedFor)
	b.Label = LabelCopied
	return nil
}

// Tick reverts the label once the confirmation has been shown long enough.
func (b *CopyButton) Tick() {
	if b.Label == LabelCopied && !b.now().Before(b.copiedUntil) {
		b.Label = b.label
	}
}
