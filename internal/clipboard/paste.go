package clipboard

import (
	"context"
	"fmt"
	"time"

	"github.com/haasonsaas/cu-mcp/internal/deferred"
)

// DefaultRestoreDelay is how long the pasted text stays on the clipboard
// before the previous content is put back.
const DefaultRestoreDelay = 400 * time.Millisecond

// Clipboard is the storage the Paster borrows.
type Clipboard interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, text string) error
}

// Hotkeyer presses a key chord.
type Hotkeyer interface {
	Hotkey(ctx context.Context, keys ...string) error
}

// Paster types text by pasting it, which handles any Unicode the keyboard
// simulation cannot.
type Paster struct {
	clipboard Clipboard
	keys      Hotkeyer
	queue     *deferred.Queue
	delay     time.Duration
	chord     []string
}

// NewPaster creates a Paster. goos selects the paste chord.
func NewPaster(clipboard Clipboard, keys Hotkeyer, queue *deferred.Queue, delay time.Duration, goos string) *Paster {
	if delay < 0 {
		delay = 0
	}
	return &Paster{
		clipboard: clipboard,
		keys:      keys,
		queue:     queue,
		delay:     delay,
		chord:     PasteChord(goos),
	}
}

// PasteChord is cmd+v on macOS and ctrl+v elsewhere.
func PasteChord(goos string) []string {
	if goos == "darwin" {
		return []string{"cmd", "v"}
	}
	return []string{"ctrl", "v"}
}

// Paste puts text on the clipboard, presses the paste chord and schedules
// restoration of the previous content. The returned task is nil when the
// previous content could not be read, in which case nothing is restored.
//
// Restoration is best effort. A second Paste inside the restore window races
// with the pending restoration and whichever write lands last wins.
func (p *Paster) Paste(ctx context.Context, text string) (*deferred.Task, error) {
	previous, readErr := p.clipboard.Read(ctx)

	if err := p.clipboard.Write(ctx, text); err != nil {
		return nil, fmt.Errorf("copy text to clipboard: %w", err)
	}
	pasteErr := p.keys.Hotkey(ctx, p.chord...)

	var task *deferred.Task
	if readErr == nil {
		// The request context is gone by the time the restore runs.
		restoreCtx := context.WithoutCancel(ctx)
		var err error
		task, err = p.queue.Schedule("clipboard-restore", p.delay, func() error {
			return p.clipboard.Write(restoreCtx, previous)
		})
		if err != nil {
			task = nil
		}
	}

	if pasteErr != nil {
		return task, fmt.Errorf("press paste shortcut: %w", pasteErr)
	}
	return task, nil
}
