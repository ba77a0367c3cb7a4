package capture

import (
	"context"
	"errors"
	"image"

	"github.com/kbinani/screenshot"

	"github.com/haasonsaas/cu-mcp/internal/media"
)

// ErrNoDisplays is returned when no active display can be captured.
var ErrNoDisplays = errors.New("no active displays found")

// ScreenGrabber captures the union of all active displays.
type ScreenGrabber struct{}

// NewScreenGrabber returns the platform screen grabber.
func NewScreenGrabber() *ScreenGrabber {
	return &ScreenGrabber{}
}

// Grab captures one frame spanning every active display.
func (g *ScreenGrabber) Grab(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bounds, err := VirtualBounds()
	if err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, err
	}
	return media.ToRGBA(img), nil
}

// VirtualBounds returns the union of the bounds of all active displays.
func VirtualBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return image.Rectangle{}, ErrNoDisplays
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	if union.Empty() {
		return image.Rectangle{}, ErrNoDisplays
	}
	return union, nil
}
