// Package capture takes full-desktop screenshots aligned to the pointer
// coordinate space and encodes them as PNG.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"github.com/haasonsaas/cu-mcp/internal/media"
)

// MIMEType is the content type of every encoded capture.
const MIMEType = "image/png"

// Grabber acquires one raster covering the whole virtual display.
type Grabber interface {
	Grab(ctx context.Context) (image.Image, error)
}

// ScreenSizer reports the logical screen size used by pointer operations.
type ScreenSizer interface {
	ScreenSize() (width, height int, err error)
}

// Observer receives capture timings and payload sizes. err is nil on success.
type Observer interface {
	ObserveCapture(elapsed time.Duration, pngBytes int, err error)
}

// Error reports a failed capture step.
type Error struct {
	// Op is the failing step: "size", "grab" or "encode".
	Op    string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("screen capture %s failed: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("screen capture %s failed", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Result is an encoded capture plus the factors that map image pixels back to
// logical pointer coordinates.
type Result struct {
	PNG         []byte         `json:"-"`
	ImageWidth  int            `json:"image_width"`
	ImageHeight int            `json:"image_height"`
	Logical     media.Geometry `json:"logical"`
	ScaleX      float64        `json:"scale_x"`
	ScaleY      float64        `json:"scale_y"`
}

// ImageFormat implements the log summary contract for image payloads.
func (r *Result) ImageFormat() string { return "png" }

// ImageByteSize implements the log summary contract for image payloads.
func (r *Result) ImageByteSize() int { return len(r.PNG) }

// Options configures a Service.
type Options struct {
	// MaxEdge bounds the longest edge of the encoded image. 0 disables bounding.
	MaxEdge int
	// CompressLevel is the PNG effort from 0 to 9.
	CompressLevel int
	Observer      Observer
}

// Service runs the capture pipeline: grab, normalize to logical size, bound,
// encode. It keeps no state between calls.
type Service struct {
	grabber Grabber
	sizer   ScreenSizer
	opts    Options
}

// NewService creates a Service. sizer may be nil when every caller supplies
// the logical geometry.
func NewService(grabber Grabber, sizer ScreenSizer, opts Options) *Service {
	return &Service{grabber: grabber, sizer: sizer, opts: opts}
}

// Capture grabs the desktop and returns the encoded image. When logical is nil
// the current logical screen size is queried from the ScreenSizer.
func (s *Service) Capture(ctx context.Context, logical *media.Geometry) (res *Result, err error) {
	start := time.Now()
	defer func() {
		if s.opts.Observer == nil {
			return
		}
		size := 0
		if res != nil {
			size = len(res.PNG)
		}
		s.opts.Observer.ObserveCapture(time.Since(start), size, err)
	}()

	geometry, err := s.resolveGeometry(logical)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: "grab", Cause: err}
	}
	raw, err := s.grabber.Grab(ctx)
	if err != nil {
		return nil, &Error{Op: "grab", Cause: err}
	}
	if raw == nil {
		return nil, &Error{Op: "grab", Cause: fmt.Errorf("grabber returned no image")}
	}

	img := media.NormalizeToLogical(raw, geometry)
	img = media.BoundToEdge(img, s.opts.MaxEdge)

	var buf bytes.Buffer
	if err := Encode(&buf, img, s.opts.CompressLevel); err != nil {
		return nil, &Error{Op: "encode", Cause: err}
	}

	b := img.Bounds()
	return newResult(buf.Bytes(), b.Dx(), b.Dy(), geometry), nil
}

func (s *Service) resolveGeometry(logical *media.Geometry) (media.Geometry, error) {
	if logical != nil {
		return *logical, nil
	}
	if s.sizer == nil {
		return media.Geometry{}, nil
	}
	w, h, err := s.sizer.ScreenSize()
	if err != nil {
		return media.Geometry{}, &Error{Op: "size", Cause: err}
	}
	return media.Geometry{Width: w, Height: h}, nil
}

func newResult(png []byte, width, height int, logical media.Geometry) *Result {
	return &Result{
		PNG:         png,
		ImageWidth:  width,
		ImageHeight: height,
		Logical:     logical,
		ScaleX:      ratio(logical.Width, width),
		ScaleY:      ratio(logical.Height, height),
	}
}

// ratio returns logical/image, or 1.0 when the image side is zero.
func ratio(logical, image int) float64 {
	if image == 0 {
		return 1.0
	}
	return float64(logical) / float64(image)
}
