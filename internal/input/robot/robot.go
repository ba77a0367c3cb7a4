// Package robot is the robotgo implementation of input.Driver. It needs cgo
// and the platform input headers, so it is kept apart from package input.
package robot

import (
	"fmt"
	"os"
	"runtime"

	"github.com/go-vgo/robotgo"

	"github.com/haasonsaas/cu-mcp/internal/input"
)

// Driver drives the desktop through robotgo.
type Driver struct{}

var _ input.Driver = (*Driver)(nil)

// New checks that a display is reachable and returns the robotgo driver.
func New() (*Driver, error) {
	if runtime.GOOS == "linux" && os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return nil, input.ErrNoDisplay
	}
	// Pacing is the Controller's job.
	robotgo.MouseSleep = 0
	robotgo.KeySleep = 0
	return &Driver{}, nil
}

// Factory is the production factory for input.NewLazy.
func Factory() (input.Driver, error) {
	d, err := New()
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Driver) ScreenSize() (int, int, error) {
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("query screen size: got %dx%d", w, h)
	}
	return w, h, nil
}

func (d *Driver) Location() (int, int, error) {
	x, y := robotgo.Location()
	return x, y, nil
}

func (d *Driver) Move(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (d *Driver) Click(button string, double bool) error {
	name, err := buttonName(button)
	if err != nil {
		return err
	}
	robotgo.Click(name, double)
	return nil
}

func (d *Driver) Scroll(dx, dy int) error {
	robotgo.Scroll(dx, dy)
	return nil
}

func (d *Driver) MouseToggle(button string, down bool) error {
	name, err := buttonName(button)
	if err != nil {
		return err
	}
	if err := robotgo.Toggle(name, direction(down)); err != nil {
		return fmt.Errorf("toggle %s button: %w", button, err)
	}
	return nil
}

func (d *Driver) KeyToggle(key string, down bool) error {
	if err := robotgo.KeyToggle(key, direction(down)); err != nil {
		return fmt.Errorf("toggle key %q: %w", key, err)
	}
	return nil
}

func (d *Driver) KeyTap(key string) error {
	if err := robotgo.KeyTap(key); err != nil {
		return fmt.Errorf("tap key %q: %w", key, err)
	}
	return nil
}

func (d *Driver) TypeRune(ch rune) error {
	robotgo.TypeStr(string(ch))
	return nil
}

func direction(down bool) string {
	if down {
		return "down"
	}
	return "up"
}

// robotgo calls the middle button "center".
func buttonName(button string) (string, error) {
	switch button {
	case input.ButtonLeft, input.ButtonRight:
		return button, nil
	case input.ButtonMiddle:
		return "center", nil
	default:
		return "", fmt.Errorf("%w: %q", input.ErrUnknownButton, button)
	}
}
