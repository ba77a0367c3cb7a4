// Package input simulates pointer and keyboard actions on the local desktop.
//
// A Driver performs raw actions. The Controller adds gliding pointer
// movement and the fail-safe corners on top, and pauses briefly after each
// action.
package input

import "errors"

var (
	// ErrNoDisplay means no graphical session is reachable.
	ErrNoDisplay = errors.New("no display available: DISPLAY and WAYLAND_DISPLAY are unset")

	// ErrFailSafe aborts an action because the pointer sits in a screen corner.
	ErrFailSafe = errors.New("fail-safe triggered: pointer moved to a screen corner")

	// ErrUnknownButton is returned for mouse buttons other than left, right and middle.
	ErrUnknownButton = errors.New("unknown mouse button")
)

// Mouse buttons.
const (
	ButtonLeft   = "left"
	ButtonRight  = "right"
	ButtonMiddle = "middle"
)

// Driver is the raw input capability. Coordinates are in the logical pointer
// space reported by ScreenSize.
type Driver interface {
	ScreenSize() (width, height int, err error)
	Location() (x, y int, err error)
	Move(x, y int) error
	Click(button string, double bool) error
	// Scroll scrolls by dx columns and dy rows. Positive dy scrolls up,
	// positive dx scrolls right.
	Scroll(dx, dy int) error
	MouseToggle(button string, down bool) error
	KeyToggle(key string, down bool) error
	KeyTap(key string) error
	TypeRune(r rune) error
}
