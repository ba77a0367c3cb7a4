package input

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/haasonsaas/cu-mcp/internal/backoff"
)

const (
	// Shorter movements jump straight to the target.
	minGlideDuration = 100 * time.Millisecond
	glideStep        = 20 * time.Millisecond

	// DefaultPause is the settle time after every action.
	DefaultPause = 50 * time.Millisecond
)

// ErrNoKey is returned when a keyboard action names no key.
var ErrNoKey = errors.New("no key given")

// Point is a position in logical pointer coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Options tune a Controller.
type Options struct {
	// Pause is slept after every action. Zero disables it.
	Pause time.Duration
	// FailSafe aborts actions while the pointer sits in a screen corner.
	FailSafe bool
	// Sleep replaces backoff.Sleep, e.g. to keep tests fast.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Controller performs high-level pointer and keyboard actions. It holds no
// state between calls apart from the lazily created driver.
type Controller struct {
	drivers  *Lazy
	pause    time.Duration
	failSafe bool
	sleep    func(context.Context, time.Duration) error
}

// NewController creates a Controller that takes its driver from drivers.
func NewController(drivers *Lazy, opts Options) *Controller {
	c := &Controller{
		drivers:  drivers,
		pause:    opts.Pause,
		failSafe: opts.FailSafe,
		sleep:    opts.Sleep,
	}
	if c.sleep == nil {
		c.sleep = backoff.Sleep
	}
	return c
}

// ScreenSize returns the logical screen size.
func (c *Controller) ScreenSize() (int, int, error) {
	d, err := c.drivers.Driver()
	if err != nil {
		return 0, 0, err
	}
	return d.ScreenSize()
}

// Location returns the pointer position.
func (c *Controller) Location(ctx context.Context) (Point, error) {
	if err := ctx.Err(); err != nil {
		return Point{}, err
	}
	d, err := c.drivers.Driver()
	if err != nil {
		return Point{}, err
	}
	x, y, err := d.Location()
	if err != nil {
		return Point{}, fmt.Errorf("query pointer location: %w", err)
	}
	return Point{X: x, Y: y}, nil
}

// MoveTo glides the pointer to (x, y) over duration and reports where it
// actually ended up.
func (c *Controller) MoveTo(ctx context.Context, x, y int, duration time.Duration) (Point, error) {
	d, err := c.begin(ctx)
	if err != nil {
		return Point{}, err
	}
	if err := c.glide(ctx, d, x, y, duration); err != nil {
		return Point{}, err
	}
	c.finish(ctx)

	ax, ay, err := d.Location()
	if err != nil {
		return Point{}, fmt.Errorf("query pointer location: %w", err)
	}
	return Point{X: ax, Y: ay}, nil
}

// ClickAt moves to (x, y) and clicks button once.
func (c *Controller) ClickAt(ctx context.Context, x, y int, button string, duration time.Duration) error {
	return c.clickAt(ctx, x, y, button, false, duration)
}

// DoubleClickAt moves to (x, y) and double-clicks the left button.
func (c *Controller) DoubleClickAt(ctx context.Context, x, y int, duration time.Duration) error {
	return c.clickAt(ctx, x, y, ButtonLeft, true, duration)
}

func (c *Controller) clickAt(ctx context.Context, x, y int, button string, double bool, duration time.Duration) error {
	button, err := NormalizeButton(button)
	if err != nil {
		return err
	}
	d, err := c.begin(ctx)
	if err != nil {
		return err
	}
	if err := c.glide(ctx, d, x, y, duration); err != nil {
		return err
	}
	if err := d.Click(button, double); err != nil {
		return fmt.Errorf("click %s: %w", button, err)
	}
	c.finish(ctx)
	return nil
}

// ScrollAt moves to (x, y) then scrolls vertically by dy and horizontally by dx.
func (c *Controller) ScrollAt(ctx context.Context, x, y, dy, dx int) error {
	d, err := c.begin(ctx)
	if err != nil {
		return err
	}
	if err := c.glide(ctx, d, x, y, 150*time.Millisecond); err != nil {
		return err
	}
	if dy != 0 {
		if err := d.Scroll(0, dy); err != nil {
			return fmt.Errorf("scroll vertically: %w", err)
		}
	}
	if dx != 0 {
		if err := d.Scroll(dx, 0); err != nil {
			return fmt.Errorf("scroll horizontally: %w", err)
		}
	}
	c.finish(ctx)
	return nil
}

// Drag presses button at from, glides to to over duration and releases. The
// button is released even when the movement fails.
func (c *Controller) Drag(ctx context.Context, from, to Point, duration time.Duration, button string) error {
	button, err := NormalizeButton(button)
	if err != nil {
		return err
	}
	d, err := c.begin(ctx)
	if err != nil {
		return err
	}
	if err := c.glide(ctx, d, from.X, from.Y, 200*time.Millisecond); err != nil {
		return err
	}
	if err := d.MouseToggle(button, true); err != nil {
		return fmt.Errorf("press %s button: %w", button, err)
	}
	moveErr := c.glide(ctx, d, to.X, to.Y, duration)
	if err := d.MouseToggle(button, false); err != nil && moveErr == nil {
		return fmt.Errorf("release %s button: %w", button, err)
	}
	if moveErr != nil {
		return moveErr
	}
	c.finish(ctx)
	return nil
}

// Press taps a single key.
func (c *Controller) Press(ctx context.Context, key string) error {
	return c.keyAction(ctx, key, func(d Driver, k string) error { return d.KeyTap(k) })
}

// KeyDown holds key until a matching KeyUp.
func (c *Controller) KeyDown(ctx context.Context, key string) error {
	return c.keyAction(ctx, key, func(d Driver, k string) error { return d.KeyToggle(k, true) })
}

// KeyUp releases key.
func (c *Controller) KeyUp(ctx context.Context, key string) error {
	return c.keyAction(ctx, key, func(d Driver, k string) error { return d.KeyToggle(k, false) })
}

func (c *Controller) keyAction(ctx context.Context, key string, fn func(Driver, string) error) error {
	key = NormalizeKey(key)
	if key == "" {
		return ErrNoKey
	}
	d, err := c.begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(d, key); err != nil {
		return err
	}
	c.finish(ctx)
	return nil
}

// Hotkey presses keys in order and releases them in reverse order. If a key
// cannot be pressed, the keys already held are released before returning.
func (c *Controller) Hotkey(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return ErrNoKey
	}
	names := make([]string, len(keys))
	for i, key := range keys {
		if names[i] = NormalizeKey(key); names[i] == "" {
			return fmt.Errorf("hotkey position %d: %w", i, ErrNoKey)
		}
	}

	d, err := c.begin(ctx)
	if err != nil {
		return err
	}
	held := make([]string, 0, len(names))
	for _, key := range names {
		if err := d.KeyToggle(key, true); err != nil {
			release(d, held)
			return err
		}
		held = append(held, key)
	}
	if err := release(d, held); err != nil {
		return err
	}
	c.finish(ctx)
	return nil
}

func release(d Driver, held []string) error {
	var first error
	for i := len(held) - 1; i >= 0; i-- {
		if err := d.KeyToggle(held[i], false); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// TypeText types text one character at a time with interval between
// characters.
func (c *Controller) TypeText(ctx context.Context, text string, interval time.Duration) error {
	d, err := c.begin(ctx)
	if err != nil {
		return err
	}
	first := true
	for _, ch := range text {
		if !first {
			if err := c.sleep(ctx, interval); err != nil {
				return err
			}
		}
		first = false
		if err := d.TypeRune(ch); err != nil {
			return fmt.Errorf("type %q: %w", ch, err)
		}
	}
	c.finish(ctx)
	return nil
}

func (c *Controller) begin(ctx context.Context) (Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, err := c.drivers.Driver()
	if err != nil {
		return nil, err
	}
	if c.failSafe {
		if err := checkFailSafe(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (c *Controller) finish(ctx context.Context) {
	_ = c.sleep(ctx, c.pause)
}

func checkFailSafe(d Driver) error {
	w, h, err := d.ScreenSize()
	if err != nil {
		return fmt.Errorf("fail-safe check: %w", err)
	}
	x, y, err := d.Location()
	if err != nil {
		return fmt.Errorf("fail-safe check: %w", err)
	}
	if (x == 0 || x == w-1) && (y == 0 || y == h-1) {
		return ErrFailSafe
	}
	return nil
}

// glide moves in straight-line steps so the target application sees
// intermediate motion events.
func (c *Controller) glide(ctx context.Context, d Driver, x, y int, duration time.Duration) error {
	if duration < minGlideDuration {
		return d.Move(x, y)
	}
	sx, sy, err := d.Location()
	if err != nil {
		return fmt.Errorf("query pointer location: %w", err)
	}
	steps := int(duration / glideStep)
	interval := duration / time.Duration(steps)
	for i := 1; i <= steps; i++ {
		if err := c.sleep(ctx, interval); err != nil {
			return err
		}
		frac := float64(i) / float64(steps)
		px := sx + int(math.Round(float64(x-sx)*frac))
		py := sy + int(math.Round(float64(y-sy)*frac))
		if err := d.Move(px, py); err != nil {
			return fmt.Errorf("move pointer: %w", err)
		}
	}
	return nil
}
