// Package window reports the focused application and window title.
package window

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds each helper invocation.
const DefaultTimeout = 5 * time.Second

// ErrUnsupported is returned on platforms without a lookup strategy.
var ErrUnsupported = errors.New("active window lookup is not supported on this platform")

const frontmostScript = `
tell application "System Events"
	set frontApp to first application process whose frontmost is true
	set appName to name of frontApp
	set winTitle to ""
	try
		set winTitle to name of front window of frontApp
	end try
	return appName & "|" & winTitle
end tell
`

// Info describes the focused window. WindowTitle may be empty.
type Info struct {
	AppName     string `json:"app_name"`
	WindowTitle string `json:"window_title"`
}

// Runner executes a helper and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Detector looks up the focused window with the platform's helper tools:
// osascript on macOS, xdotool and /proc on Linux.
type Detector struct {
	goos     string
	timeout  time.Duration
	run      Runner
	readFile func(string) ([]byte, error)
}

// Option configures a Detector.
type Option func(*Detector)

// WithPlatform overrides runtime.GOOS.
func WithPlatform(goos string) Option {
	return func(d *Detector) { d.goos = goos }
}

// WithRunner replaces process execution.
func WithRunner(run Runner) Option {
	return func(d *Detector) { d.run = run }
}

// WithReadFile replaces os.ReadFile for /proc lookups.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(d *Detector) { d.readFile = fn }
}

// NewDetector creates a Detector for the current platform.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		goos:     runtime.GOOS,
		timeout:  DefaultTimeout,
		run:      execRunner,
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Active returns the focused application and window title.
func (d *Detector) Active(ctx context.Context) (Info, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	switch d.goos {
	case "darwin":
		out, err := d.run(ctx, "osascript", "-e", frontmostScript)
		if err != nil {
			return Info{}, fmt.Errorf("query System Events: %w", err)
		}
		return parseAppleScript(string(out)), nil
	case "linux":
		return d.activeX11(ctx)
	default:
		return Info{}, fmt.Errorf("%w (%s)", ErrUnsupported, d.goos)
	}
}

func (d *Detector) activeX11(ctx context.Context) (Info, error) {
	out, err := d.run(ctx, "xdotool", "getactivewindow", "getwindowname")
	if err != nil {
		return Info{}, fmt.Errorf("xdotool getwindowname: %w", err)
	}
	info := Info{WindowTitle: strings.TrimRight(string(out), "\r\n")}

	// The application name is best effort; some windows expose no pid.
	pidOut, err := d.run(ctx, "xdotool", "getactivewindow", "getwindowpid")
	if err != nil {
		return info, nil
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(pidOut)))
	if err != nil || pid <= 0 {
		return info, nil
	}
	if comm, err := d.readFile(fmt.Sprintf("/proc/%d/comm", pid)); err == nil {
		info.AppName = strings.TrimSpace(string(comm))
	}
	return info, nil
}

// parseAppleScript splits "app|title" output. Titles may contain "|".
func parseAppleScript(out string) Info {
	app, title, _ := strings.Cut(strings.TrimSpace(out), "|")
	return Info{AppName: app, WindowTitle: title}
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.New(msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
