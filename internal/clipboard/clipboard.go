// Package clipboard reads and writes the system clipboard through the
// platform's command-line helpers and types text by pasting it.
package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/haasonsaas/cu-mcp/internal/backoff"
)

// DefaultTimeout bounds each helper invocation.
const DefaultTimeout = 3 * time.Second

// writeAttempts is how often the whole helper list is tried before a write fails.
const writeAttempts = 2

// ErrNoClipboardTool is returned when no helper exists for this platform or
// none of them worked.
var ErrNoClipboardTool = errors.New("no clipboard tool available")

// Tool is a clipboard helper command.
type Tool struct {
	Name string
	Args []string
	// Platform restricts the tool to one GOOS; empty means any.
	Platform string
}

// CopyTools write stdin to the clipboard, in priority order.
var CopyTools = []Tool{
	{Name: "pbcopy", Platform: "darwin"},
	{Name: "wl-copy", Platform: "linux"},
	{Name: "xclip", Args: []string{"-selection", "clipboard"}, Platform: "linux"},
	{Name: "xsel", Args: []string{"--clipboard", "--input"}, Platform: "linux"},
	{Name: "clip.exe"},
	{Name: "powershell", Args: []string{"-NoProfile", "-Command", "Set-Clipboard"}, Platform: "windows"},
}

// PasteTools print the clipboard on stdout, in priority order.
var PasteTools = []Tool{
	{Name: "pbpaste", Platform: "darwin"},
	{Name: "wl-paste", Args: []string{"--no-newline"}, Platform: "linux"},
	{Name: "xclip", Args: []string{"-selection", "clipboard", "-o"}, Platform: "linux"},
	{Name: "xsel", Args: []string{"--clipboard", "--output"}, Platform: "linux"},
	{Name: "powershell", Args: []string{"-NoProfile", "-Command", "Get-Clipboard"}, Platform: "windows"},
}

// Runner executes one helper. stdin may be nil.
type Runner func(ctx context.Context, name string, args []string, stdin io.Reader) ([]byte, error)

// System is the OS clipboard.
type System struct {
	goos    string
	timeout time.Duration
	run     Runner
	policy  backoff.Policy
}

// Option configures a System.
type Option func(*System)

// WithPlatform overrides runtime.GOOS when choosing helpers.
func WithPlatform(goos string) Option {
	return func(s *System) { s.goos = goos }
}

// WithRunner replaces process execution, e.g. with a fake in tests.
func WithRunner(run Runner) Option {
	return func(s *System) {
		if run != nil {
			s.run = run
		}
	}
}

// WithTimeout bounds each helper invocation.
func WithTimeout(d time.Duration) Option {
	return func(s *System) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewSystem returns the clipboard of the current platform.
func NewSystem(opts ...Option) *System {
	s := &System{
		goos:    runtime.GOOS,
		timeout: DefaultTimeout,
		run:     execRunner,
		policy:  backoff.QuickPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns the clipboard text exactly as stored.
func (s *System) Read(ctx context.Context) (string, error) {
	tools := ForPlatform(PasteTools, s.goos)
	if len(tools) == 0 {
		return "", ErrNoClipboardTool
	}
	var errs []error
	for _, tool := range tools {
		out, err := s.invoke(ctx, tool, nil)
		if err == nil {
			return string(out), nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		errs = append(errs, err)
	}
	return "", fmt.Errorf("%w: %w", ErrNoClipboardTool, errors.Join(errs...))
}

// Write replaces the clipboard content. The helper list is retried once
// because X11 selection owners occasionally refuse the first request.
func (s *System) Write(ctx context.Context, text string) error {
	tools := ForPlatform(CopyTools, s.goos)
	if len(tools) == 0 {
		return ErrNoClipboardTool
	}
	err := backoff.Retry(ctx, s.policy, writeAttempts, func() error {
		var errs []error
		for _, tool := range tools {
			_, err := s.invoke(ctx, tool, strings.NewReader(text))
			if err == nil {
				return nil
			}
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", ErrNoClipboardTool, err)
	}
	return nil
}

func (s *System) invoke(ctx context.Context, tool Tool, stdin io.Reader) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.run(ctx, tool.Name, tool.Args, stdin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tool.Name, err)
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%s: %w", tool.Name, ctx.Err())
	}
	return out, nil
}

// ForPlatform keeps the tools usable on goos, preserving order.
func ForPlatform(tools []Tool, goos string) []Tool {
	var applicable []Tool
	for _, tool := range tools {
		if tool.Platform == "" || tool.Platform == goos {
			applicable = append(applicable, tool)
		}
	}
	return applicable
}

func execRunner(ctx context.Context, name string, args []string, stdin io.Reader) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
