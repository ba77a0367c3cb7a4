// Package tools exposes the desktop-control operations as MCP tools,
// resources and prompts.
//
// Every tool call is validated against the schema reflected from its argument
// struct, run through observability.Instrument, and rendered as JSON text.
// Operation failures become {"success": false, "error": ...} results with
// IsError set, never protocol errors.
package tools

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/haasonsaas/cu-mcp/internal/capture"
	"github.com/haasonsaas/cu-mcp/internal/deferred"
	"github.com/haasonsaas/cu-mcp/internal/input"
	"github.com/haasonsaas/cu-mcp/internal/media"
	"github.com/haasonsaas/cu-mcp/internal/observability"
	"github.com/haasonsaas/cu-mcp/internal/shell"
	"github.com/haasonsaas/cu-mcp/internal/window"
)

const instructions = `cu-mcp controls this computer's desktop.
Take a screenshot before acting. Coordinates are logical screen pixels: multiply
image pixels by scale_x and scale_y from the screenshot metadata. Parking the
pointer in a screen corner aborts input actions while the fail-safe is on.`

// Screen captures the desktop.
type Screen interface {
	Capture(ctx context.Context, logical *media.Geometry) (*capture.Result, error)
}

// Pointer drives the mouse.
type Pointer interface {
	ScreenSize() (width, height int, err error)
	Location(ctx context.Context) (input.Point, error)
	MoveTo(ctx context.Context, x, y int, duration time.Duration) (input.Point, error)
	ClickAt(ctx context.Context, x, y int, button string, duration time.Duration) error
	DoubleClickAt(ctx context.Context, x, y int, duration time.Duration) error
	ScrollAt(ctx context.Context, x, y, dy, dx int) error
	Drag(ctx context.Context, from, to input.Point, duration time.Duration, button string) error
}

// Keyboard drives the keyboard.
type Keyboard interface {
	Press(ctx context.Context, key string) error
	Hotkey(ctx context.Context, keys ...string) error
	KeyDown(ctx context.Context, key string) error
	KeyUp(ctx context.Context, key string) error
	TypeText(ctx context.Context, text string, interval time.Duration) error
}

// Paster types text through the clipboard.
type Paster interface {
	Paste(ctx context.Context, text string) (*deferred.Task, error)
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(ctx context.Context, command string, timeout time.Duration) (shell.Result, error)
}

// WindowDetector reports the focused window.
type WindowDetector interface {
	Active(ctx context.Context) (window.Info, error)
}

// Deps are the collaborators behind the tools. All are required.
type Deps struct {
	Screen   Screen
	Pointer  Pointer
	Keyboard Keyboard
	Paster   Paster
	Shell    CommandRunner
	Window   WindowDetector

	// Instrumenter records every tool call. Nil disables instrumentation.
	Instrumenter *observability.Instrumenter
	// Logger receives operational messages. Nil discards them.
	Logger *slog.Logger
	// TypeInterval separates keystrokes when typing without the clipboard.
	TypeInterval time.Duration
}

// Options name the server to clients.
type Options struct {
	Name    string
	Version string
}

// Server is the cu-mcp MCP server.
type Server struct {
	srv   *mcp.Server
	deps  Deps
	log   *slog.Logger
	tools []*mcp.Tool
}

// NewServer registers all tools, resources and prompts.
func NewServer(deps Deps, opts Options) (*Server, error) {
	if deps.Screen == nil || deps.Pointer == nil || deps.Keyboard == nil ||
		deps.Paster == nil || deps.Shell == nil || deps.Window == nil {
		return nil, errors.New("tools: every dependency must be set")
	}
	if opts.Name == "" {
		opts.Name = "cu-mcp"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		srv: mcp.NewServer(&mcp.Implementation{Name: opts.Name, Version: opts.Version}, &mcp.ServerOptions{
			Instructions: instructions,
		}),
		deps: deps,
		log:  logger,
	}

	for _, register := range []func() error{
		s.registerScreenTools,
		s.registerMouseTools,
		s.registerKeyboardTools,
		s.registerShellTools,
	} {
		if err := register(); err != nil {
			return nil, err
		}
	}
	s.registerResources()
	s.registerPrompts()
	return s, nil
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcp.Server {
	return s.srv
}

// ToolNames lists the registered tools in registration order.
func (s *Server) ToolNames() []string {
	names := make([]string, len(s.tools))
	for i, tool := range s.tools {
		names[i] = tool.Name
	}
	return names
}

// Tools returns the registered tool definitions, including input schemas.
func (s *Server) Tools() []*mcp.Tool {
	return append([]*mcp.Tool(nil), s.tools...)
}

// Run serves one session on transport until it closes or ctx ends.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.srv.Run(ctx, transport)
}

func seconds(v float64) time.Duration {
	if v <= 0 {
		return 0
	}
	return time.Duration(v * float64(time.Second))
}
