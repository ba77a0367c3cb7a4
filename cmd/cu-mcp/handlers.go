package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/haasonsaas/cu-mcp/internal/capture"
	"github.com/haasonsaas/cu-mcp/internal/clipboard"
	"github.com/haasonsaas/cu-mcp/internal/config"
	"github.com/haasonsaas/cu-mcp/internal/deferred"
	"github.com/haasonsaas/cu-mcp/internal/input"
	"github.com/haasonsaas/cu-mcp/internal/input/robot"
	"github.com/haasonsaas/cu-mcp/internal/observability"
	"github.com/haasonsaas/cu-mcp/internal/shell"
	"github.com/haasonsaas/cu-mcp/internal/tools"
	"github.com/haasonsaas/cu-mcp/internal/window"
)

const shutdownTimeout = 5 * time.Second

// desktop holds the components shared by every command.
type desktop struct {
	controller *input.Controller
	capture    *capture.Service
	queue      *deferred.Queue
	paster     *clipboard.Paster
	shell      *shell.Runner
	window     *window.Detector
}

// newDesktop wires the desktop components. Nothing touches the display until
// the first input or capture call.
func newDesktop(cfg config.Config, logger *slog.Logger, metrics *observability.Metrics) (*desktop, error) {
	controller := input.NewController(input.NewLazy(robot.Factory), input.Options{
		Pause:    cfg.ActionPause(),
		FailSafe: cfg.FailSafe,
	})

	runner, err := shell.NewRunner(cfg.Shell)
	if err != nil {
		return nil, fmt.Errorf("configure shell: %w", err)
	}

	queue := deferred.NewQueue(
		deferred.WithObserver(metrics.RecordDeferred),
		deferred.WithOnError(func(task *deferred.Task, err error) {
			logger.Debug("deferred task failed", "task", task.Name, "id", task.ID, "error", err)
		}),
	)

	return &desktop{
		controller: controller,
		capture: capture.NewService(capture.NewScreenGrabber(), controller, capture.Options{
			MaxEdge:       cfg.MaxScreenshotEdge,
			CompressLevel: cfg.PNGCompressLevel,
			Observer:      metrics,
		}),
		queue:  queue,
		paster: clipboard.NewPaster(clipboard.NewSystem(), controller, queue, cfg.PasteRestoreDelay(), runtime.GOOS),
		shell:  runner,
		window: window.NewDetector(),
	}, nil
}

// close runs pending clipboard restorations.
func (d *desktop) close() {
	d.queue.Close()
}

func (d *desktop) server(cfg config.Config, logger *slog.Logger, ins *observability.Instrumenter) (*tools.Server, error) {
	return tools.NewServer(tools.Deps{
		Screen:       d.capture,
		Pointer:      d.controller,
		Keyboard:     d.controller,
		Paster:       d.paster,
		Shell:        d.shell,
		Window:       d.window,
		Instrumenter: ins,
		Logger:       logger,
		TypeInterval: cfg.TypeInterval(),
	}, tools.Options{Name: "cu-mcp", Version: version})
}

func loadConfig(explicit string) (config.Config, error) {
	path, ok := config.ResolvePath(explicit)
	if !ok {
		path = ""
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// runServe implements the serve command: it serves one MCP session on stdio
// and flushes deferred work on the way out.
func runServe(ctx context.Context, configPath string, debug bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	logger := observability.NewLogger(observability.LogConfig{
		Level:     level,
		Format:    cfg.LogFormat,
		AddSource: debug,
	})
	slog.SetDefault(logger)

	if term.IsTerminal(int(os.Stdout.Fd())) {
		logger.Warn("stdout is a terminal; cu-mcp speaks MCP on stdio and expects a client to launch it")
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)
	if cfg.MetricsAddr != "" {
		stop := serveMetrics(cfg.MetricsAddr, registry, logger)
		defer stop()
	}

	tracer, shutdownTracer := observability.NewTracer(observability.TraceConfig{
		ServiceName:    "cu-mcp",
		ServiceVersion: version,
		Endpoint:       cfg.OTLPEndpoint,
		SamplingRate:   cfg.TraceSamplingRate,
		EnableInsecure: true,
	})
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer flushCancel()
		if err := shutdownTracer(flushCtx); err != nil {
			logger.Warn("trace flush failed", "error", err)
		}
	}()

	d, err := newDesktop(cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer d.close()

	ins := observability.NewInstrumenter(
		observability.NewEventLog(os.Stderr, cfg.LogEnabled),
		observability.Serializer{MaxString: cfg.LogMaxString, Redactor: observability.NewRedactor()},
		observability.WithMetrics(metrics),
		observability.WithTracer(tracer),
	)
	srv, err := d.server(cfg, logger, ins)
	if err != nil {
		return err
	}

	logger.Info("starting cu-mcp",
		"version", version,
		"commit", commit,
		"tools", len(srv.ToolNames()),
		"failsafe", cfg.FailSafe,
		"shell", d.shell.Shell(),
	)
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	logger.Info("cu-mcp stopped", "pending_restores", d.queue.Pending())
	return nil
}

// serveMetrics exposes registry on addr and returns a function that stops it.
func serveMetrics(addr string, registry *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}

func runScreenshot(cmd *cobra.Command, configPath, output string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	d, err := newDesktop(cfg, slog.Default(), nil)
	if err != nil {
		return err
	}
	defer d.close()

	res, err := d.capture.Capture(cmd.Context(), nil)
	if err != nil {
		return err
	}

	if output == "-" {
		_, err = cmd.OutOrStdout().Write(res.PNG)
		return err
	}
	if err := os.WriteFile(output, res.PNG, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d, scale %.3gx%.3g)\n",
		output, res.ImageWidth, res.ImageHeight, res.ScaleX, res.ScaleY)
	return nil
}

type infoReport struct {
	ScreenWidth  int          `json:"screen_width"`
	ScreenHeight int          `json:"screen_height"`
	Cursor       input.Point  `json:"cursor"`
	Window       *window.Info `json:"active_window,omitempty"`
	Shell        string       `json:"shell"`
	Platform     string       `json:"platform"`
}

func runInfo(cmd *cobra.Command, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	d, err := newDesktop(cfg, slog.Default(), nil)
	if err != nil {
		return err
	}
	defer d.close()

	ctx := cmd.Context()
	w, h, err := d.controller.ScreenSize()
	if err != nil {
		return err
	}
	cursor, err := d.controller.Location(ctx)
	if err != nil {
		return err
	}
	report := infoReport{
		ScreenWidth:  w,
		ScreenHeight: h,
		Cursor:       cursor,
		Shell:        d.shell.Shell(),
		Platform:     runtime.GOOS,
	}
	if active, err := d.window.Active(ctx); err != nil {
		slog.Warn("active window lookup failed", "error", err)
	} else {
		report.Window = &active
	}
	return writeJSON(cmd.OutOrStdout(), report)
}

func runSchemaTools(cmd *cobra.Command) error {
	cfg := config.Default()
	d, err := newDesktop(cfg, slog.Default(), nil)
	if err != nil {
		return err
	}
	defer d.close()

	srv, err := d.server(cfg, slog.Default(), nil)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), srv.Tools())
}

func runSchemaConfig(cmd *cobra.Command) error {
	data, err := config.JSONSchema()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
