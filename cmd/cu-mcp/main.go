// Package main provides the CLI entry point for cu-mcp, an MCP server that lets
// a model client see and drive this computer's desktop.
//
// # Basic Usage
//
// Serve MCP over stdio (the default command):
//
//	cu-mcp
//	cu-mcp serve --config ~/.cu-mcp/config.yaml
//
// Inspect the desktop without a client:
//
//	cu-mcp screenshot --output desktop.png
//	cu-mcp info
//
// Print the tool or configuration schemas:
//
//	cu-mcp schema tools
//	cu-mcp schema config
//
// # Environment Variables
//
//   - CU_MCP_CONFIG: Path to the YAML configuration file
//   - CU_MCP_MAX_SCREENSHOT_EDGE: Longest screenshot edge in pixels (0 disables)
//   - CU_MCP_SCREENSHOT_PNG_COMPRESS_LEVEL: PNG effort, 0 to 9
//   - CU_MCP_LOG_TO_STDERR: Set to 0, false or no to silence the event log
//   - CU_MCP_LOG_MAX_STRING: Truncation length for logged strings
//   - CU_MCP_FAILSAFE: Set to 0 to disable the screen-corner abort
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haasonsaas/cu-mcp/internal/observability"
)

// Build information, populated by ldflags:
//
//	go build -ldflags "-X main.version=v0.3.0 -X main.commit=$(git rev-parse HEAD)"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	slog.SetDefault(observability.NewLogger(observability.LogConfig{Level: "info"}))

	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
// Running the root command without a subcommand serves MCP on stdio.
func buildRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "cu-mcp",
		Short: "cu-mcp - desktop control for MCP clients",
		Long: `cu-mcp exposes screenshots, mouse, keyboard, clipboard typing and shell
commands as MCP tools over stdio.

Stdout carries protocol frames. Diagnostics and the per-call event log go to stderr.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, false)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to YAML configuration file (default $CU_MCP_CONFIG or ~/.cu-mcp/config.yaml)")

	rootCmd.AddCommand(
		buildServeCmd(&configPath),
		buildScreenshotCmd(&configPath),
		buildInfoCmd(&configPath),
		buildSchemaCmd(),
		buildVersionCmd(),
	)
	return rootCmd
}
