package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// buildServeCmd creates the "serve" command that runs the MCP server on stdio.
func buildServeCmd(configPath *string) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdio",
		Long: `Serve the desktop-control tools over stdio until the client disconnects.

The server will:
1. Load configuration from defaults, the YAML file and CU_MCP_* variables
2. Start the Prometheus endpoint when metrics_addr is set
3. Export traces when otlp_endpoint is set
4. Register tools, resources and prompts and serve one client session

Pending clipboard restorations run before exit. Shutdown is handled on SIGINT/SIGTERM.`,
		Example: `  # Typical MCP client configuration
  cu-mcp serve

  # Verbose operational logging
  cu-mcp serve --debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath, debug)
		},
	}
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	return cmd
}

// buildScreenshotCmd creates the "screenshot" command that writes one capture to disk.
func buildScreenshotCmd(configPath *string) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "screenshot",
		Short: "Capture the desktop to a PNG file",
		Example: `  cu-mcp screenshot --output desktop.png
  cu-mcp screenshot -o - > desktop.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScreenshot(cmd, *configPath, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "screenshot.png", "Output file, or - for stdout")
	return cmd
}

// buildInfoCmd creates the "info" command that prints the screen and focus state.
func buildInfoCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print screen size, cursor position and the active window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, *configPath)
		},
	}
}

// buildSchemaCmd creates the "schema" command group.
func buildSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print JSON schemas",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "tools",
			Short: "Print every tool with its input schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSchemaTools(cmd)
			},
		},
		&cobra.Command{
			Use:   "config",
			Short: "Print the configuration file schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSchemaConfig(cmd)
			},
		},
	)
	return cmd
}

func buildVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cu-mcp %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
