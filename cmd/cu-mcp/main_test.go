package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestBuildRootCmdIncludesSubcommands(t *testing.T) {
	cmd := buildRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	for _, name := range []string{"serve", "screenshot", "info", "schema", "version"} {
		if !names[name] {
			t.Fatalf("expected subcommand %q to be registered", name)
		}
	}
	if cmd.RunE == nil {
		t.Fatal("root command should serve when run without a subcommand")
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	cmd := buildRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	got := execute(t, "version")
	if !strings.HasPrefix(got, "cu-mcp dev") {
		t.Errorf("version output = %q", got)
	}
}

func TestSchemaToolsCommand(t *testing.T) {
	t.Setenv("SHELL", "/bin/sh")
	var listed []struct {
		Name        string         `json:"name"`
		InputSchema map[string]any `json:"inputSchema"`
	}
	if err := json.Unmarshal([]byte(execute(t, "schema", "tools")), &listed); err != nil {
		t.Fatalf("schema tools output is not JSON: %v", err)
	}
	if len(listed) != 16 {
		t.Fatalf("listed %d tools, want 16", len(listed))
	}
	if listed[0].Name != "take_screenshot" || listed[len(listed)-1].Name != "run_shell_command" {
		t.Errorf("unexpected order: first %s, last %s", listed[0].Name, listed[len(listed)-1].Name)
	}
	for _, tool := range listed {
		if tool.InputSchema["type"] != "object" {
			t.Errorf("%s schema type = %v", tool.Name, tool.InputSchema["type"])
		}
	}
}

func TestSchemaConfigCommand(t *testing.T) {
	var schema map[string]any
	if err := json.Unmarshal([]byte(execute(t, "schema", "config")), &schema); err != nil {
		t.Fatalf("schema config output is not JSON: %v", err)
	}
	props, _ := schema["properties"].(map[string]any)
	if _, ok := props["max_screenshot_edge"]; !ok {
		t.Errorf("config schema is missing max_screenshot_edge: %v", props)
	}
}
