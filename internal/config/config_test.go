package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func envMap(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.MaxScreenshotEdge != 1920 {
		t.Errorf("MaxScreenshotEdge = %d, want 1920", cfg.MaxScreenshotEdge)
	}
	if cfg.PNGCompressLevel != 6 {
		t.Errorf("PNGCompressLevel = %d, want 6", cfg.PNGCompressLevel)
	}
	if !cfg.LogEnabled {
		t.Error("LogEnabled should default to true")
	}
	if cfg.LogMaxString != 300 {
		t.Errorf("LogMaxString = %d, want 300", cfg.LogMaxString)
	}
	if cfg.PasteRestoreDelayMs != 400 {
		t.Errorf("PasteRestoreDelayMs = %d, want 400", cfg.PasteRestoreDelayMs)
	}
	if !cfg.FailSafe {
		t.Error("FailSafe should default to true")
	}
	if cfg.Shell == "" {
		t.Error("Shell should have a platform default")
	}
}

func TestApplyEnvClamps(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg Config)
	}{
		{
			name: "edge above max clamps to 10000",
			env:  map[string]string{EnvMaxScreenshotEdge: "25000"},
			check: func(t *testing.T, cfg Config) {
				if cfg.MaxScreenshotEdge != 10000 {
					t.Errorf("MaxScreenshotEdge = %d, want 10000", cfg.MaxScreenshotEdge)
				}
			},
		},
		{
			name: "edge zero disables bounding",
			env:  map[string]string{EnvMaxScreenshotEdge: "0"},
			check: func(t *testing.T, cfg Config) {
				if cfg.MaxScreenshotEdge != 0 {
					t.Errorf("MaxScreenshotEdge = %d, want 0", cfg.MaxScreenshotEdge)
				}
			},
		},
		{
			name: "negative edge clamps to 0",
			env:  map[string]string{EnvMaxScreenshotEdge: "-5"},
			check: func(t *testing.T, cfg Config) {
				if cfg.MaxScreenshotEdge != 0 {
					t.Errorf("MaxScreenshotEdge = %d, want 0", cfg.MaxScreenshotEdge)
				}
			},
		},
		{
			name: "unparsable level falls back to default",
			env:  map[string]string{EnvPNGCompressLevel: "fast"},
			check: func(t *testing.T, cfg Config) {
				if cfg.PNGCompressLevel != DefaultPNGCompressLevel {
					t.Errorf("PNGCompressLevel = %d, want %d", cfg.PNGCompressLevel, DefaultPNGCompressLevel)
				}
			},
		},
		{
			name: "compress level clamps to 9",
			env:  map[string]string{EnvPNGCompressLevel: "12"},
			check: func(t *testing.T, cfg Config) {
				if cfg.PNGCompressLevel != 9 {
					t.Errorf("PNGCompressLevel = %d, want 9", cfg.PNGCompressLevel)
				}
			},
		},
		{
			name: "log max string clamps to 32",
			env:  map[string]string{EnvLogMaxString: "4"},
			check: func(t *testing.T, cfg Config) {
				if cfg.LogMaxString != 32 {
					t.Errorf("LogMaxString = %d, want 32", cfg.LogMaxString)
				}
			},
		},
		{
			name: "whitespace around integers is accepted",
			env:  map[string]string{EnvLogMaxString: " 500 "},
			check: func(t *testing.T, cfg Config) {
				if cfg.LogMaxString != 500 {
					t.Errorf("LogMaxString = %d, want 500", cfg.LogMaxString)
				}
			},
		},
		{
			name: "log level normalised",
			env:  map[string]string{EnvLogLevel: "WARNING"},
			check: func(t *testing.T, cfg Config) {
				if cfg.LogLevel != "warn" {
					t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ApplyEnv(Default(), envMap(tt.env)).Clamp()
			tt.check(t, cfg)
		})
	}
}

func TestLogEnabledFlag(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"0", false},
		{"false", false},
		{"FALSE", false},
		{"No", false},
		{"1", true},
		{"yes", true},
		{"", true},
		{"anything", true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cfg := ApplyEnv(Default(), envMap(map[string]string{EnvLogEnabled: tt.value}))
			if cfg.LogEnabled != tt.want {
				t.Errorf("LogEnabled for %q = %v, want %v", tt.value, cfg.LogEnabled, tt.want)
			}
		})
	}
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("max_screenshot_edge: 1280\nlog_enabled: false\nmetrics_addr: 127.0.0.1:9464\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path, Default())
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.MaxScreenshotEdge != 1280 {
		t.Errorf("MaxScreenshotEdge = %d, want 1280", cfg.MaxScreenshotEdge)
	}
	if cfg.LogEnabled {
		t.Error("LogEnabled should be false from file")
	}
	if cfg.MetricsAddr != "127.0.0.1:9464" {
		t.Errorf("MetricsAddr = %q", cfg.MetricsAddr)
	}
	if cfg.PNGCompressLevel != DefaultPNGCompressLevel {
		t.Errorf("absent key should keep default, got %d", cfg.PNGCompressLevel)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"), Default())
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("missing file error = %v, want ErrConfigNotFound", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("unknown_key: 1\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFile(bad, Default()); err == nil {
		t.Error("expected error for unknown key")
	}

	multi := filepath.Join(dir, "multi.yaml")
	if err := os.WriteFile(multi, []byte("log_max_string: 100\n---\nlog_max_string: 200\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFile(multi, Default()); err == nil {
		t.Error("expected error for multiple documents")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	cfg, err := parseFile([]byte("max_screenshot_edge: 1280\n"), Default())
	if err != nil {
		t.Fatalf("parseFile() error = %v", err)
	}
	cfg = ApplyEnv(cfg, envMap(map[string]string{EnvMaxScreenshotEdge: "800"})).Clamp()
	if cfg.MaxScreenshotEdge != 800 {
		t.Errorf("MaxScreenshotEdge = %d, want 800", cfg.MaxScreenshotEdge)
	}
}

func TestLogFormatAndTraceSampling(t *testing.T) {
	cfg, err := parseFile([]byte("log_format: json\ntrace_sampling_rate: 0.25\n"), Default())
	if err != nil {
		t.Fatalf("parseFile() error = %v", err)
	}
	cfg = cfg.Clamp()
	if cfg.LogFormat != "json" || cfg.TraceSamplingRate != 0.25 {
		t.Errorf("from file: format = %q, rate = %v", cfg.LogFormat, cfg.TraceSamplingRate)
	}

	tests := []struct {
		env        map[string]string
		wantFormat string
		wantRate   float64
	}{
		{map[string]string{EnvLogFormat: "JSON", EnvTraceSampling: "0.5"}, "json", 0.5},
		{map[string]string{EnvLogFormat: "xml", EnvTraceSampling: "3"}, "text", 1},
		{map[string]string{EnvTraceSampling: "-1"}, "text", 0},
		{map[string]string{EnvTraceSampling: "often"}, "text", 1},
		{map[string]string{EnvTraceSampling: "NaN"}, "text", 1},
	}
	for _, tt := range tests {
		got := ApplyEnv(Default(), envMap(tt.env)).Clamp()
		if got.LogFormat != tt.wantFormat || got.TraceSamplingRate != tt.wantRate {
			t.Errorf("env %v: format = %q, rate = %v, want %q, %v",
				tt.env, got.LogFormat, got.TraceSamplingRate, tt.wantFormat, tt.wantRate)
		}
	}
}

func TestJSONSchema(t *testing.T) {
	data, err := JSONSchema()
	if err != nil {
		t.Fatalf("JSONSchema() error = %v", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties: %s", data)
	}
	for _, key := range []string{"max_screenshot_edge", "png_compress_level", "log_enabled", "log_max_string"} {
		if _, ok := props[key]; !ok {
			t.Errorf("schema missing property %q", key)
		}
	}
}
