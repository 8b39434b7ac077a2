package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"

	"wss/vars"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if !cfg.Engine.Cache || cfg.Engine.Strict || cfg.Engine.StylesheetPath != "" || len(cfg.Engine.Variables) != 0 {
		t.Errorf("Default engine config = %+v", cfg.Engine)
	}
	if cfg.Output != OutputFmtText {
		t.Errorf("Default output = %v", cfg.Output)
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" || cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("Default logging = %+v", cfg.Logging)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	path := writeConfig(t, `version: 1
engine:
  cache: false
  strict: true
  variables:
    --accent-color: "#6366f1"
    --hover-color: var(--accent-color)
output: yaml
logging:
  console:
    level: debug
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Engine.Cache || !cfg.Engine.Strict {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if cfg.Output != OutputFmtYaml || cfg.Output.Ext() != ".yaml" {
		t.Errorf("output = %v", cfg.Output)
	}
	if cfg.Logging.ConsoleLogger.Level != "debug" {
		t.Errorf("console level = %q", cfg.Logging.ConsoleLogger.Level)
	}
	// values not present in the file come from the template
	if cfg.Logging.FileLogger.Level != "none" || cfg.Reporting.Destination == "" {
		t.Errorf("defaults lost: %+v", cfg.Logging.FileLogger)
	}
	if len(cfg.Engine.Variables) != 2 {
		t.Errorf("variables = %v", cfg.Engine.Variables)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := map[string]string{
		"invalid yaml":   "version: 1\nengine:\n  cache: true\n  invalid indent\n",
		"unknown field":  "version: 1\nunknown_field: value\n",
		"bad version":    "version: 2\n",
		"bad output":     "version: 1\noutput: html\n",
		"bad variable":   "version: 1\nengine:\n  variables:\n    accent: red\n",
		"bad log level":  "version: 1\nlogging:\n  console:\n    level: verbose\n",
		"bad log mode":   "version: 1\nlogging:\n  file:\n    mode: rotate\n",
		"empty variable": "version: 1\nengine:\n  variables:\n    --accent: \"\"\n",
	}
	for name, content := range tests {
		if _, err := LoadConfiguration(writeConfig(t, content)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {}

	cfg, err := LoadConfiguration("", option)
	if err != nil || cfg == nil {
		t.Fatalf("LoadConfiguration() with options = %v, %v", cfg, err)
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if _, err = unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg := &Config{
		Version: 1,
		Engine: EngineConfig{
			Cache:     true,
			Variables: map[string]string{"--radius": "4px"},
		},
		Output:    OutputFmtYaml,
		Reporting: ReporterConfig{Destination: "report.zip"},
	}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	out := string(data)
	for _, want := range []string{"version: 1", "cache: true", "--radius", "output: yaml", "destination: report.zip"} {
		if !strings.Contains(out, want) {
			t.Errorf("Dump() output missing %q:\n%s", want, out)
		}
	}

	back, err := unmarshalConfig(data, &Config{}, false)
	if err != nil {
		t.Fatalf("unmarshalConfig() error = %v", err)
	}
	if back.Output != OutputFmtYaml || back.Engine.Variables["--radius"] != "4px" {
		t.Errorf("dumped config does not load back: %+v", back)
	}
}

func TestPalette(t *testing.T) {
	conf := EngineConfig{Variables: map[string]string{
		"--hover-color":  "var(--accent-color)",
		"--accent-color": "#6366f1",
	}}

	tbl, err := conf.Palette()
	if err != nil {
		t.Fatalf("Palette() error = %v", err)
	}
	if got, err := tbl.Resolve("--hover-color"); err != nil || got != "#6366f1" {
		t.Errorf("Resolve() = %q, %v", got, err)
	}
	if names := tbl.Names(); len(names) != 2 || names[0] != "--accent-color" {
		t.Errorf("Names() = %v", names)
	}

	conf.Variables["--loop"] = "var(--loop)"
	_, err = conf.Palette()
	var cycle *vars.CycleError
	if !errors.As(err, &cycle) {
		t.Errorf("error = %v, want CycleError", err)
	}

	conf.Variables = map[string]string{"--bad": "var(--missing)"}
	var undef *vars.UndefinedError
	if _, err := conf.Palette(); !errors.As(err, &undef) {
		t.Errorf("error = %v, want UndefinedError", err)
	}
}

func TestOutputFmt(t *testing.T) {
	f, err := ParseOutputFmt("yaml")
	if err != nil || f != OutputFmtYaml {
		t.Errorf("ParseOutputFmt() = %v, %v", f, err)
	}
	if OutputFmtText.String() != "text" || OutputFmtText.Ext() != ".txt" {
		t.Errorf("text format = %q, %q", OutputFmtText.String(), OutputFmtText.Ext())
	}
	if _, err := ParseOutputFmt("html"); !errors.Is(err, ErrInvalidOutputFmt) {
		t.Errorf("error = %v", err)
	}
}
