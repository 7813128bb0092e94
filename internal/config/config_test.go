package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q for a missing file", cfg.Path)
	}
	if cfg.Optimize.MaxIterations != 10 || len(cfg.Optimize.Passes) != 3 {
		t.Errorf("defaults not applied: %+v", cfg.Optimize)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
language: ">= 0.4, < 1.0"
verbose: true
optimize:
  max_iterations: 3
  passes: [fold, dce]
diagnostics:
  max_errors: 5
  warnings_as_errors: true
  ignore: [W2001]
  show_trace: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Verbose || cfg.Optimize.MaxIterations != 3 || cfg.Path != path {
		t.Errorf("unexpected config %+v", cfg)
	}
	passes, err := cfg.Pipeline()
	if err != nil {
		t.Fatal(err)
	}
	if len(passes) != 2 || passes[0].Name() != "constant-folding" || passes[1].Name() != "dce" {
		t.Errorf("passes = %v", passes)
	}

	dc := cfg.DiagnosticConfig()
	if dc.MaxErrors != 5 || !dc.WarningsAsErrors || dc.ShowTrace || len(dc.IgnoreCodes) != 1 {
		t.Errorf("diagnostic config %+v", dc)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown field", "optimise:\n  max_iterations: 2\n", "optimise"},
		{"unknown pass", "optimize:\n  passes: [inline]\n", "inline"},
		{"negative iterations", "optimize:\n  max_iterations: -1\n", "max_iterations"},
		{"bad constraint", "language: \"not a version\"\n", "language"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestEmptyFileIsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Optimize.MaxIterations != 10 {
		t.Errorf("max iterations %d", cfg.Optimize.MaxIterations)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("SABLE_VERBOSE", "true")
	t.Setenv("SABLE_OPT_ITERATIONS", "7")
	t.Setenv("SABLE_MAX_ERRORS", "2")
	t.Setenv("SABLE_WARNINGS_AS_ERRORS", "true")

	cfg, err := Load(writeConfig(t, "verbose: false\noptimize:\n  max_iterations: 3\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Verbose {
		t.Errorf("SABLE_VERBOSE not applied")
	}
	if cfg.Optimize.MaxIterations != 7 {
		t.Errorf("max iterations %d, want 7", cfg.Optimize.MaxIterations)
	}
	if cfg.Diagnostics.MaxErrors != 2 || !cfg.Diagnostics.WarningsAsErrors {
		t.Errorf("diagnostics %+v", cfg.Diagnostics)
	}
}

func TestCheckLanguage(t *testing.T) {
	tests := []struct {
		constraint string
		version    string
		ok         bool
	}{
		{"", "0.4.0", true},
		{">= 0.4", "0.4.0", true},
		{"^0.4", "0.4.2", true},
		{">= 1.0", "0.4.0", false},
		{"~0.3", "0.4.0", false},
	}
	for _, tt := range tests {
		t.Run(tt.constraint+"/"+tt.version, func(t *testing.T) {
			cfg := &Config{Language: tt.constraint}
			err := cfg.CheckLanguage(tt.version)
			if (err == nil) != tt.ok {
				t.Errorf("CheckLanguage = %v, want ok=%t", err, tt.ok)
			}
		})
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, FileName), []byte("debug: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg, err := Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !cfg.Debug {
		t.Errorf("config from parent directory not loaded")
	}
}
