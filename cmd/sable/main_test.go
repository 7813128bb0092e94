package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunPrintsValuesInOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.sb", "(+ 1 2)\n(print \"hello\")\n")
	b := writeSource(t, dir, "b.sb", "(fn double x (* x 2))\n(double 21)\n")

	code, out, errOut := runCLI(t, "run", a, b)
	if code != 0 {
		t.Fatalf("exit %d, stderr:\n%s", code, errOut)
	}
	ia := strings.Index(out, "== "+a)
	ib := strings.Index(out, "== "+b)
	if ia < 0 || ib < 0 || ia > ib {
		t.Fatalf("files out of order:\n%s", out)
	}
	for _, want := range []string{"3\n", "hello\n", "42\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<fn") {
		t.Errorf("definitions should not be echoed:\n%s", out)
	}
}

func TestRunReportsErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "bad.sb", "(+ 1 undefined_name)\n(+ 2 2)\n")

	code, out, errOut := runCLI(t, "run", path)
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if !strings.Contains(out, "4\n") {
		t.Errorf("evaluation should continue after an error:\n%s", out)
	}
	if !strings.Contains(errOut, "E2001") {
		t.Errorf("stderr missing undefined variable diagnostic:\n%s", errOut)
	}
}

func TestRunParseError(t *testing.T) {
	path := writeSource(t, t.TempDir(), "broken.sb", "(+ 1 2")
	code, _, errOut := runCLI(t, "run", path)
	if code != 1 || !strings.Contains(errOut, "parse") {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
}

func TestIRCommand(t *testing.T) {
	path := writeSource(t, t.TempDir(), "prog.sb", "(fn inc x (+ x 1))\n(+ 4 6)\n")
	code, out, errOut := runCLI(t, "ir", path)
	if code != 0 {
		t.Fatalf("exit %d, stderr:\n%s", code, errOut)
	}
	for _, want := range []string{"inc", "main"} {
		if !strings.Contains(out, want) {
			t.Errorf("IR missing %q:\n%s", want, out)
		}
	}
}

func TestTestCommand(t *testing.T) {
	dir := t.TempDir()
	pass := writeSource(t, dir, "pass.sb", "@test\n(fn ok (== 2 2))\n")
	fail := writeSource(t, dir, "fail.sb", "@test\n(fn ok (== 2 2))\n@test\n(fn broken false)\n")

	code, out, _ := runCLI(t, "test", pass)
	if code != 0 || !strings.Contains(out, "1 passed, 0 failed") {
		t.Errorf("pass.sb: exit %d\n%s", code, out)
	}
	code, out, _ = runCLI(t, "test", fail)
	if code != 1 || !strings.Contains(out, "FAIL  broken") {
		t.Errorf("fail.sb: exit %d\n%s", code, out)
	}
}

func TestConfigLanguageGate(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "sable.yaml", "language: \">= 99.0\"\n")
	path := writeSource(t, dir, "main.sb", "1\n")

	code, _, errOut := runCLI(t, "run", path)
	if code != 1 || !strings.Contains(errOut, "does not satisfy") {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no args", nil, 2},
		{"unknown command", []string{"frobnicate"}, 2},
		{"run without files", []string{"run"}, 2},
		{"ir with two files", []string{"ir", "a.sb", "b.sb"}, 2},
		{"help", []string{"help"}, 0},
		{"version", []string{"version", "--json"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _, _ := runCLI(t, tt.args...); code != tt.code {
				t.Errorf("exit %d, want %d", code, tt.code)
			}
		})
	}
}
