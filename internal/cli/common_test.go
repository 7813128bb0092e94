package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, false, false)
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	l.Info("hidden")
	l.Debug("hidden")
	l.Warn("careful %d", 1)
	l.Error("broken")

	want := "[WARN] 03:04:05: careful 1\n[ERROR] 03:04:05: broken\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}

	buf.Reset()
	l.DebugMode = true
	l.Debug("shown")
	if !strings.Contains(buf.String(), "[DEBUG] 03:04:05: shown") {
		t.Fatalf("debug line missing: %q", buf.String())
	}
}

func TestNilLoggerIsSilent(t *testing.T) {
	var l *Logger
	l.Info("x")
	l.Debug("x")
	l.Warn("x")
	l.Error("x")
}

func TestPrintVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	PrintVersion(&buf, "sable", true)
	if !strings.Contains(buf.String(), `"version": "`+Version+`"`) {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, nil)
	if buf.Len() != 0 {
		t.Fatalf("nil error printed %q", buf.String())
	}
	PrintError(&buf, errors.New("no such file"))
	if got := buf.String(); got != "Error: no such file\n" {
		t.Fatalf("got %q", got)
	}
}
