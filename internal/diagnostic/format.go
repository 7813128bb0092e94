package diagnostic

import (
	"fmt"
	"strings"

	"github.com/sable-lang/sable/internal/position"
)

// Formatter renders diagnostics as text.
type Formatter struct {
	Source    *position.SourceFile // optional, enables source snippets
	ShowTrace bool
	Color     bool
}

const (
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorReset  = "\x1b[0m"
)

// Format returns a formatted string representation of diagnostics followed
// by a one-line summary.
func (f *Formatter) Format(diagnostics []Diagnostic) string {
	if len(diagnostics) == 0 {
		return ""
	}

	sorted := append([]Diagnostic(nil), diagnostics...)
	Sort(sorted)

	var result strings.Builder
	for i := range sorted {
		if i > 0 {
			result.WriteString("\n")
		}
		result.WriteString(f.FormatOne(&sorted[i]))
	}
	result.WriteString(summary(sorted))

	return result.String()
}

// FormatOne formats a single diagnostic.
func (f *Formatter) FormatOne(diag *Diagnostic) string {
	var result strings.Builder

	level := diag.Level.String()
	if f.Color {
		switch diag.Level {
		case DiagnosticError:
			level = colorRed + level + colorReset
		case DiagnosticWarning:
			level = colorYellow + level + colorReset
		}
	}

	location := "<unknown>"
	if diag.Span.IsValid() {
		location = diag.Span.Start.String()
	}
	result.WriteString(fmt.Sprintf("%s: %s[%s]: %s\n", location, level, diag.Code, diag.Title))

	if diag.Message != "" {
		result.WriteString(fmt.Sprintf("  %s\n", diag.Message))
	}

	if snippet := f.Source.Highlight(diag.Span); snippet != "" {
		result.WriteString(snippet)
	}

	if f.ShowTrace && len(diag.Trace) > 0 {
		result.WriteString("  Trace:\n")
		for _, frame := range diag.Trace {
			result.WriteString(fmt.Sprintf("    in %s\n", frame))
		}
	}

	return result.String()
}

func summary(diagnostics []Diagnostic) string {
	errorCount, warningCount := 0, 0
	for _, d := range diagnostics {
		switch d.Level {
		case DiagnosticError:
			errorCount++
		case DiagnosticWarning:
			warningCount++
		}
	}

	var parts []string
	if errorCount > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", errorCount))
	}
	if warningCount > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", warningCount))
	}
	if len(parts) == 0 {
		return ""
	}

	return fmt.Sprintf("\nFound %s.\n", strings.Join(parts, ", "))
}
