package diagnostic

import (
	"strings"
	"testing"

	serrors "github.com/sable-lang/sable/internal/errors"
	"github.com/sable-lang/sable/internal/position"
)

func testSpan() position.Span {
	return position.Span{
		Start: position.Position{Filename: "m.sb", Line: 1, Column: 1, Offset: 0},
		End:   position.Position{Filename: "m.sb", Line: 1, Column: 10, Offset: 9},
	}
}

func TestFromError(t *testing.T) {
	err := serrors.WithFrame(serrors.TypeMismatch("Integer", "Float", testSpan()), "f", position.Span{})
	d := FromError(err)

	if d.Level != DiagnosticError || d.Category != DiagnosticType {
		t.Errorf("level %s category %s", d.Level, d.Category)
	}
	if d.Code != serrors.KindTypeMismatch.Code() {
		t.Errorf("code %s", d.Code)
	}
	if len(d.Trace) != 1 || d.Trace[0].Name != "f" {
		t.Errorf("trace %v", d.Trace)
	}

	ni := FromError(serrors.NotImplemented("'struct'", testSpan()))
	if ni.Level != DiagnosticWarning || ni.Category != DiagnosticCodegen {
		t.Errorf("not-implemented: level %s category %s", ni.Level, ni.Category)
	}
}

func TestEngine(t *testing.T) {
	tests := []struct {
		name     string
		config   DiagnosticConfig
		errors   int
		warnings int
	}{
		{"default", DefaultConfig(), 2, 1},
		{"warnings as errors", DiagnosticConfig{WarningsAsErrors: true}, 3, 0},
		{"ignored code", DiagnosticConfig{IgnoreCodes: []string{serrors.KindSyntax.Code()}}, 1, 1},
		{"max errors", DiagnosticConfig{MaxErrors: 1}, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := NewDiagnosticEngine(tt.config)
			de.AddError(serrors.Syntax(testSpan(), "first"))
			de.AddDiagnostic(NewDiagnostic().Warning().Code("W2001").Title("dangling attribute").Build())
			de.AddError(serrors.UndefinedVariable("x", testSpan()))

			if got := len(de.GetErrors()); got != tt.errors {
				t.Errorf("errors = %d, want %d", got, tt.errors)
			}
			if got := len(de.GetWarnings()); got != tt.warnings {
				t.Errorf("warnings = %d, want %d", got, tt.warnings)
			}
		})
	}
}

func TestDrainClears(t *testing.T) {
	de := NewDiagnosticEngine(DefaultConfig())
	de.AddError(serrors.Internal("boom"))
	de.AddError(nil)

	if got := de.Drain(); len(got) != 1 {
		t.Fatalf("drained %d diagnostics, want 1", len(got))
	}
	if de.HasErrors() || len(de.GetDiagnostics()) != 0 {
		t.Fatalf("engine not empty after drain")
	}
}

func TestFormat(t *testing.T) {
	src := position.NewSourceFile("m.sb", "(+ 1 2.0)")
	err := serrors.WithFrame(serrors.TypeMismatch("Integer", "Float", testSpan()), "main", position.Span{})
	f := &Formatter{Source: src, ShowTrace: true}

	out := f.Format([]Diagnostic{*FromError(err)})
	for _, want := range []string{
		"m.sb:1:1: error[E3001]: type mismatch",
		"   1 | (+ 1 2.0)",
		"     | ^^^^^^^^^",
		"in main",
		"Found 1 error(s).",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	colored := (&Formatter{Color: true}).FormatOne(FromError(err))
	if !strings.Contains(colored, colorRed) {
		t.Errorf("color not applied: %q", colored)
	}
}
