package position

import (
	"strings"
	"testing"
)

func pos(line, col, off int) Position {
	return Position{Filename: "a.sb", Line: line, Column: col, Offset: off}
}

func TestSpanValidity(t *testing.T) {
	tests := []struct {
		name string
		span Span
		want bool
	}{
		{"zero", Span{}, false},
		{"single line", Span{Start: pos(1, 1, 0), End: pos(1, 4, 3)}, true},
		{"reversed", Span{Start: pos(1, 4, 3), End: pos(1, 1, 0)}, false},
		{"mixed files", Span{Start: pos(1, 1, 0), End: Position{Filename: "b.sb", Line: 1, Column: 2, Offset: 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestSpanString(t *testing.T) {
	if got := (Span{}).String(); got != "<unknown>" {
		t.Errorf("zero span = %q", got)
	}
	s := Span{Start: pos(2, 3, 10), End: pos(2, 8, 15)}
	if got := s.String(); got != "a.sb:2:3-8" {
		t.Errorf("span = %q", got)
	}
	multi := Span{Start: pos(1, 1, 0), End: pos(3, 2, 20)}
	if got := multi.String(); got != "a.sb:1:1-3:2" {
		t.Errorf("multi-line span = %q", got)
	}
}

func TestSpanUnion(t *testing.T) {
	a := Span{Start: pos(1, 1, 0), End: pos(1, 3, 2)}
	b := Span{Start: pos(1, 5, 4), End: pos(1, 9, 8)}

	u := a.Union(b)
	if u.Start != a.Start || u.End != b.End {
		t.Fatalf("union = %v", u)
	}
	if got := (Span{}).Union(a); got != a {
		t.Fatalf("union with invalid span = %v", got)
	}
	if got := b.Union(a); got != u {
		t.Fatalf("union is not symmetric: %v vs %v", got, u)
	}
	foreign := Span{Start: Position{Filename: "b.sb", Line: 1, Column: 1}, End: Position{Filename: "b.sb", Line: 1, Column: 9, Offset: 8}}
	if got := a.Union(foreign); got != a {
		t.Fatalf("union across files = %v", got)
	}
}

func TestSourceText(t *testing.T) {
	sf := NewSourceFile("a.sb", "(let x 1)\n(assert (< x 0))")
	span := Span{Start: pos(2, 9, 18), End: pos(2, 16, 25)}
	if got := sf.Text(span); got != "(< x 0)" {
		t.Fatalf("Text = %q", got)
	}

	other := span
	other.Start.Filename, other.End.Filename = "b.sb", "b.sb"
	if got := sf.Text(other); got != "" {
		t.Fatalf("Text of foreign span = %q", got)
	}

	var none *SourceFile
	if none.Text(span) != "" || none.Highlight(span) != "" {
		t.Fatalf("nil source file must render nothing")
	}
}

func TestHighlight(t *testing.T) {
	sf := NewSourceFile("a.sb", "(+ 1 2.0)")
	out := sf.Highlight(Span{Start: pos(1, 1, 0), End: pos(1, 10, 9)})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("highlight:\n%s", out)
	}
	if lines[0] != "   1 | (+ 1 2.0)" {
		t.Errorf("source line = %q", lines[0])
	}
	if lines[1] != "     | ^^^^^^^^^" {
		t.Errorf("underline = %q", lines[1])
	}
}
