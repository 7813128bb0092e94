// Package position provides source position tracking for the Sable
// evaluator. Spans are attached to every syntax node so diagnostics can point
// at the offending source range.
package position

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Position is a point in a source file. Line and Column are 1-based, Offset
// is the 0-based byte offset.
type Position struct {
	Filename string
	Line     int
	Column   int
	Offset   int
}

func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0 && p.Offset >= 0
}

func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", filepath.Base(p.Filename), p.Line, p.Column)
}

// Span is the half-open range [Start, End) of one file. The zero Span is
// invalid and stands for an unknown location.
type Span struct {
	Start Position
	End   Position
}

func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid() &&
		s.Start.Filename == s.End.Filename &&
		s.Start.Offset <= s.End.Offset
}

// String renders the span as file:line:col-col, or file:line:col-line:col
// when it crosses lines.
func (s Span) String() string {
	if !s.IsValid() {
		return "<unknown>"
	}
	prefix := ""
	if s.Start.Filename != "" {
		prefix = filepath.Base(s.Start.Filename) + ":"
	}
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%s%d:%d-%d", prefix, s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%s%d:%d-%d:%d", prefix, s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// Union returns the smallest span covering s and other. An invalid operand
// is ignored; spans of different files leave s unchanged.
func (s Span) Union(other Span) Span {
	switch {
	case !s.IsValid():
		return other
	case !other.IsValid(), s.Start.Filename != other.Start.Filename:
		return s
	}
	out := s
	if other.Start.Offset < out.Start.Offset {
		out.Start = other.Start
	}
	if other.End.Offset > out.End.Offset {
		out.End = other.End
	}
	return out
}

// SourceFile is the text a module was read from.
type SourceFile struct {
	Filename string
	Content  string
	Lines    []string
}

func NewSourceFile(filename, content string) *SourceFile {
	return &SourceFile{
		Filename: filename,
		Content:  content,
		Lines:    strings.Split(content, "\n"),
	}
}

// Line returns line n (1-based), or "" when out of range.
func (sf *SourceFile) Line(n int) string {
	if sf == nil || n < 1 || n > len(sf.Lines) {
		return ""
	}
	return sf.Lines[n-1]
}

// Text returns the exact source text covered by the span, or "" when the
// span does not belong to this file.
func (sf *SourceFile) Text(span Span) string {
	if sf == nil || !span.IsValid() || span.Start.Filename != sf.Filename {
		return ""
	}
	if span.End.Offset > len(sf.Content) {
		return ""
	}
	return sf.Content[span.Start.Offset:span.End.Offset]
}
