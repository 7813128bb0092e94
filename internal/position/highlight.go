package position

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Highlight renders the lines covered by span with a caret underline, in the
// style used by diagnostic output:
//
//	   3 | (+ 1 2.0)
//	     | ^^^^^^^^^
func (sf *SourceFile) Highlight(span Span) string {
	if sf == nil || !span.IsValid() || span.Start.Filename != sf.Filename {
		return ""
	}

	var result strings.Builder
	endLine := span.End.Line
	if endLine > len(sf.Lines) {
		endLine = len(sf.Lines)
	}

	for lineNum := span.Start.Line; lineNum <= endLine; lineNum++ {
		line := sf.Line(lineNum)
		result.WriteString(fmt.Sprintf("%4d | %s\n", lineNum, line))
		result.WriteString("     | ")

		startCol, endCol := 1, utf8.RuneCountInString(line)+1
		if lineNum == span.Start.Line {
			startCol = span.Start.Column
		}
		if lineNum == span.End.Line {
			endCol = span.End.Column
		}
		underline(&result, startCol, endCol)
		result.WriteString("\n")
	}

	return result.String()
}

func underline(result *strings.Builder, startCol, endCol int) {
	if startCol < 1 {
		startCol = 1
	}
	result.WriteString(strings.Repeat(" ", startCol-1))
	width := endCol - startCol
	if width < 1 {
		width = 1
	}
	result.WriteString(strings.Repeat("^", width))
}
