package main

import (
	"io"
	"os"

	"github.com/xyproto/env/v2"
)

// colorEnabled reports whether diagnostics written to w should use ANSI
// colors. NO_COLOR disables them.
func colorEnabled(w io.Writer) bool {
	if env.Has("NO_COLOR") {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f.Fd())
}
