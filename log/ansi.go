package log

import (
	"io"
	"regexp"
)

var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*[a-zA-Z]")

// AnsiStrippingWriter strips ANSI escape sequences before forwarding writes
// to the underlying writer. Compiler output and the golog-based logger color
// their terminal output with lipgloss/golog; a file sink (such as a captured
// job log) should not retain those codes.
type AnsiStrippingWriter struct {
	w io.Writer
}

// NewAnsiStrippingWriter wraps w so ANSI escapes are stripped before writing.
func NewAnsiStrippingWriter(w io.Writer) *AnsiStrippingWriter {
	return &AnsiStrippingWriter{w: w}
}

func (a *AnsiStrippingWriter) Write(p []byte) (int, error) {
	stripped := ansiEscape.ReplaceAll(p, nil)
	if _, err := a.w.Write(stripped); err != nil {
		return 0, err
	}
	return len(p), nil
}
