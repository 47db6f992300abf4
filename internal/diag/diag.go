// Package diag renders the diagnostics an embedder sees: uncaught stack
// traces (spec.md §7, "user-visible stack trace") and the handful of
// internal sentinel errors the interpreter raises on resource exhaustion.
// Grounded on funvibe-funxy/internal/vm/vm.go's own diagnostic
// conventions (formatFilePath, package-level sentinel errors,
// panic/recover around the dispatch loop for stack-overflow/underflow),
// generalized from that package's ad-hoc string formatting into a
// reusable Frame/Trace type internal/vm can build without importing
// a display concern into its hot path.
package diag

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// Sentinel errors for the interpreter's own resource limits, mirrored
// from the teacher's errStackOverflow/errStackUnderflow/errTruncatedBytecode.
var (
	ErrStackOverflow     = fmt.Errorf("stack overflow")
	ErrFrameOverflow     = fmt.Errorf("call stack overflow")
	ErrTruncatedBytecode = fmt.Errorf("truncated bytecode")
)

// FormatFilePath renders a module file path for display in a trace: made
// relative to the working directory when absolute, exactly as
// formatFilePath does in the teacher's vm.go.
func FormatFilePath(file string) string {
	if file == "" {
		return file
	}
	if filepath.IsAbs(file) {
		if wd, err := os.Getwd(); err == nil {
			if rel, err := filepath.Rel(wd, file); err == nil {
				file = rel
			}
		}
	}
	return strings.TrimSuffix(file, filepath.Ext(file))
}

// Frame is one line of a rendered stack trace: the module/function that
// was executing and the bytecode offset within it.
type Frame struct {
	Module   string
	Function string
	PC       int
}

func (f Frame) String() string {
	return fmt.Sprintf("  at %s.%s (pc=%d)", FormatFilePath(f.Module), f.Function, f.PC)
}

// Trace is the ordered, bottom-to-top (outermost-first) list of frames active when an
// exception escaped uncaught, plus the exception's own rendered message.
type Trace struct {
	Message string
	Frames  []Frame
}

// Render produces the multi-line trace text an embedder prints or logs on
// an uncaught exception. humanize.Comma on the frame count keeps very deep
// recursive traces legible at a glance, the same role go-humanize plays
// for byte/count formatting throughout the pack.
func (t Trace) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "uncaught exception: %s\n", t.Message)
	fmt.Fprintf(&b, "%s frame(s):\n", humanize.Comma(int64(len(t.Frames))))
	for _, f := range t.Frames {
		b.WriteString(f.String())
		b.WriteByte('\n')
	}
	return b.String()
}
