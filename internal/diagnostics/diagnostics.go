// Package diagnostics implements Neo's diagnostic type and the
// accumulating Bag used for warning-class diagnostics (§7).
//
// Grounded on sentra/internal/errors.SentraError: a typed error carrying a
// source location and an optional source line rendered with a caret
// underline. Bug-class diagnostics (§7.3) wrap with github.com/pkg/errors
// to keep a stack trace; user/parse diagnostics don't need one — the
// position *is* the trace.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

// Level classifies a process-level diagnostic (§6's "kind: message" form).
type Level string

const (
	Info  Level = "info"
	Warn  Level = "warn"
	Error Level = "error"
	Fatal Level = "fatal"
)

// Location is a source position triple: file, line, column.
type Location struct {
	File   string
	Line   int
	Column int
}

// Diagnostic is a single positioned or process-level message.
type Diagnostic struct {
	Level    Level
	Message  string
	Location Location
	Source   string // the offending source line, if known
	cause    error  // non-nil only for bug-class diagnostics (§7.3)
}

// Positioned reports a user error at loc, matching §6's
// "<path>:<line>:<col>: <message>" diagnostics.
func Positioned(loc Location, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Level: Error, Message: fmt.Sprintf(format, args...), Location: loc}
}

// Bug wraps an internal invariant violation (§7.3) with a stack trace via
// github.com/pkg/errors — these should not occur on well-formed input, so
// unlike user errors, the trace matters for triage.
func Bug(format string, args ...interface{}) *Diagnostic {
	cause := errors.Errorf(format, args...)
	return &Diagnostic{Level: Fatal, Message: cause.Error(), cause: cause}
}

// WithSource attaches the offending source line for caret rendering.
func (d *Diagnostic) WithSource(line string) *Diagnostic {
	d.Source = line
	return d
}

// Error renders the diagnostic per §6: positioned errors as
// "path:line:col: message" with a caret-underlined excerpt when Source is
// set; process-level diagnostics as "kind: message".
func (d *Diagnostic) Error() string {
	var sb strings.Builder
	if d.Location.File != "" {
		fmt.Fprintf(&sb, "%s:%d:%d: %s", d.Location.File, d.Location.Line, d.Location.Column, d.Message)
		if d.Source != "" {
			fmt.Fprintf(&sb, "\n  %d | %s\n", d.Location.Line, d.Source)
			fmt.Fprintf(&sb, "  %s^", strings.Repeat(" ", len(fmt.Sprintf("%d | ", d.Location.Line))+max(d.Location.Column-1, 0)))
		}
		if d.cause != nil {
			fmt.Fprintf(&sb, "\n%+v", d.cause)
		}
		return sb.String()
	}
	fmt.Fprintf(&sb, "%s: %s", d.Level, d.Message)
	if d.cause != nil {
		fmt.Fprintf(&sb, "\n%+v", d.cause)
	}
	return sb.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Bag accumulates non-fatal, warning-class diagnostics through a compiler
// phase (§7's "diagnostics can be accumulated into a vector" suggestion,
// realized concretely). Fatal user errors are never added here — they
// abort the pipeline immediately per §3.3/§7.1.
type Bag struct {
	items []*Diagnostic
}

// Add appends d to the bag.
func (b *Bag) Add(d *Diagnostic) { b.items = append(b.items, d) }

// Warnf is a convenience constructor-and-add for process-level warnings.
func (b *Bag) Warnf(format string, args ...interface{}) {
	b.Add(&Diagnostic{Level: Warn, Message: fmt.Sprintf(format, args...)})
}

// Len reports how many diagnostics have accumulated.
func (b *Bag) Len() int { return len(b.items) }

// Items returns the accumulated diagnostics in emission order.
func (b *Bag) Items() []*Diagnostic { return b.items }

// color wraps s in an ANSI color code when out is a real terminal
// (github.com/mattn/go-isatty), matching original_source's
// ANSI_RED/ANSI_GREEN macros in include/util.h — which the distilled spec
// keeps around but never actually gates on a TTY check.
func color(code, s string, isTTY bool) string {
	if !isTTY {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

// Flush writes every accumulated diagnostic to w, one per line, colored
// when fd is a terminal.
func (b *Bag) Flush(w interface{ Write([]byte) (int, error) }, fd uintptr) {
	isTTY := isatty.IsTerminal(fd)
	for _, d := range b.items {
		code := "33" // yellow
		if d.Level == Error || d.Level == Fatal {
			code = "31" // red
		}
		fmt.Fprintln(w, color(code, d.Error(), isTTY))
	}
	b.items = nil
}
