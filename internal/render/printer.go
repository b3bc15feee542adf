package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	colorRed    = color.New(color.FgRed, color.Bold)
	colorGreen  = color.New(color.FgGreen)
	colorYellow = color.New(color.FgYellow)
	colorCyan   = color.New(color.FgCyan)
)

// Printer writes coloured status lines for humans. Colour is dropped when
// the destination is not a terminal or NO_COLOR is set.
type Printer struct {
	w io.Writer
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Warn prints a yellow warning line.
func (p *Printer) Warn(format string, args ...any) {
	colorYellow.Fprintf(p.w, "warning: "+format+"\n", args...)
}

// Error prints a red error line.
func (p *Printer) Error(format string, args ...any) {
	colorRed.Fprintf(p.w, "error: "+format+"\n", args...)
}

// Success prints a green status line.
func (p *Printer) Success(format string, args ...any) {
	colorGreen.Fprintf(p.w, format+"\n", args...)
}

// Heading prints a cyan section title.
func (p *Printer) Heading(title string) {
	colorCyan.Fprintln(p.w, title)
}

// Diff prints one before/after pair.
func (p *Printer) Diff(location, before, after string) {
	colorCyan.Fprintf(p.w, "%s\n", location)
	colorRed.Fprintf(p.w, "- %s\n", before)
	colorGreen.Fprintf(p.w, "+ %s\n", after)
}

// Println prints an uncoloured line.
func (p *Printer) Println(args ...any) {
	fmt.Fprintln(p.w, args...)
}
