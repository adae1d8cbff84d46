package output

import (
	"fmt"
	"io"

	"github.com/arthur-debert/lnedit/pkg/ui/output/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Color modes accepted by NewPrinter
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Printer writes styled lines
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter creates a printer for w. In auto mode styling is applied only
// when w is a terminal and NO_COLOR is not set.
func NewPrinter(w io.Writer, mode string) *Printer {
	p := &Printer{w: w}

	switch mode {
	case ColorAlways:
		p.color = true
		if lipgloss.ColorProfile() == termenv.Ascii {
			lipgloss.SetColorProfile(termenv.ANSI256)
		}
	case ColorNever:
		p.color = false
	default:
		p.color = IsTerminal(w) && !termenv.EnvNoColor()
	}
	return p
}

// IsTerminal reports whether w is attached to a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Color reports whether styles are applied
func (p *Printer) Color() bool {
	return p.color
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Render applies the named style to text when color is on
func (p *Printer) Render(style, text string) string {
	if !p.color {
		return text
	}
	return styles.GetStyle(style).Render(text)
}

// Println writes text in the named style followed by a newline
func (p *Printer) Println(style, text string) {
	_, _ = fmt.Fprintln(p.w, p.Render(style, text))
}

// Printf formats and writes text in the named style, without a newline
func (p *Printer) Printf(style, format string, args ...interface{}) {
	_, _ = fmt.Fprint(p.w, p.Render(style, fmt.Sprintf(format, args...)))
}

// Link renders "name -> target" with the link and target styles
func (p *Printer) Link(name, target string) string {
	return p.Render("LinkName", name) + " -> " + p.Render("Target", target)
}
