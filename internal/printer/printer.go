// Package printer writes styled CLI output: status lines, doctor check items,
// report blocks and validation error boxes.
package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hay-kot/criterio"
)

// ANSI color codes (Tokyo Night palette)
const (
	ColorReset     = "\033[0m"
	ColorRed       = "\033[38;2;215;95;107m"  // #d75f6b
	ColorGreen     = "\033[38;2;158;206;106m" // #9ece6a
	ColorYellow    = "\033[38;2;224;175;104m" // #e0af68
	ColorGray      = "\033[38;2;86;95;137m"   // #565f89
	ColorBlue      = "\033[38;2;122;162;247m" // #7aa2f7
	ColorBold      = "\033[1m"
	ColorUnderline = "\033[4m"
)

// Symbols
const (
	Check = "✔"
	Cross = "✘"
	Dot   = "•"
	Arrow = "›"
)

type ctxKey struct{}

// Printer handles formatted output with colors and styles.
type Printer struct {
	writer io.Writer
	plain  bool
}

// New creates a new Printer that writes to the given writer.
func New(w io.Writer) *Printer {
	return &Printer{writer: w}
}

// NewPlain creates a Printer that never emits ANSI codes.
func NewPlain(w io.Writer) *Printer {
	return &Printer{writer: w, plain: true}
}

// NewContext returns a context with the printer attached.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx retrieves the printer from context, or creates a default one.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

// FatalError prints a formatted error box and does NOT exit.
// Caller should handle exit code.
func (p *Printer) FatalError(err error) {
	if err == nil {
		return
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		p.printValidationErrors(err, fieldErrs)
		return
	}

	p.box("Error", nil, []string{p.colorize(ColorGray, err.Error())})
}

// printValidationErrors lists each field error inside the box, prefixed by
// whatever context the wrapping error added (e.g. "load config: invalid config").
func (p *Printer) printValidationErrors(wrappedErr error, fieldErrs criterio.FieldErrors) {
	errStr := wrappedErr.Error()

	var header []string
	if idx := strings.Index(errStr, fieldErrs.Error()); idx > 0 {
		header = append(header, p.colorize(ColorGray, strings.TrimSuffix(errStr[:idx], ": ")))
	}

	lines := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		line := p.colorize(ColorRed, Cross) + " "
		if fe.Field != "" {
			line += p.colorize(ColorGray, fe.Field+": ")
		}
		lines = append(lines, line+fe.Err.Error())
	}

	p.box("Validation Error", header, lines)
}

func (p *Printer) box(title string, header, lines []string) {
	bar := p.colorize(ColorRed, "│")

	p.line(p.colorize(ColorRed, "╭ " + title))
	for _, h := range header {
		p.line(bar + " " + h)
	}
	if len(header) > 0 {
		p.line(bar)
	}
	for _, l := range lines {
		p.line(bar + " " + l)
	}
	p.line(p.colorize(ColorRed, "╵"))
}

// Block prints a titled section with body indented beneath it. Used for the
// run output and statistics reports, which span multiple lines.
func (p *Printer) Block(title, body string) {
	p.line(p.colorize(ColorBlue, Arrow+" "+title))
	for _, l := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		p.line("  " + l)
	}
}

// Errorf prints an error message in red.
func (p *Printer) Errorf(format string, args ...any) {
	p.line(p.colorize(ColorRed, Cross+" "+fmt.Sprintf(format, args...)))
}

// Successf prints a success message in green.
func (p *Printer) Successf(format string, args ...any) {
	p.line(p.colorize(ColorGreen, Check+" "+fmt.Sprintf(format, args...)))
}

// Infof prints an info message in gray.
func (p *Printer) Infof(format string, args ...any) {
	p.line(p.colorize(ColorGray, Dot+" "+fmt.Sprintf(format, args...)))
}

// Warnf prints a warning message in yellow.
func (p *Printer) Warnf(format string, args ...any) {
	p.line(p.colorize(ColorYellow, Dot+" "+fmt.Sprintf(format, args...)))
}

// Printf prints a plain message without colors.
func (p *Printer) Printf(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

// Section prints a section header (bold + underlined).
func (p *Printer) Section(title string) {
	p.line(p.colorize(ColorBold+ColorUnderline, title))
}

// CheckItem prints a success item with green checkmark.
func (p *Printer) CheckItem(label, detail string) {
	p.item(ColorGreen, Check, label, detail)
}

// WarnItem prints a warning item with yellow dot.
func (p *Printer) WarnItem(label, detail string) {
	p.item(ColorYellow, Dot, label, detail)
}

// FailItem prints a failure item with red cross.
func (p *Printer) FailItem(label, detail string) {
	p.item(ColorRed, Cross, label, detail)
}

func (p *Printer) item(color, symbol, label, detail string) {
	line := "  " + p.colorize(color, symbol) + " " + label
	if detail != "" {
		line += ": " + detail
	}
	p.line(line)
}

func (p *Printer) line(s string) {
	_, _ = io.WriteString(p.writer, s+"\n")
}

func (p *Printer) colorize(color, text string) string {
	if p.plain {
		return text
	}
	return color + text + ColorReset
}
