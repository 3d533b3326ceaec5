package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tensa/internal/diag"
	"tensa/internal/source"
)

const tabWidth = 4

type palette struct {
	err     *color.Color
	warn    *color.Color
	info    *color.Color
	note    *color.Color
	gutter  *color.Color
	code    *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:     color.New(color.FgRed, color.Bold),
		warn:    color.New(color.FgYellow, color.Bold),
		info:    color.New(color.FgCyan, color.Bold),
		note:    color.New(color.FgCyan),
		gutter:  color.New(color.FgBlue),
		code:    color.New(color.Bold),
	}
	// без явного включения color смотрит на NO_COLOR и tty
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.gutter, p.code} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		sevColor := p.severity(d.Severity)
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			location(d.Primary, fs, opts.PathMode),
			sevColor.Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
			d.Message,
		)
		writeSnippet(w, fs, d.Primary, d.Label, sevColor, p, opts)

		if !opts.ShowNotes {
			continue
		}
		for _, note := range d.Notes {
			// пустой span (например, тайминги) печатаем без контекста
			if note.Span.Empty() {
				fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), note.Msg)
				continue
			}
			fmt.Fprintf(w, "  %s %s: %s\n",
				p.note.Sprint("note:"),
				location(note.Span, fs, opts.PathMode),
				note.Msg,
			)
			writeSnippet(w, fs, note.Span, "", p.note, p, opts)
		}
	}
}

func location(sp source.Span, fs *source.FileSet, mode PathMode) string {
	f := fs.Get(sp.File)
	if f == nil {
		return "<unknown>"
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(f, fs, mode), start.Line, start.Col)
}

// writeSnippet prints the first line of sp with up to opts.Context lines
// above it and underlines the covered part of that line.
func writeSnippet(w io.Writer, fs *source.FileSet, sp source.Span, label string, c *color.Color, p palette, opts PrettyOpts) {
	f := fs.Get(sp.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(sp)

	first := start.Line
	if opts.Context > 0 {
		ctx := uint32(opts.Context) //nolint:gosec // checked positive
		if ctx >= first {
			first = 1
		} else {
			first -= ctx
		}
	}
	gutterWidth := len(strconv.FormatUint(uint64(start.Line), 10))

	for ln := first; ln <= start.Line; ln++ {
		text := expandTabs(f.GetLine(ln))
		if opts.Width > 0 {
			text = runewidth.Truncate(text, int(opts.Width), "…")
		}
		fmt.Fprintf(w, " %s %s %s\n",
			p.gutter.Sprint(fmt.Sprintf("%*d", gutterWidth, ln)),
			p.gutter.Sprint("|"),
			text,
		)
	}

	line := f.GetLine(start.Line)
	startCol := clampCol(start.Col, line)
	endCol := uint32(len(line)) + 1 //nolint:gosec // line comes from a file bounded by uint32
	if end.Line == start.Line {
		endCol = clampCol(end.Col, line)
	}
	pad := runewidth.StringWidth(expandTabs(line[:startCol-1]))
	width := max(runewidth.StringWidth(expandTabs(line[startCol-1:endCol-1])), 1)

	marker := "^" + strings.Repeat("~", width-1)
	if label != "" {
		marker += " " + label
	}
	fmt.Fprintf(w, " %s %s %s%s\n",
		strings.Repeat(" ", gutterWidth),
		p.gutter.Sprint("|"),
		strings.Repeat(" ", pad),
		c.Sprint(marker),
	)
}

func clampCol(col uint32, line string) uint32 {
	limit := uint32(len(line)) + 1 //nolint:gosec // line comes from a file bounded by uint32
	if col < 1 {
		return 1
	}
	return min(col, limit)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
