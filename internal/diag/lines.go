package diag

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"tensa/internal/source"
)

// line is one rendered entry of Lines.
type line struct {
	sev     string
	code    string
	path    string
	pos     source.LineCol
	message string
}

func (l line) String() string {
	return fmt.Sprintf("%s %s %s:%d:%d %s", l.sev, l.code, l.path, l.pos.Line, l.pos.Col, l.message)
}

// Lines renders diags one per line as "severity CODE path:line:col message",
// sorted by position so the output is stable across runs. Notes become
// "note" lines carrying the code of their diagnostic. pathMode is passed to
// source.File.FormatPath. Spans of files missing from fs are skipped.
func Lines(diags []Diagnostic, fs *source.FileSet, withNotes bool, pathMode string) string {
	if fs == nil {
		return ""
	}
	var out []line
	add := func(sev string, code Code, sp source.Span, msg string) {
		f := fs.Get(sp.File)
		if f == nil {
			return
		}
		pos, _ := fs.Resolve(sp)
		out = append(out, line{
			sev:     sev,
			code:    code.ID(),
			path:    strings.TrimPrefix(slashed(f.FormatPath(pathMode, fs.BaseDir())), "./"),
			pos:     pos,
			message: oneLine(msg),
		})
	}
	for _, d := range diags {
		add(strings.ToLower(d.Severity.String()), d.Code, d.Primary, d.Message)
		if withNotes {
			for _, n := range d.Notes {
				add("note", d.Code, n.Span, n.Msg)
			}
		}
	}

	slices.SortStableFunc(out, func(a, b line) int {
		return cmp.Or(
			cmp.Compare(a.path, b.path),
			cmp.Compare(a.pos.Line, b.pos.Line),
			cmp.Compare(a.pos.Col, b.pos.Col),
			cmp.Compare(a.sev, b.sev),
			cmp.Compare(a.code, b.code),
			cmp.Compare(a.message, b.message),
		)
	})
	rendered := make([]string, len(out))
	for i, l := range out {
		rendered[i] = l.String()
	}
	return strings.Join(rendered, "\n")
}

func slashed(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

// oneLine folds line breaks so every entry stays on a single line.
func oneLine(msg string) string {
	return strings.TrimSpace(strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(msg))
}
