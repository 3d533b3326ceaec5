package codegen

import (
	"bytes"
	"go/format"
	"go/parser"
	"go/scanner"
	"go/token"
	"sort"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"tensa/internal/diag"
	"tensa/internal/source"

	_ "embed"
)

//go:embed main.go.tmpl
var mainSource string

var mainTemplate = template.Must(template.New("MainTMPL").Parse(mainSource))

// bodyMarker stands in for the statements while the wrapper is rendered so
// that the body offset is known exactly.
const bodyMarker = "/*tensa:body*/"

// PrintError means the wrapped fragments are not valid Go.
type PrintError struct {
	// Span is the source span of the fragment the Go parser stopped at.
	Span source.Span
	// Source is the unformatted wrapper that failed to parse.
	Source []byte
	Err    error
}

func (e *PrintError) Error() string {
	return "generated code is not valid Go: " + e.Err.Error()
}

func (e *PrintError) Unwrap() error { return e.Err }

// Diagnostic converts the failure for rendering.
func (e *PrintError) Diagnostic() diag.Diagnostic {
	return diag.NewError(diag.GenMalformedOutput, e.Span, e.Error()).
		WithLabel("generated from here")
}

type mainData struct {
	Target
	Alias       string
	UsesPackage bool
	Body        string
}

// layout joins the fragments into statement lines and returns the offset of
// every fragment inside the joined text.
func layout(frags Fragments) (string, []int) {
	var sb strings.Builder
	offsets := make([]int, len(frags))
	lineStart := true
	for i, f := range frags {
		if !lineStart {
			sb.WriteByte(' ')
		}
		offsets[i] = sb.Len()
		sb.WriteString(f.Text)
		lineStart = f.Text == ";"
		if lineStart && i < len(frags)-1 {
			sb.WriteString("\n\t")
		}
	}
	return sb.String(), offsets
}

// Print wraps frags in a main function, checks that the result parses as
// Go and returns it gofmt formatted.
func Print(frags Fragments, target Target) ([]byte, error) {
	alias := target.PackageAlias()
	body, offsets := layout(frags)
	uses := false
	for _, f := range frags {
		if f.Text == alias {
			uses = true
			break
		}
	}

	var buf bytes.Buffer
	if err := mainTemplate.Execute(&buf, mainData{
		Target:      target,
		Alias:       alias,
		UsesPackage: uses,
		Body:        bodyMarker,
	}); err != nil {
		return nil, errors.Wrap(err, "cannot render main wrapper")
	}
	wrapped := buf.String()
	bodyStart := strings.Index(wrapped, bodyMarker)
	src := []byte(strings.Replace(wrapped, bodyMarker, body, 1))

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "main.go", src, parser.AllErrors|parser.ParseComments)
	if err != nil {
		perr := &PrintError{Source: src, Err: err}
		var list scanner.ErrorList
		if errors.As(err, &list) && len(list) > 0 {
			perr.Span = fragmentAt(frags, offsets, list[0].Pos.Offset-bodyStart)
		}
		return nil, perr
	}

	var out bytes.Buffer
	if err := format.Node(&out, fset, file); err != nil {
		return nil, errors.Errorf("cannot format generated code: %v", err)
	}
	return out.Bytes(), nil
}

// fragmentAt returns the span of the fragment covering off, a byte offset
// into the laid out body. Offsets outside the body clamp to the first or
// last fragment.
func fragmentAt(frags Fragments, offsets []int, off int) source.Span {
	if len(frags) == 0 {
		return source.Span{}
	}
	i := sort.SearchInts(offsets, off+1) - 1
	if i < 0 {
		i = 0
	}
	return frags[i].Span
}
