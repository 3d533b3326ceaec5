package driver

import (
	"tensa/internal/diag"
	"tensa/internal/parser"
	"tensa/internal/trace"
)

// reportSyntax converts every failure collected by the parser. Literal
// problems carry their own message; mismatches describe what was expected.
func reportSyntax(r diag.Reporter, err *parser.Error) {
	for _, se := range err.Errors() {
		if se.Msg != "" {
			diag.ReportError(r, diag.SynInvalidLiteral, se.Span, se.Msg).Emit()
			continue
		}
		diag.ReportError(r, diag.SynUnexpectedInput, se.Span, se.Describe()).
			WithLabel("unexpected " + se.Found).
			Emit()
	}
}

// traceReporter mirrors diagnostics into the tracer as node-level points.
type traceReporter struct {
	tracer trace.Tracer
	parent uint64
}

func (t traceReporter) Report(d diag.Diagnostic) {
	trace.Point(t.tracer, trace.ScopeNode, "diagnostic", d.Code.ID()+" "+d.Message, t.parent)
}
