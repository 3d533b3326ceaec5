package diag

import (
	"fmt"
	"strings"

	"tensa/internal/source"
)

// Reporter receives diagnostics from a pipeline phase.
type Reporter interface {
	Report(d Diagnostic)
}

// ReportBuilder assembles one diagnostic and hands it to a Reporter on Emit.
// A nil builder is a no-op.
type ReportBuilder struct {
	to   Reporter
	d    Diagnostic
	sent bool
}

func NewReportBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{to: r, d: New(sev, code, primary, msg)}
}

// ReportError starts an error diagnostic.
func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, msg)
}

// WithLabel sets the text shown under the primary span.
func (b *ReportBuilder) WithLabel(label string) *ReportBuilder {
	if b != nil {
		b.d.Label = label
	}
	return b
}

func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b != nil {
		b.d = b.d.WithNote(sp, msg)
	}
	return b
}

// Emit reports the diagnostic. Repeated calls do nothing.
func (b *ReportBuilder) Emit() {
	if b == nil || b.sent {
		return
	}
	b.sent = true
	if b.to != nil {
		b.to.Report(b.d)
	}
}

// Diagnostic returns what has been assembled so far.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.d
}

// BagReporter adds to Bag; diagnostics past the bag limit are dropped.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

// MultiReporter fans every diagnostic out in order.
type MultiReporter []Reporter

func (m MultiReporter) Report(d Diagnostic) {
	for _, r := range m {
		if r != nil {
			r.Report(d)
		}
	}
}

// DedupReporter forwards a diagnostic only the first time it is seen.
// Two diagnostics are the same when code, severity, message and every span
// (primary and notes) match; the same error at two use sites is kept twice.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]bool
}

type dedupKey struct {
	code  Code
	sev   Severity
	span  source.Span
	msg   string
	notes string
}

func keyOf(d Diagnostic) dedupKey {
	var notes strings.Builder
	for _, n := range d.Notes {
		fmt.Fprintf(&notes, "%s %q;", n.Span, n.Msg)
	}
	return dedupKey{code: d.Code, sev: d.Severity, span: d.Primary, msg: d.Message, notes: notes.String()}
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: map[dedupKey]bool{}}
}

func (r *DedupReporter) Report(d Diagnostic) {
	key := keyOf(d)
	if r.seen[key] {
		return
	}
	r.seen[key] = true
	if r.next != nil {
		r.next.Report(d)
	}
}
