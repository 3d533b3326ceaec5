// Package diag defines the diagnostic model shared by all pipeline phases.
//
// Diagnostic is the central record: a Severity, a stable Code (see codes.go),
// a short Message, the Primary span with an optional Label, and optional
// Notes pointing at related spans. Two-span findings such as a type mismatch
// between operands carry the second operand as a note.
//
// Phases emit through a Reporter so that storage stays decoupled: BagReporter
// collects into a Bag (limit, sort, filter, transform), DedupReporter
// drops repeats and MultiReporter fans out. ReportBuilder chains labels and
// notes before Emit.
//
// Rendering lives in internal/diagfmt; Lines here produces the stable
// one-line-per-entry form used by tests and the CLI short output.
package diag
