package diag

import (
	"tensa/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	// Label annotates the primary span in rendered output, may be empty.
	Label string
	Notes []Note
}
