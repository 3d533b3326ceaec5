package parser

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"tensa/internal/source"
)

// SyntaxError is one low-level failure collected while parsing.
// Either Msg is set, or Expected/Found describe a token mismatch.
type SyntaxError struct {
	Span     source.Span
	Expected []string
	Found    string
	Msg      string
}

func (e *SyntaxError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%d..%d: %s", e.Span.Start, e.Span.End, e.Msg)
	}
	return fmt.Sprintf("%d..%d: %s", e.Span.Start, e.Span.End, e.Describe())
}

// Describe renders the mismatch without position information.
func (e *SyntaxError) Describe() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("expected %s, found %s", joinAlternatives(e.Expected), e.Found)
}

func joinAlternatives(items []string) string {
	switch len(items) {
	case 0:
		return "something else"
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
}

// Error is returned when the input is not a valid program. No partial AST is
// produced; every collected failure is kept.
type Error struct {
	errs error
}

func (e *Error) Error() string {
	return "failed to parse: " + e.errs.Error()
}

func (e *Error) Unwrap() []error {
	return multierr.Errors(e.errs)
}

// Errors returns the individual failures.
func (e *Error) Errors() []*SyntaxError {
	all := multierr.Errors(e.errs)
	out := make([]*SyntaxError, 0, len(all))
	for _, err := range all {
		if se, ok := err.(*SyntaxError); ok {
			out = append(out, se)
		}
	}
	return out
}

// Primary returns the span of the first failure.
func (e *Error) Primary() source.Span {
	if errs := e.Errors(); len(errs) > 0 {
		return errs[0].Span
	}
	return source.Span{}
}

func (s *state) err() error {
	var errs error
	for _, c := range s.custom {
		errs = multierr.Append(errs, c)
	}
	// a rejected literal explains the failure better than the mismatches
	// that backtracking around it produced
	if errs == nil && s.failPos >= 0 {
		end := s.failPos
		if end < len(s.src) {
			end++
			for end < len(s.src) && s.src[end]&0xC0 == 0x80 {
				end++
			}
		}
		errs = multierr.Append(errs, &SyntaxError{
			Span:     s.span(s.failPos, end),
			Expected: append([]string(nil), s.expected...),
			Found:    s.found(s.failPos),
		})
	}
	if errs == nil {
		errs = &SyntaxError{Span: s.span(0, 0), Msg: "unexpected input"}
	}
	return &Error{errs: errs}
}
