package parser

import (
	"fmt"
	"slices"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"

	"tensa/internal/source"
)

// state is shared by every combinator during one parse. It never rewinds:
// backtracking only moves the position passed between combinators, while the
// furthest failure and any semantic errors are kept for reporting.
type state struct {
	src  string
	file source.FileID

	// furthest position where a combinator failed and what it expected there
	failPos  int
	expected []string

	// errors that are not "expected X" mismatches, e.g. literal overflow
	custom []*SyntaxError
}

func newState(src string, file source.FileID) *state {
	return &state{src: src, file: file, failPos: -1}
}

// Parser recognizes a prefix of the input starting at pos. On success it
// returns the value and the position right after the consumed text.
type Parser[T any] func(s *state, pos int) (T, int, bool)

func (s *state) span(start, end int) source.Span {
	lo, err := safecast.Conv[uint32](start)
	if err != nil {
		panic(fmt.Errorf("span start overflow: %w", err))
	}
	hi, err := safecast.Conv[uint32](end)
	if err != nil {
		panic(fmt.Errorf("span end overflow: %w", err))
	}
	return source.Span{File: s.file, Start: lo, End: hi}
}

// fail records that label was expected at pos and always returns false.
func (s *state) fail(pos int, label string) bool {
	switch {
	case pos > s.failPos:
		s.failPos = pos
		s.expected = append(s.expected[:0], label)
	case pos == s.failPos && !slices.Contains(s.expected, label):
		s.expected = append(s.expected, label)
	}
	return false
}

// report records an error that is not a plain token mismatch.
func (s *state) report(start, end int, msg string) bool {
	sp := s.span(start, end)
	for _, e := range s.custom {
		if e.Span == sp && e.Msg == msg {
			return false
		}
	}
	s.custom = append(s.custom, &SyntaxError{Span: sp, Msg: msg})
	return false
}

// found describes the input at pos for error messages.
func (s *state) found(pos int) string {
	if pos >= len(s.src) {
		return "end of input"
	}
	r, _ := utf8.DecodeRuneInString(s.src[pos:])
	return fmt.Sprintf("%q", r)
}

func skipSpace(src string, pos int) int {
	for pos < len(src) {
		r, size := utf8.DecodeRuneInString(src[pos:])
		if !unicode.IsSpace(r) {
			break
		}
		pos += size
	}
	return pos
}

func trimSpaceRight(src string, start, end int) int {
	for end > start {
		r, size := utf8.DecodeLastRuneInString(src[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	return end
}

// Just matches the literal text tok and yields its span.
func Just(tok string) Parser[source.Span] {
	label := fmt.Sprintf("'%s'", tok)
	return func(s *state, pos int) (source.Span, int, bool) {
		if len(s.src)-pos >= len(tok) && s.src[pos:pos+len(tok)] == tok {
			return s.span(pos, pos+len(tok)), pos + len(tok), true
		}
		return source.Span{}, pos, s.fail(pos, label)
	}
}

// Padded skips whitespace on both sides of p.
func Padded[T any](p Parser[T]) Parser[T] {
	return func(s *state, pos int) (T, int, bool) {
		v, end, ok := p(s, skipSpace(s.src, pos))
		if !ok {
			return v, pos, false
		}
		return v, skipSpace(s.src, end), true
	}
}

// OneOf tries the alternatives in order and returns the first success.
// Earlier alternatives take priority even when a later one would consume more.
func OneOf[T any](alts ...Parser[T]) Parser[T] {
	return func(s *state, pos int) (T, int, bool) {
		for _, alt := range alts {
			if v, end, ok := alt(s, pos); ok {
				return v, end, true
			}
		}
		var zero T
		return zero, pos, false
	}
}

// Optional turns a failure of p into a nil result without consuming input.
func Optional[T any](p Parser[T]) Parser[*T] {
	return func(s *state, pos int) (*T, int, bool) {
		v, end, ok := p(s, pos)
		if !ok {
			return nil, pos, true
		}
		return &v, end, true
	}
}

// Preceded runs prefix and then p, keeping only the value of p.
func Preceded[P, T any](prefix Parser[P], p Parser[T]) Parser[T] {
	return func(s *state, pos int) (T, int, bool) {
		var zero T
		_, mid, ok := prefix(s, pos)
		if !ok {
			return zero, pos, false
		}
		v, end, ok := p(s, mid)
		if !ok {
			return zero, pos, false
		}
		return v, end, true
	}
}

// SeparatedBy matches zero or more p separated by sep. A trailing separator
// is not consumed.
func SeparatedBy[T, S any](p Parser[T], sep Parser[S]) Parser[[]T] {
	return func(s *state, pos int) ([]T, int, bool) {
		var out []T
		v, end, ok := p(s, pos)
		if !ok {
			return out, pos, true
		}
		out = append(out, v)
		for {
			_, mid, ok := sep(s, end)
			if !ok {
				return out, end, true
			}
			v, next, ok := p(s, mid)
			if !ok {
				return out, end, true
			}
			out = append(out, v)
			end = next
		}
	}
}

// Many matches p zero or more times.
func Many[T any](p Parser[T]) Parser[[]T] {
	return func(s *state, pos int) ([]T, int, bool) {
		var out []T
		for {
			v, end, ok := p(s, pos)
			if !ok || end == pos {
				return out, pos, true
			}
			out = append(out, v)
			pos = end
		}
	}
}

// MapWithSpan converts the value of p using the span it consumed.
// Surrounding padding is not part of the span.
func MapWithSpan[T, U any](p Parser[T], f func(T, source.Span) U) Parser[U] {
	return func(s *state, pos int) (U, int, bool) {
		v, end, ok := p(s, pos)
		if !ok {
			var zero U
			return zero, pos, false
		}
		return f(v, s.span(pos, trimSpaceRight(s.src, pos, end))), end, true
	}
}

// TryMap converts the value of p with a conversion that may reject it; a
// rejection is reported with the span of the consumed text.
func TryMap[T, U any](p Parser[T], f func(T) (U, error)) Parser[U] {
	return func(s *state, pos int) (U, int, bool) {
		var zero U
		v, end, ok := p(s, pos)
		if !ok {
			return zero, pos, false
		}
		u, err := f(v)
		if err != nil {
			return zero, pos, s.report(pos, end, err.Error())
		}
		return u, end, true
	}
}

// End succeeds only at the end of input.
func End() Parser[struct{}] {
	return func(s *state, pos int) (struct{}, int, bool) {
		if pos >= len(s.src) {
			return struct{}{}, pos, true
		}
		return struct{}{}, pos, s.fail(pos, "end of input")
	}
}

// takeWhile matches one or more bytes accepted by first and rest.
func takeWhile(label string, first, rest func(byte) bool) Parser[string] {
	return func(s *state, pos int) (string, int, bool) {
		if pos >= len(s.src) || !first(s.src[pos]) {
			return "", pos, s.fail(pos, label)
		}
		end := pos + 1
		for end < len(s.src) && rest(s.src[end]) {
			end++
		}
		return s.src[pos:end], end, true
	}
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c|0x20 >= 'a' && c|0x20 <= 'z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }
