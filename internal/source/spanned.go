package source

import "fmt"

// Spanned pairs a value with the span of source text it was produced from.
type Spanned[T any] struct {
	Value T
	Span  Span
}

// At wraps v with span sp.
func At[T any](v T, sp Span) Spanned[T] {
	return Spanned[T]{Value: v, Span: sp}
}

// Map transforms the wrapped value and keeps the original span.
func Map[T, U any](s Spanned[T], f func(T) U) Spanned[U] {
	return Spanned[U]{Value: f(s.Value), Span: s.Span}
}

func (s Spanned[T]) String() string {
	return fmt.Sprintf("%v@%s", s.Value, s.Span)
}
