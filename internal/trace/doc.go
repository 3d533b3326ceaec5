// Package trace records what the tensa pipeline is doing: one span per
// RunFiles call, per file and per pass, plus node-level points from the
// checker.
//
// Enable it from the command line:
//
//	tensa check --trace=- --trace-level=phase model.tsa
//	tensa build --trace=build.ndjson --trace-mode=both ./models
//
// Tracers: Nop (disabled), StreamTracer (text or NDJSON as events arrive),
// RingTracer (last N events, dumped when a command panics) and MultiTracer.
//
// Levels select scopes: phase keeps driver and pass events, detail adds
// file spans, debug adds checker points.
//
// The tracer travels in the context; parents are plain span IDs:
//
//	t := trace.FromContext(ctx)
//	span := trace.Begin(t, trace.ScopePass, "parse", trace.SpanFrom(ctx))
//	defer span.End("")
package trace
