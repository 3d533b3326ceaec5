package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tensa/internal/trace"
)

// crashRing keeps the most recent events for dumpTraceOnPanic.
var crashRing *trace.RingTracer

type traceFlags struct {
	output    string
	level     trace.Level
	mode      trace.Mode
	ringSize  int
	heartbeat time.Duration
}

func readTraceFlags(cmd *cobra.Command) (traceFlags, error) {
	flags := cmd.Root().PersistentFlags()
	var tf traceFlags
	var err error
	if tf.output, err = flags.GetString("trace"); err != nil {
		return tf, err
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return tf, err
	}
	if tf.level, err = trace.ParseLevel(levelStr); err != nil {
		return tf, fmt.Errorf("invalid trace level: %w", err)
	}
	// --trace без уровня включает фазы
	if tf.level == trace.LevelOff && tf.output != "" {
		tf.level = trace.LevelPhase
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return tf, err
	}
	if tf.mode, err = trace.ParseMode(modeStr); err != nil {
		return tf, fmt.Errorf("invalid trace mode: %w", err)
	}
	if tf.ringSize, err = flags.GetInt("trace-ring-size"); err != nil {
		return tf, err
	}
	tf.heartbeat, err = flags.GetDuration("trace-heartbeat")
	return tf, err
}

// setupTracing attaches the tracer selected by the --trace* flags to the
// command context. The returned cleanup flushes and closes it.
func setupTracing(cmd *cobra.Command) (func(), error) {
	tf, err := readTraceFlags(cmd)
	if err != nil {
		return nil, err
	}
	if tf.level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	tracer, err := trace.New(trace.Config{
		Level:      tf.level,
		Mode:       tf.mode,
		OutputPath: tf.output,
		RingSize:   tf.ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	crashRing = findRing(tracer)

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	heartbeat := trace.StartHeartbeat(tracer, tf.heartbeat)
	return func() {
		heartbeat.Stop()
		for _, err := range []error{tracer.Flush(), tracer.Close()} {
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: %v\n", err)
			}
		}
	}, nil
}

func findRing(t trace.Tracer) *trace.RingTracer {
	switch t := t.(type) {
	case *trace.RingTracer:
		return t
	case *trace.MultiTracer:
		for _, inner := range t.Tracers() {
			if ring := findRing(inner); ring != nil {
				return ring
			}
		}
	}
	return nil
}

// dumpTraceOnPanic writes the ring buffer to stderr and re-panics. Use it
// with defer at the top of a command.
func dumpTraceOnPanic() {
	r := recover()
	if r == nil {
		return
	}
	if crashRing != nil {
		fmt.Fprintf(os.Stderr, "panic: %v\n--- last trace events ---\n", r)
		_ = crashRing.Dump(os.Stderr, trace.FormatText)
	}
	panic(r)
}
