package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tensa/internal/driver"
	"tensa/internal/format"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] <file.tsa|directory>",
	Short: "Print tensa sources in canonical form",
	Args:  cobra.ExactArgs(1),
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().BoolP("write", "w", false, "rewrite files in place")
	fmtCmd.Flags().Bool("check", false, "list files that are not formatted and exit with status 1")
}

func runFmt(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	write, err := cmd.Flags().GetBool("write")
	if err != nil {
		return fmt.Errorf("failed to get write flag: %w", err)
	}
	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return fmt.Errorf("failed to get check flag: %w", err)
	}
	if write && check {
		return fmt.Errorf("--write and --check cannot be used together")
	}

	rc, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := rc.pipelineOptions(cmd, driver.StageParse)
	if err != nil {
		return err
	}
	files, err := collectInputs(args[0])
	if err != nil {
		return err
	}
	fs, results, err := driver.RunFiles(cmd.Context(), files, rc.config.Build.Jobs, opts, nil)
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}
	printer, err := newDiagPrinter(cmd, "pretty", os.Stderr)
	if err != nil {
		return err
	}
	if err := printer.printAll(os.Stderr, fs, results); err != nil {
		return err
	}

	failed := anyFailed(results)
	for _, r := range results {
		if r.Result == nil || r.Result.Program == nil {
			continue
		}
		prog := r.Result.Program
		if ok, msg := format.CheckRoundTrip(prog); !ok {
			return fmt.Errorf("%s: %s", r.Path, msg)
		}
		// Content хранит нормализованный текст
		changed := format.Changed(r.Result.File.Content, prog)
		switch {
		case check:
			if changed {
				fmt.Fprintln(cmd.OutOrStdout(), displayPath(fs, r))
				failed = true
			}
		case write:
			if changed {
				if err := os.WriteFile(r.Path, []byte(format.Program(prog)), 0o600); err != nil {
					return fmt.Errorf("failed to write %s: %w", r.Path, err)
				}
			}
		default:
			fmt.Fprint(cmd.OutOrStdout(), format.Program(prog))
		}
	}

	if failed {
		return errDiagnostics
	}
	return nil
}
