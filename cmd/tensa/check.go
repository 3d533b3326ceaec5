package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tensa/internal/diag"
	"tensa/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.tsa|directory>",
	Short: "Report syntax and type errors",
	Long:  `Check parses and type checks a tensa file or every *.tsa file in a directory and prints the diagnostics`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().String("path-mode", "auto", "file paths in output (auto|relative|absolute|basename)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Bool("no-warnings", false, "hide warnings")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}

	printer, err := newDiagPrinter(cmd, format, os.Stdout)
	if err != nil {
		return err
	}
	rc, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := rc.pipelineOptions(cmd, driver.StageCheck)
	if err != nil {
		return err
	}
	if jobs == 0 {
		jobs = rc.config.Build.Jobs
	}
	files, err := collectInputs(args[0])
	if err != nil {
		return err
	}

	fs, results, err := driver.RunFiles(cmd.Context(), files, jobs, opts, nil)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	if noWarnings {
		for _, r := range results {
			r.Bag.Filter(func(d diag.Diagnostic) bool { return d.Severity != diag.SevWarning })
		}
	}
	if len(results) == 1 {
		err = printer.print(os.Stdout, results[0].Bag, fs)
	} else {
		err = printer.printAll(os.Stdout, fs, results)
	}
	if err != nil {
		return err
	}

	if anyFailed(results) {
		return errDiagnostics
	}
	return nil
}
