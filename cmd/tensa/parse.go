package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tensa/internal/diagfmt"
	"tensa/internal/driver"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <file.tsa|directory>",
	Short: "Parse tensa sources and print their syntax trees",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("format", "pretty", "output format (pretty|tree|json)")
	parseCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
}

func runParse(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "tree", "json":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
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

	fs, results, err := driver.RunFiles(cmd.Context(), files, jobs, opts, nil)
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

	switch format {
	case "json":
		output := make(map[string]*diagfmt.ASTNodeOutput, len(results))
		for _, r := range results {
			if r.Result == nil || r.Result.Program == nil {
				output[displayPath(fs, r)] = nil
				continue
			}
			node := diagfmt.BuildASTJSON(r.Result.Program)
			output[displayPath(fs, r)] = &node
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return err
		}
	default:
		for idx, r := range results {
			if !quiet && len(results) > 1 {
				if _, err := fmt.Fprintf(os.Stdout, "== %s ==\n", displayPath(fs, r)); err != nil {
					return err
				}
			}
			if r.Result != nil && r.Result.Program != nil {
				render := diagfmt.FormatASTPretty
				if format == "tree" {
					render = diagfmt.FormatASTTree
				}
				if err := render(os.Stdout, r.Result.Program, fs); err != nil {
					return err
				}
			}
			if !quiet && len(results) > 1 && idx < len(results)-1 {
				if _, err := fmt.Fprintln(os.Stdout); err != nil {
					return err
				}
			}
		}
	}

	if anyFailed(results) {
		return errDiagnostics
	}
	return nil
}
