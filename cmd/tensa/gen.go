package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tensa/internal/driver"
)

var genCmd = &cobra.Command{
	Use:   "gen [flags] <file.tsa>",
	Short: "Generate Go code for one file",
	Long: `Gen checks a tensa file and prints the equivalent Go program. Type errors
are reported but do not stop generation`,
	Args: cobra.ExactArgs(1),
	RunE: runGen,
}

func init() {
	genCmd.Flags().StringP("out", "o", "", "write the generated code to this file instead of stdout")
	genCmd.Flags().Bool("no-cache", false, "bypass the result cache")
}

func runGen(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}

	rc, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := rc.pipelineOptions(cmd, driver.StageGenerate)
	if err != nil {
		return err
	}
	if !noCache {
		opts.Cache = openCache(cmd)
	}

	res, err := driver.RunFile(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}

	printer, err := newDiagPrinter(cmd, "pretty", os.Stderr)
	if err != nil {
		return err
	}
	if err := printer.print(os.Stderr, res.Bag, res.FileSet); err != nil {
		return err
	}

	if res.Output != nil {
		if outPath == "" {
			if _, err := os.Stdout.Write(res.Output); err != nil {
				return err
			}
		} else if err := os.WriteFile(outPath, res.Output, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
	}

	if res.Failed() {
		return errDiagnostics
	}
	return nil
}
