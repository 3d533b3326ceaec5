package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tensa/internal/buildpipeline"
	"tensa/internal/driver"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [path]",
	Short: "Generate Go code for every file of a project",
	Long: `Build generates one Go file per *.tsa input. Without a path the directory
holding tensa.toml is built; outputs go to [build].out_dir`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("out", "", "output directory (default: [build].out_dir)")
	buildCmd.Flags().Int("jobs", 0, "max parallel workers (0=[build].jobs or auto)")
	buildCmd.Flags().String("ui", "auto", "user interface (auto|on|off)")
	buildCmd.Flags().Bool("no-cache", false, "bypass the result cache")
	buildCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
}

func runBuild(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	outFlag, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	rc, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	input := "."
	switch {
	case len(args) == 1:
		input = args[0]
	case rc.manifest != nil:
		input = rc.manifest.Root
	}
	files, err := collectInputs(input)
	if err != nil {
		return err
	}

	opts, err := rc.pipelineOptions(cmd, driver.StageGenerate)
	if err != nil {
		return err
	}
	// длительности фаз печатаются отдельно, не диагностикой
	opts.EnableTimings = false
	if !noCache {
		opts.Cache = openCache(cmd)
	}
	if jobs == 0 {
		jobs = rc.config.Build.Jobs
	}

	outDir := rc.outDir(outFlag)
	req := buildpipeline.BuildRequest{
		Files:   files,
		BaseDir: rc.baseDir(input),
		OutDir:  outDir,
		Jobs:    jobs,
		Options: opts,
	}

	var res buildpipeline.BuildResult
	if shouldUseTUI(uiModeValue) && !quiet {
		res, err = runBuildWithUI(cmd.Context(), "tensa build", files, &req)
	} else {
		res, err = buildpipeline.Build(cmd.Context(), &req)
	}
	if err != nil {
		return err
	}

	printer, err := newDiagPrinter(cmd, "pretty", os.Stderr)
	if err != nil {
		return err
	}
	for _, f := range res.Files {
		if f.Bag.Len() == 0 {
			continue
		}
		if err := printer.print(os.Stderr, f.Bag, res.FileSet); err != nil {
			return err
		}
	}

	if showTimings {
		if err := printStageTimings(cmd.OutOrStdout(), res.Timings); err != nil {
			return err
		}
	}
	if !quiet {
		written := 0
		for _, f := range res.Files {
			if f.OutputPath != "" {
				written++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "built %d of %d file(s) into %s\n", written, len(res.Files), formatPathForOutput(outDir))
	}
	if res.Failed() > 0 {
		return errDiagnostics
	}
	return nil
}

func formatPathForOutput(path string) string {
	cwd, err := os.Getwd()
	if err != nil || path == "" {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
