package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tensa/internal/codegen"
	"tensa/internal/driver"
	"tensa/internal/project"
)

// runConfig is the merged view of tensa.toml and command-line flags.
type runConfig struct {
	manifest *project.Manifest // nil without tensa.toml
	config   project.Config
	target   codegen.Target
}

// loadConfig reads --config or discovers tensa.toml upward from the working
// directory. Without a manifest the defaults apply.
func loadConfig(cmd *cobra.Command) (*runConfig, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	var manifest *project.Manifest
	if path != "" {
		manifest, err = project.Load(path)
		if err != nil {
			return nil, err
		}
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		m, ok, err := project.Discover(cwd)
		if err != nil {
			return nil, err
		}
		if ok {
			manifest = m
		}
	}

	cfg := project.DefaultConfig()
	if manifest != nil {
		cfg = manifest.Config
	}
	target, err := cfg.CodegenTarget()
	if err != nil {
		return nil, fmt.Errorf("invalid target configuration: %w", err)
	}
	return &runConfig{manifest: manifest, config: cfg, target: target}, nil
}

// pipelineOptions builds driver options for stage. Flags that were set
// explicitly override the manifest.
func (rc *runConfig) pipelineOptions(cmd *cobra.Command, stage driver.Stage) (driver.Options, error) {
	flags := cmd.Root().PersistentFlags()

	maxDiagnostics := rc.config.Check.MaxDiagnostics
	if flags.Changed("max-diagnostics") || rc.manifest == nil {
		v, err := flags.GetInt("max-diagnostics")
		if err != nil {
			return driver.Options{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
		maxDiagnostics = v
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return driver.Options{}, fmt.Errorf("failed to get timings flag: %w", err)
	}

	warningsAsErrors := rc.config.Check.WarningsAsErrors
	if f := cmd.Flags().Lookup("warnings-as-errors"); f != nil && f.Changed {
		v, err := cmd.Flags().GetBool("warnings-as-errors")
		if err != nil {
			return driver.Options{}, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
		}
		warningsAsErrors = v
	}

	return driver.Options{
		Stage:            stage,
		MaxDiagnostics:   maxDiagnostics,
		Target:           rc.target,
		WarningsAsErrors: warningsAsErrors,
		EnableTimings:    timings,
	}, nil
}

// outDir resolves the build output directory: the flag, then [build].out_dir
// relative to the manifest, then the default relative to the working
// directory.
func (rc *runConfig) outDir(flag string) string {
	if flag != "" {
		return flag
	}
	if rc.manifest != nil {
		return rc.manifest.OutDir()
	}
	return rc.config.Build.OutDir
}

// baseDir is the directory whose layout is mirrored in the output.
func (rc *runConfig) baseDir(input string) string {
	if st, err := os.Stat(input); err == nil && st.IsDir() {
		return input
	}
	if rc.manifest != nil {
		return rc.manifest.Root
	}
	return ""
}
