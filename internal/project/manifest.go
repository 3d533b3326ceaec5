// Package project loads tensa.toml, the per-project configuration of the
// code generation target and of the check and build commands.
package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"tensa/internal/codegen"
)

// Manifest is a loaded tensa.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the sections of tensa.toml. Absent keys keep the defaults.
type Config struct {
	Target TargetConfig `toml:"target"`
	Check  CheckConfig  `toml:"check"`
	Build  BuildConfig  `toml:"build"`
}

// TargetConfig overrides fields of codegen.DefaultTarget.
type TargetConfig struct {
	Package        string            `toml:"package"`
	Alias          string            `toml:"alias"`
	BackendPackage string            `toml:"backend_package"`
	Device         string            `toml:"device"`
	DeviceVar      string            `toml:"device_var"`
	Zeros          string            `toml:"zeros"`
	Ones           string            `toml:"ones"`
	Full           string            `toml:"full"`
	Arange         string            `toml:"arange"`
	ArangeStep     string            `toml:"arange_step"`
	Operators      string            `toml:"operators"`
	Methods        map[string]string `toml:"methods"`
}

// CheckConfig configures diagnostics.
type CheckConfig struct {
	MaxDiagnostics   int  `toml:"max_diagnostics"`
	WarningsAsErrors bool `toml:"warnings_as_errors"`
}

// BuildConfig configures tensa build.
type BuildConfig struct {
	// OutDir is relative to the manifest directory.
	OutDir string `toml:"out_dir"`
	// Jobs bounds parallel files; 0 means GOMAXPROCS.
	Jobs int `toml:"jobs"`
}

// DefaultConfig is used when no manifest exists.
func DefaultConfig() Config {
	return Config{
		Check: CheckConfig{MaxDiagnostics: 100},
		Build: BuildConfig{OutDir: "gen"},
	}
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Check.MaxDiagnostics < 0 {
		return nil, fmt.Errorf("%s: [check].max_diagnostics must not be negative", path)
	}
	if cfg.Build.Jobs < 0 {
		return nil, fmt.Errorf("%s: [build].jobs must not be negative", path)
	}
	if _, err := cfg.CodegenTarget(); err != nil {
		return nil, fmt.Errorf("%s: [target]: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	return &Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}, nil
}

// Discover loads the nearest tensa.toml above startDir. ok is false when
// there is none.
func Discover(startDir string) (m *Manifest, ok bool, err error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err = Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// CodegenTarget applies the [target] overrides to codegen.DefaultTarget and
// validates the result.
func (c Config) CodegenTarget() (codegen.Target, error) {
	t := codegen.DefaultTarget()
	tc := c.Target
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&t.Package, tc.Package)
	override(&t.Alias, tc.Alias)
	override(&t.BackendPackage, tc.BackendPackage)
	override(&t.Device, tc.Device)
	override(&t.DeviceVar, tc.DeviceVar)
	override(&t.Zeros, tc.Zeros)
	override(&t.Ones, tc.Ones)
	override(&t.Full, tc.Full)
	override(&t.Arange, tc.Arange)
	override(&t.ArangeStep, tc.ArangeStep)
	override(&t.Operators, tc.Operators)
	for tok, name := range tc.Methods {
		t.Methods[tok] = name
	}
	if err := t.Validate(); err != nil {
		return codegen.Target{}, err
	}
	return t, nil
}

// OutDir resolves [build].out_dir against the manifest directory.
func (m *Manifest) OutDir() string {
	if filepath.IsAbs(m.Config.Build.OutDir) {
		return m.Config.Build.OutDir
	}
	return filepath.Join(m.Root, m.Config.Build.OutDir)
}
