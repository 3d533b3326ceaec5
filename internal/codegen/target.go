package codegen

import (
	"go/parser"
	"go/token"
	"path"

	"github.com/pkg/errors"
	"golang.org/x/mod/module"
)

// Operator styles for Binary expressions.
const (
	// OperatorsInfix emits lhs op rhs.
	OperatorsInfix = "infix"
	// OperatorsMethods emits lhs.Method(rhs) using the target's method names.
	OperatorsMethods = "methods"
)

// Target describes the tensor runtime the generated code calls into.
type Target struct {
	// Package is the import path of the tensor construction API.
	Package string
	// Alias is the package name used to qualify calls; empty means path.Base(Package).
	Alias string
	// BackendPackage provides the device constructor used by Device.
	BackendPackage string
	// Device is a Go expression constructing the device, e.g. "cpu.New()".
	Device string
	// DeviceVar names the local holding the device.
	DeviceVar string

	Zeros      string
	Ones       string
	Full       string
	Arange     string
	ArangeStep string

	Operators string
	// Methods maps operator tokens to method names for OperatorsMethods.
	Methods map[string]string
}

// DefaultTarget targets born's tensor package on the CPU backend.
func DefaultTarget() Target {
	return Target{
		Package:        "github.com/born-ml/born/tensor",
		BackendPackage: "github.com/born-ml/born/backend/cpu",
		Device:         "cpu.New()",
		DeviceVar:      "backend",
		Zeros:          "Zeros",
		Ones:           "Ones",
		Full:           "Full",
		Arange:         "Arange",
		ArangeStep:     "ArangeStep",
		Operators:      OperatorsInfix,
		Methods: map[string]string{
			"+": "Add",
			"-": "Sub",
			"*": "MatMul",
		},
	}
}

// PackageAlias returns the identifier generated calls are qualified with.
func (t Target) PackageAlias() string {
	if t.Alias != "" {
		return t.Alias
	}
	return path.Base(t.Package)
}

// BackendAlias returns the package name of BackendPackage.
func (t Target) BackendAlias() string {
	return path.Base(t.BackendPackage)
}

// Validate reports the first problem with the profile.
func (t Target) Validate() error {
	if err := module.CheckImportPath(t.Package); err != nil {
		return errors.Wrap(err, "target package")
	}
	if t.BackendPackage != "" {
		if err := module.CheckImportPath(t.BackendPackage); err != nil {
			return errors.Wrap(err, "backend package")
		}
	}
	idents := []struct{ what, name string }{
		{"alias", t.PackageAlias()},
		{"device variable", t.DeviceVar},
		{"zeros constructor", t.Zeros},
		{"ones constructor", t.Ones},
		{"full constructor", t.Full},
		{"arange constructor", t.Arange},
		{"stepped arange constructor", t.ArangeStep},
	}
	for _, id := range idents {
		if !token.IsIdentifier(id.name) {
			return errors.Errorf("%s %q is not a Go identifier", id.what, id.name)
		}
	}
	if _, err := parser.ParseExpr(t.Device); err != nil {
		return errors.Wrapf(err, "device expression %q", t.Device)
	}
	switch t.Operators {
	case OperatorsInfix:
	case OperatorsMethods:
		for _, tok := range []string{"+", "-", "*"} {
			if !token.IsIdentifier(t.Methods[tok]) {
				return errors.Errorf("no method name for operator %s", tok)
			}
		}
	default:
		return errors.Errorf("unknown operator style %q (expected %s or %s)", t.Operators, OperatorsInfix, OperatorsMethods)
	}
	return nil
}

// reserved lists names user variables may not take because the generated
// wrapper or calls already use them.
func (t Target) reserved() map[string]struct{} {
	names := []string{
		"_", "main",
		t.PackageAlias(), t.DeviceVar,
		"float32", "float64", "int32", "int64", "uint8", "bool",
	}
	if t.BackendPackage != "" {
		names = append(names, t.BackendAlias())
	}
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}
