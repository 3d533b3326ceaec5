package types

import (
	"fmt"
	"strings"

	"github.com/born-ml/born/tensor"
)

// DType is the element type carried by tensors and scalars.
type DType = tensor.DataType

// Element types understood by the language.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Int32   = tensor.Int32
	Int64   = tensor.Int64
	Uint8   = tensor.Uint8
	Bool    = tensor.Bool
)

// DefaultDType is used by fill tensors without an explicit annotation.
const DefaultDType = Float32

// RangeDType is the element type of every range tensor.
const RangeDType = Int64

// короткие имена из исходника -> dtype
var dtypeNames = map[string]DType{
	"f32":     Float32,
	"float32": Float32,
	"f64":     Float64,
	"float64": Float64,
	"i32":     Int32,
	"int32":   Int32,
	"i64":     Int64,
	"int64":   Int64,
	"u8":      Uint8,
	"uint8":   Uint8,
	"bool":    Bool,
}

// ParseDType resolves a dtype annotation such as "f32" or "int64".
func ParseDType(name string) (DType, error) {
	if dt, ok := dtypeNames[strings.ToLower(name)]; ok {
		return dt, nil
	}
	return 0, fmt.Errorf("unknown data type %q", name)
}

// ShortName returns the annotation spelling used by the formatter.
func ShortName(dt DType) string {
	switch dt {
	case Float32:
		return "f32"
	case Float64:
		return "f64"
	case Int32:
		return "i32"
	case Int64:
		return "i64"
	case Uint8:
		return "u8"
	case Bool:
		return "bool"
	default:
		return dt.String()
	}
}

// GoTypeName is the Go type argument that selects dt in the runtime API.
// born spells DataType values exactly like the Go element types.
func GoTypeName(dt DType) string {
	return dt.String()
}
