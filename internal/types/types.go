// Package types models what the checker knows about a value: either a tensor
// with a static shape or a scalar, each with an element dtype.
package types

import (
	"fmt"

	"github.com/born-ml/born/tensor"
)

// Shape is the list of static dimensions of a tensor.
type Shape = tensor.Shape

// Type is implemented by *Tensor and *Scalar.
type Type interface {
	fmt.Stringer
	DataType() DType
	isType()
}

// Tensor is a value with a fixed shape.
type Tensor struct {
	Shape Shape
	DType DType
}

// Scalar is a zero-dimensional value. It is distinct from a rank-0 tensor.
type Scalar struct {
	DType DType
}

// NewTensor copies shape so later mutation of the caller's slice is harmless.
func NewTensor(shape Shape, dt DType) *Tensor {
	return &Tensor{Shape: shape.Clone(), DType: dt}
}

func NewScalar(dt DType) *Scalar { return &Scalar{DType: dt} }

func (t *Tensor) DataType() DType { return t.DType }
func (s *Scalar) DataType() DType { return s.DType }

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int { return len(t.Shape) }

func (t *Tensor) String() string {
	return fmt.Sprintf("tensor%v<%s>", []int(t.Shape), t.DType)
}

func (s *Scalar) String() string {
	return fmt.Sprintf("scalar<%s>", s.DType)
}

func (*Tensor) isType() {}
func (*Scalar) isType() {}

// Equal reports structural equality; nil only equals nil.
func Equal(a, b Type) bool {
	switch a := a.(type) {
	case *Tensor:
		bt, ok := b.(*Tensor)
		return ok && a.DType == bt.DType && a.Shape.Equal(bt.Shape)
	case *Scalar:
		bs, ok := b.(*Scalar)
		return ok && a.DType == bs.DType
	case nil:
		return b == nil
	}
	return false
}
