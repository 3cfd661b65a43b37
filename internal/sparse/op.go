package sparse

import (
	"github.com/born-ml/sparse/internal/tensor"
)

// BinaryOp is the pluggable element-wise operation applied to pairs of
// matched value blocks. Apply receives two dense buffers of equal dtype
// (already promoted to ResultType) whose dense dims may still broadcast.
type BinaryOp interface {
	Name() string
	Apply(b tensor.Backend, lhs, rhs *tensor.RawTensor) *tensor.RawTensor
	ResultType(lhs, rhs tensor.DataType) tensor.DataType
}

// Built-in operations over the backend's dense kernels.
var (
	MulOp     BinaryOp = mulOp{}
	AddOp     BinaryOp = addOp{}
	SubOp     BinaryOp = subOp{}
	DivOp     BinaryOp = divOp{}
	MinimumOp BinaryOp = minimumOp{}
	MaximumOp BinaryOp = maximumOp{}
)

type mulOp struct{}

func (mulOp) Name() string { return "mul" }
func (mulOp) Apply(b tensor.Backend, lhs, rhs *tensor.RawTensor) *tensor.RawTensor {
	return b.Mul(lhs, rhs)
}
func (mulOp) ResultType(lhs, rhs tensor.DataType) tensor.DataType {
	return tensor.PromoteTypes(lhs, rhs)
}

type addOp struct{}

func (addOp) Name() string { return "add" }
func (addOp) Apply(b tensor.Backend, lhs, rhs *tensor.RawTensor) *tensor.RawTensor {
	return b.Add(lhs, rhs)
}
func (addOp) ResultType(lhs, rhs tensor.DataType) tensor.DataType {
	return tensor.PromoteTypes(lhs, rhs)
}

type subOp struct{}

func (subOp) Name() string { return "sub" }
func (subOp) Apply(b tensor.Backend, lhs, rhs *tensor.RawTensor) *tensor.RawTensor {
	return b.Sub(lhs, rhs)
}
func (subOp) ResultType(lhs, rhs tensor.DataType) tensor.DataType {
	return tensor.PromoteTypes(lhs, rhs)
}

type divOp struct{}

func (divOp) Name() string { return "div" }
func (divOp) Apply(b tensor.Backend, lhs, rhs *tensor.RawTensor) *tensor.RawTensor {
	return b.Div(lhs, rhs)
}

// ResultType promotes integral operands to float32: true division of
// integers does not round-trip through an integer dtype.
func (divOp) ResultType(lhs, rhs tensor.DataType) tensor.DataType {
	common := tensor.PromoteTypes(lhs, rhs)
	if !common.IsFloat() {
		return tensor.Float32
	}
	return common
}

type minimumOp struct{}

func (minimumOp) Name() string { return "minimum" }
func (minimumOp) Apply(b tensor.Backend, lhs, rhs *tensor.RawTensor) *tensor.RawTensor {
	return b.Minimum(lhs, rhs)
}
func (minimumOp) ResultType(lhs, rhs tensor.DataType) tensor.DataType {
	return tensor.PromoteTypes(lhs, rhs)
}

type maximumOp struct{}

func (maximumOp) Name() string { return "maximum" }
func (maximumOp) Apply(b tensor.Backend, lhs, rhs *tensor.RawTensor) *tensor.RawTensor {
	return b.Maximum(lhs, rhs)
}
func (maximumOp) ResultType(lhs, rhs tensor.DataType) tensor.DataType {
	return tensor.PromoteTypes(lhs, rhs)
}
