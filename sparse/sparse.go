// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package sparse

import (
	internalsparse "github.com/born-ml/sparse/internal/sparse"
	"github.com/born-ml/sparse/tensor"
)

// BinaryOp is the pluggable element-wise operation applied to pairs of
// matched value blocks.
type BinaryOp = internalsparse.BinaryOp

// Option configures the intersection pipeline.
type Option = internalsparse.Option

// Built-in binary operations.
var (
	MulOp     BinaryOp = internalsparse.MulOp
	AddOp     BinaryOp = internalsparse.AddOp
	SubOp     BinaryOp = internalsparse.SubOp
	DivOp     BinaryOp = internalsparse.DivOp
	MinimumOp BinaryOp = internalsparse.MinimumOp
	MaximumOp BinaryOp = internalsparse.MaximumOp
)

// DefaultCoalesceThreshold is the default expected-matches-per-entry bound
// used by the operand classifier.
const DefaultCoalesceThreshold = internalsparse.DefaultCoalesceThreshold

// WithCoalesceThreshold overrides the classifier's proactive-coalesce
// threshold. It tunes performance only; results are identical for any value.
func WithCoalesceThreshold(n int64) Option {
	return internalsparse.WithCoalesceThreshold(n)
}

// IntersectBinaryOp computes op element-wise over the intersection of the
// coordinate sets of x and y and populates res in place. The result
// contains an entry exactly where both operands store an entry at the same
// coordinate; it is coalesced iff both operands are coalesced.
//
// Sparse dimension sizes of x and y must match exactly; dense dimensions
// and dtypes broadcast. Pass commutative = false for order-dependent ops
// such as subtraction: both operands are then coalesced up front and the op
// is always applied in (x, y) argument order.
func IntersectBinaryOp(b tensor.Backend, res, x, y *tensor.Sparse, op BinaryOp, commutative bool, opts ...Option) error {
	return internalsparse.IntersectBinaryOp(b, res, x, y, op, commutative, opts...)
}

// Mul computes the element-wise product over the coordinate intersection.
func Mul(b tensor.Backend, res, x, y *tensor.Sparse, opts ...Option) error {
	return internalsparse.IntersectBinaryOp(b, res, x, y, internalsparse.MulOp, true, opts...)
}

// Add computes the element-wise sum over the coordinate intersection.
// Note this is an intersection op: entries present in only one operand do
// not appear in the result.
func Add(b tensor.Backend, res, x, y *tensor.Sparse, opts ...Option) error {
	return internalsparse.IntersectBinaryOp(b, res, x, y, internalsparse.AddOp, true, opts...)
}

// Sub computes the element-wise difference x - y over the coordinate
// intersection. Subtraction is order-dependent, so both operands are
// coalesced before the kernel runs.
func Sub(b tensor.Backend, res, x, y *tensor.Sparse, opts ...Option) error {
	return internalsparse.IntersectBinaryOp(b, res, x, y, internalsparse.SubOp, false, opts...)
}

// Div computes the element-wise quotient x / y over the coordinate
// intersection. Integral operands promote to float32. Division is
// order-dependent, so both operands are coalesced before the kernel runs.
func Div(b tensor.Backend, res, x, y *tensor.Sparse, opts ...Option) error {
	return internalsparse.IntersectBinaryOp(b, res, x, y, internalsparse.DivOp, false, opts...)
}

// Minimum computes the element-wise minimum over the coordinate intersection.
func Minimum(b tensor.Backend, res, x, y *tensor.Sparse, opts ...Option) error {
	return internalsparse.IntersectBinaryOp(b, res, x, y, internalsparse.MinimumOp, true, opts...)
}

// Maximum computes the element-wise maximum over the coordinate intersection.
func Maximum(b tensor.Backend, res, x, y *tensor.Sparse, opts ...Option) error {
	return internalsparse.IntersectBinaryOp(b, res, x, y, internalsparse.MaximumOp, true, opts...)
}

// Coalesce returns a coalesced version of t: coordinates sorted and
// pairwise distinct, with values of duplicate coordinates accumulated.
// Already-coalesced tensors are returned unchanged.
func Coalesce(t *tensor.Sparse) (*tensor.Sparse, error) {
	return internalsparse.Coalesce(t)
}

// FromCOO creates a sparse tensor from per-entry coordinates and a flat
// value slice; see tensor.FromCOO.
func FromCOO[T tensor.DType](coords [][]int, values []T, shape tensor.Shape, sparseDim int) (*tensor.Sparse, error) {
	return tensor.FromCOO(coords, values, shape, sparseDim)
}
