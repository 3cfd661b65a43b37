// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the dense and sparse tensor
// types of the Born sparse library.
//
// The package defines the core types shared by all operations:
//   - RawTensor: contiguous dense buffer with shape, strides and dtype
//   - Sparse: COO sparse tensor (coordinate buffer + value buffer)
//   - Backend: interface for device-specific compute implementations
//   - Shape, DataType, Device: core type definitions
package tensor

import (
	"github.com/born-ml/sparse/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for tensor data types.
// Supported types: float32, float64, int32, int64, uint8, bool.
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU Device = tensor.CPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// RawTensor is the low-level dense tensor representation.
type RawTensor = tensor.RawTensor

// Sparse is a sparse tensor in COO (coordinate) format.
type Sparse = tensor.Sparse

// Backend is the interface compute backends implement.
type Backend = tensor.Backend

// NewRaw creates a zero-initialized RawTensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// NewSparse creates a sparse COO tensor from an indices buffer, a values
// buffer and a full shape.
func NewSparse(indices, values *RawTensor, shape Shape) (*Sparse, error) {
	return tensor.NewSparse(indices, values, shape)
}

// FromCOO creates a sparse tensor from per-entry coordinates and a flat
// value slice.
func FromCOO[T DType](coords [][]int, values []T, shape Shape, sparseDim int) (*Sparse, error) {
	return tensor.FromCOO(coords, values, shape, sparseDim)
}

// NewSparseResult creates an empty sparse tensor of the declared dtype,
// intended as a result handle for out-parameter style operations.
func NewSparseResult(dtype DataType, device Device) *Sparse {
	return tensor.NewSparseResult(dtype, device)
}

// TypedSlice views a RawTensor's data as []T. T must match the tensor's
// dtype.
func TypedSlice[T DType](r *RawTensor) []T {
	return tensor.TypedSlice[T](r)
}

// BroadcastShapes implements NumPy-style broadcasting rules; it returns the
// broadcast shape, whether broadcasting is needed, and an error when the
// shapes are incompatible.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}

// PromoteTypes returns the dtype resulting from combining operands of the
// two given dtypes in a binary operation.
func PromoteTypes(a, b DataType) DataType {
	return tensor.PromoteTypes(a, b)
}

// CanCast reports whether dtype from can be safely cast to dtype to.
func CanCast(from, to DataType) bool {
	return tensor.CanCast(from, to)
}
