// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package sparse provides element-wise binary operations between sparse COO
// tensors, restricted to the intersection of their coordinate sets.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/sparse/backend/cpu"
//	    "github.com/born-ml/sparse/sparse"
//	    "github.com/born-ml/sparse/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x, _ := sparse.FromCOO([][]int{{0, 0}, {1, 2}}, []float32{2, 3}, tensor.Shape{3, 3}, 2)
//	    y, _ := sparse.FromCOO([][]int{{1, 2}, {2, 0}}, []float32{5, 7}, tensor.Shape{3, 3}, 2)
//
//	    res := tensor.NewSparseResult(tensor.Float32, tensor.CPU)
//	    if err := sparse.Mul(backend, res, x, y); err != nil {
//	        panic(err)
//	    }
//	    // res holds one entry: coordinate (1, 2) with value 15.
//	}
//
// # Semantics
//
// All operations in this package are intersection ops: the result stores an
// entry only where both operands store an entry at the same coordinate.
// This matches the sparse-sparse multiplication semantics of the major
// tensor frameworks and is the useful primitive for masked operations. It
// is not a union op: sparse.Add over disjoint operands yields an empty
// result.
//
// Operands need not be coalesced. When an operand carries duplicate
// coordinates, each duplicate participates in the intersection separately
// (cross-product behavior), and the result is itself uncoalesced. The
// result is coalesced exactly when both operands are.
//
// # Backends
//
// Operations take a tensor.Backend. The CPU backend runs element-wise
// stages over a goroutine pool; cpu.NewSequential provides a
// single-goroutine variant with identical results.
package sparse
