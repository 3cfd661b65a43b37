// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the public API for the CPU compute backend.
package cpu

import (
	internalcpu "github.com/born-ml/sparse/internal/backend/cpu"
	"github.com/born-ml/sparse/tensor"
)

// Backend represents the CPU backend implementation.
//
// Element-wise dispatch runs over a chunked goroutine pool by default; the
// sequential variant runs everything on the calling goroutine.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a CPU backend with default parallelism (one worker per CPU).
func New() *Backend {
	return internalcpu.New()
}

// NewSequential creates a CPU backend that never spawns goroutines. The
// sparse kernels produce identical results on either variant.
func NewSequential() *Backend {
	return internalcpu.NewSequential()
}
