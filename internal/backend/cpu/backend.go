// Package cpu implements the CPU compute backend for the Born sparse
// library.
package cpu

import (
	"github.com/born-ml/sparse/internal/parallel"
	"github.com/born-ml/sparse/internal/tensor"
)

// CPUBackend implements tensor operations on CPU. Element-wise dispatch runs
// over a chunked goroutine pool; NewSequential returns a backend whose
// Launch runs everything on the calling goroutine, which is useful for
// deterministic debugging and as the reference execution mode in tests.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

// New creates a CPU backend with default parallelism (one worker per CPU).
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    parallel.DefaultConfig(),
	}
}

// NewSequential creates a CPU backend that never spawns goroutines.
func NewSequential() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    parallel.Sequential(),
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	if !cpu.par.Enabled {
		return "CPU(sequential)"
	}
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Launch executes f(i) for i in [0, n) using the backend's parallel config.
func (cpu *CPUBackend) Launch(n int, f func(i int)) {
	parallel.For(n, f, cpu.par)
}

// Add performs element-wise addition with broadcasting and dtype promotion.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(opAdd, a, b)
}

// Sub performs element-wise subtraction with broadcasting and dtype promotion.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(opSub, a, b)
}

// Mul performs element-wise multiplication with broadcasting and dtype promotion.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(opMul, a, b)
}

// Div performs element-wise division with broadcasting and dtype promotion.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(opDiv, a, b)
}

// Minimum computes the element-wise minimum with broadcasting and dtype promotion.
func (cpu *CPUBackend) Minimum(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(opMin, a, b)
}

// Maximum computes the element-wise maximum with broadcasting and dtype promotion.
func (cpu *CPUBackend) Maximum(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary(opMax, a, b)
}
