package cpu

import (
	"fmt"

	"github.com/born-ml/sparse/internal/tensor"
)

// number is the constraint for dtypes with arithmetic kernels; bool tensors
// have no element-wise arithmetic.
type number interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8
}

type binOp int

const (
	opAdd binOp = iota
	opSub
	opMul
	opDiv
	opMin
	opMax
)

func (op binOp) String() string {
	switch op {
	case opAdd:
		return "add"
	case opSub:
		return "sub"
	case opMul:
		return "mul"
	case opDiv:
		return "div"
	case opMin:
		return "minimum"
	case opMax:
		return "maximum"
	default:
		return "unknown"
	}
}

// binary is the shared implementation of the element-wise binary operations:
// promote both operands to their common dtype, broadcast shapes, then run
// the dtype-specialized kernel.
func (cpu *CPUBackend) binary(op binOp, a, b *tensor.RawTensor) *tensor.RawTensor {
	common := tensor.PromoteTypes(a.DType(), b.DType())
	a = cpu.Cast(a, common)
	b = cpu.Cast(b, common)

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	result, err := tensor.NewRaw(outShape, common, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}

	broadcast := needsBroadcast || !a.Shape().Equal(b.Shape())
	switch common {
	case tensor.Float32:
		binaryKernel[float32](op, result, a, b, outShape, broadcast, cpu.Launch)
	case tensor.Float64:
		binaryKernel[float64](op, result, a, b, outShape, broadcast, cpu.Launch)
	case tensor.Int32:
		binaryKernel[int32](op, result, a, b, outShape, broadcast, cpu.Launch)
	case tensor.Int64:
		binaryKernel[int64](op, result, a, b, outShape, broadcast, cpu.Launch)
	case tensor.Uint8:
		binaryKernel[uint8](op, result, a, b, outShape, broadcast, cpu.Launch)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, common))
	}

	return result
}

func binaryKernel[T number](op binOp, result, a, b *tensor.RawTensor, outShape tensor.Shape, broadcast bool, launch func(int, func(int))) {
	f := opFunc[T](op)
	dst := tensor.TypedSlice[T](result)
	av := tensor.TypedSlice[T](a)
	bv := tensor.TypedSlice[T](b)

	if !broadcast {
		launch(len(dst), func(i int) {
			dst[i] = f(av[i], bv[i])
		})
		return
	}

	outStrides := outShape.ComputeStrides()
	aStrides := computeBroadcastStridesForShape(a.Shape(), outShape)
	bStrides := computeBroadcastStridesForShape(b.Shape(), outShape)
	launch(len(dst), func(i int) {
		aIdx := computeFlatIndex(i, outStrides, aStrides)
		bIdx := computeFlatIndex(i, outStrides, bStrides)
		dst[i] = f(av[aIdx], bv[bIdx])
	})
}

func opFunc[T number](op binOp) func(T, T) T {
	switch op {
	case opAdd:
		return func(x, y T) T { return x + y }
	case opSub:
		return func(x, y T) T { return x - y }
	case opMul:
		return func(x, y T) T { return x * y }
	case opDiv:
		return func(x, y T) T { return x / y }
	case opMin:
		return func(x, y T) T {
			if y < x {
				return y
			}
			return x
		}
	case opMax:
		return func(x, y T) T {
			if y > x {
				return y
			}
			return x
		}
	default:
		panic(fmt.Sprintf("unknown binary op %d", op))
	}
}

// computeBroadcastStridesForShape computes strides for broadcasting a shape to outShape.
// Returns strides where dimensions of size 1 have stride 0 (for broadcasting).
func computeBroadcastStridesForShape(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)

	// Pad input shape with 1s on the left
	inDim := len(inShape)
	offset := outDim - inDim

	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0 || inIdx >= inDim:
			// Padded dimension, stride is 0
			strides[i] = 0
		case inShape[inIdx] == 1:
			// Broadcast dimension, stride is 0
			strides[i] = 0
		default:
			strides[i] = origStrides[inIdx]
		}
	}

	return strides
}

// computeFlatIndex computes the flat index in the source array for a given output index.
// outStrides: strides of the output shape.
// inStrides: broadcast-adjusted strides of the input shape.
func computeFlatIndex(outIdx int, outStrides, inStrides []int) int {
	ndim := len(outStrides)
	flatIdx := 0

	for i := 0; i < ndim; i++ {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		flatIdx += coord * inStrides[i]
	}

	return flatIdx
}
