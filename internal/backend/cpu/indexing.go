package cpu

import (
	"fmt"

	"github.com/born-ml/sparse/internal/tensor"
)

// IndexSelect gathers rows of x along dim using an index tensor.
// Similar to torch.index_select(input, dim, index).
//
// The index tensor must be 1-D with dtype int32 or int64. Only dim == 0 is
// supported: the sparse kernels gather whole dense value blocks, which are
// always laid out as rows of the values buffer.
func (cpu *CPUBackend) IndexSelect(x *tensor.RawTensor, dim int, index *tensor.RawTensor) *tensor.RawTensor {
	if dim != 0 {
		panic(fmt.Sprintf("index_select: only dim 0 is supported, got %d", dim))
	}
	if len(index.Shape()) != 1 {
		panic(fmt.Sprintf("index_select: index must be 1-D, got shape %v", index.Shape()))
	}
	if len(x.Shape()) < 1 {
		panic("index_select: input must be at least 1-D")
	}

	rows := x.Shape()[0]
	n := index.Shape()[0]

	outShape := append(tensor.Shape{n}, x.Shape()[1:]...)
	result, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("index_select: failed to create result tensor: %v", err))
	}

	// Row gather is dtype-agnostic: copy whole rows at byte granularity.
	rowBytes := x.ByteSize()
	if rows > 0 {
		rowBytes = x.ByteSize() / rows
	}
	src := x.Data()
	dst := result.Data()

	at := rowAccessor(index)
	cpu.Launch(n, func(i int) {
		row := at(i)
		if row < 0 || row >= rows {
			panic(fmt.Sprintf("index_select: index %d out of bounds [0, %d) at position %d", row, rows, i))
		}
		copy(dst[i*rowBytes:(i+1)*rowBytes], src[row*rowBytes:(row+1)*rowBytes])
	})

	return result
}

// rowAccessor returns a closure reading index i of an int32 or int64 index
// tensor as an int.
func rowAccessor(index *tensor.RawTensor) func(i int) int {
	switch index.DType() {
	case tensor.Int32:
		v := index.AsInt32()
		return func(i int) int { return int(v[i]) }
	case tensor.Int64:
		v := index.AsInt64()
		return func(i int) int { return int(v[i]) }
	default:
		panic(fmt.Sprintf("index_select: index tensor must be int32 or int64, got %s", index.DType()))
	}
}
