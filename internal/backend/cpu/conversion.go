package cpu

import (
	"fmt"

	"github.com/born-ml/sparse/internal/tensor"
)

// Cast converts the tensor to a different data type.
func (cpu *CPUBackend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	// No-op if same dtype
	if x.DType() == dtype {
		return x
	}

	result, err := tensor.NewRaw(x.Shape(), dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("cast: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		castFrom(result, x.AsFloat32())
	case tensor.Float64:
		castFrom(result, x.AsFloat64())
	case tensor.Int32:
		castFrom(result, x.AsInt32())
	case tensor.Int64:
		castFrom(result, x.AsInt64())
	case tensor.Uint8:
		castFrom(result, x.AsUint8())
	case tensor.Bool:
		castFromBool(result, x.AsBool())
	default:
		panic(fmt.Sprintf("cast: unsupported source dtype %s", x.DType()))
	}

	return result
}

func castFrom[S number](result *tensor.RawTensor, src []S) {
	switch result.DType() {
	case tensor.Float32:
		convertSlice(result.AsFloat32(), src)
	case tensor.Float64:
		convertSlice(result.AsFloat64(), src)
	case tensor.Int32:
		convertSlice(result.AsInt32(), src)
	case tensor.Int64:
		convertSlice(result.AsInt64(), src)
	case tensor.Uint8:
		convertSlice(result.AsUint8(), src)
	default:
		panic(fmt.Sprintf("cast: unsupported target dtype %s", result.DType()))
	}
}

func convertSlice[D, S number](dst []D, src []S) {
	for i, v := range src {
		dst[i] = D(v)
	}
}

// castFromBool maps false -> 0 and true -> 1.
func castFromBool(result *tensor.RawTensor, src []bool) {
	switch result.DType() {
	case tensor.Float32:
		boolSlice(result.AsFloat32(), src)
	case tensor.Float64:
		boolSlice(result.AsFloat64(), src)
	case tensor.Int32:
		boolSlice(result.AsInt32(), src)
	case tensor.Int64:
		boolSlice(result.AsInt64(), src)
	case tensor.Uint8:
		boolSlice(result.AsUint8(), src)
	default:
		panic(fmt.Sprintf("cast: unsupported target dtype %s", result.DType()))
	}
}

func boolSlice[D number](dst []D, src []bool) {
	for i, v := range src {
		if v {
			dst[i] = 1
		}
	}
}
