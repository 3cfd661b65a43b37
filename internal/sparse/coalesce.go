package sparse

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/born-ml/sparse/internal/tensor"
)

// Coalesce returns a coalesced version of t: coordinates lexicographically
// sorted and pairwise distinct, with the values of duplicate coordinates
// accumulated (summed, or OR-ed for bool values). If t is already marked
// coalesced it is returned unchanged.
func Coalesce(t *tensor.Sparse) (*tensor.Sparse, error) {
	if t.IsCoalesced() {
		return t, nil
	}

	sdim := t.SparseDim()
	nnz := t.Nnz()
	if nnz == 0 {
		out, err := tensor.NewSparse(t.Indices(), t.Values(), t.Shape())
		if err != nil {
			return nil, errors.Wrap(err, "coalesce")
		}
		out.SetCoalesced(true)
		return out, nil
	}

	// Flatten each coordinate into a linear position within the tensor's own
	// sparse shape. Sorting these positions sorts the coordinates
	// lexicographically, and equal positions mean equal coordinates.
	coeffs := hashCoeffs[int64](t.Shape()[:sdim])
	idx := t.Indices().AsInt64()
	flat := make([]int64, nnz)
	for i := 0; i < nnz; i++ {
		flat[i] = hashCoord(idx, nnz, i, coeffs)
	}

	perm := make([]int, nnz)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool {
		return flat[perm[i]] < flat[perm[j]]
	})

	newNnz := 1
	for k := 1; k < nnz; k++ {
		if flat[perm[k]] != flat[perm[k-1]] {
			newNnz++
		}
	}

	newIndices, err := tensor.NewRaw(tensor.Shape{sdim, newNnz}, tensor.Int64, t.Device())
	if err != nil {
		return nil, errors.Wrap(err, "coalesce: allocating indices")
	}
	valShape := append(tensor.Shape{newNnz}, t.Values().Shape()[1:]...)
	newValues, err := tensor.NewRaw(valShape, t.DType(), t.Device())
	if err != nil {
		return nil, errors.Wrap(err, "coalesce: allocating values")
	}

	blockSize := tensor.Shape(t.Values().Shape()[1:]).NumElements()
	newIdx := newIndices.AsInt64()

	row := -1
	var prev int64
	for k := 0; k < nnz; k++ {
		src := perm[k]
		if row < 0 || flat[src] != prev {
			row++
			prev = flat[src]
			for d := 0; d < sdim; d++ {
				newIdx[d*newNnz+row] = idx[d*nnz+src]
			}
		}
		accumulateRow(newValues, row, t.Values(), src, blockSize)
	}

	out, err := tensor.NewSparse(newIndices, newValues, t.Shape())
	if err != nil {
		return nil, errors.Wrap(err, "coalesce")
	}
	out.SetCoalesced(true)
	return out, nil
}

// accumulateRow adds row src of srcVals into row dst of dstVals.
// Bool values accumulate by logical OR.
func accumulateRow(dstVals *tensor.RawTensor, dst int, srcVals *tensor.RawTensor, src, blockSize int) {
	switch dstVals.DType() {
	case tensor.Float32:
		addRow(dstVals.AsFloat32(), dst, srcVals.AsFloat32(), src, blockSize)
	case tensor.Float64:
		addRow(dstVals.AsFloat64(), dst, srcVals.AsFloat64(), src, blockSize)
	case tensor.Int32:
		addRow(dstVals.AsInt32(), dst, srcVals.AsInt32(), src, blockSize)
	case tensor.Int64:
		addRow(dstVals.AsInt64(), dst, srcVals.AsInt64(), src, blockSize)
	case tensor.Uint8:
		addRow(dstVals.AsUint8(), dst, srcVals.AsUint8(), src, blockSize)
	case tensor.Bool:
		d := dstVals.AsBool()[dst*blockSize : (dst+1)*blockSize]
		s := srcVals.AsBool()[src*blockSize : (src+1)*blockSize]
		for i := range d {
			d[i] = d[i] || s[i]
		}
	default:
		panic("coalesce: unsupported dtype")
	}
}

func addRow[T interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8
}](dst []T, dstRow int, src []T, srcRow, blockSize int) {
	d := dst[dstRow*blockSize : (dstRow+1)*blockSize]
	s := src[srcRow*blockSize : (srcRow+1)*blockSize]
	for i := range d {
		d[i] += s[i]
	}
}
