package tensor

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sparse is a sparse tensor in COO (coordinate) format.
//
// The first sparseDim dimensions of the shape are sparse: every explicitly
// stored entry carries a coordinate into them. The remaining denseDim
// dimensions are dense: each entry's value is a dense block of that shape.
//
//   - indices: Int64 buffer of shape [sparseDim, nnz]; column i is the
//     coordinate of entry i.
//   - values: buffer of shape [nnz, denseShape...]; row i is the value
//     block of entry i.
//
// The coalesced flag means the coordinates are lexicographically sorted and
// pairwise distinct. A freshly constructed tensor is not assumed coalesced.
type Sparse struct {
	indices   *RawTensor
	values    *RawTensor
	shape     Shape
	sparseDim int
	denseDim  int
	nnz       int
	coalesced bool
}

// NewSparse creates a sparse COO tensor from an indices buffer, a values
// buffer and a full shape. It validates the buffer shapes against each other
// and checks that every coordinate is within the sparse bounds of shape;
// out-of-bounds coordinates would break the perfect-hash property the
// intersection kernels rely on.
func NewSparse(indices, values *RawTensor, shape Shape) (*Sparse, error) {
	if indices == nil || values == nil {
		return nil, errors.New("sparse: indices and values must be non-nil")
	}
	if indices.DType() != Int64 {
		return nil, errors.Errorf("sparse: indices dtype must be int64, got %s", indices.DType())
	}
	if len(indices.Shape()) != 2 {
		return nil, errors.Errorf("sparse: indices must be 2-D [sparseDim, nnz], got shape %v", indices.Shape())
	}

	sparseDim := indices.Shape()[0]
	nnz := indices.Shape()[1]
	if sparseDim < 1 {
		return nil, errors.Errorf("sparse: sparseDim must be >= 1, got %d", sparseDim)
	}
	if len(values.Shape()) < 1 {
		return nil, errors.Errorf("sparse: values must be at least 1-D [nnz, ...], got shape %v", values.Shape())
	}
	if values.Shape()[0] != nnz {
		return nil, errors.Errorf("sparse: values carry %d entries but indices carry %d", values.Shape()[0], nnz)
	}

	denseDim := len(values.Shape()) - 1
	if len(shape) != sparseDim+denseDim {
		return nil, errors.Errorf("sparse: shape %v has rank %d, want sparseDim %d + denseDim %d",
			shape, len(shape), sparseDim, denseDim)
	}
	for d := 0; d < denseDim; d++ {
		if values.Shape()[1+d] != shape[sparseDim+d] {
			return nil, errors.Errorf("sparse: values dense shape %v does not match shape suffix %v",
				values.Shape()[1:], shape[sparseDim:])
		}
	}

	idx := indices.AsInt64()
	for d := 0; d < sparseDim; d++ {
		bound := int64(shape[d])
		for i := 0; i < nnz; i++ {
			if c := idx[d*nnz+i]; c < 0 || c >= bound {
				return nil, errors.Errorf("sparse: coordinate %d of entry %d out of bounds [0, %d) in dimension %d",
					c, i, bound, d)
			}
		}
	}

	return &Sparse{
		indices:   indices,
		values:    values,
		shape:     shape.Clone(),
		sparseDim: sparseDim,
		denseDim:  denseDim,
		nnz:       nnz,
	}, nil
}

// FromCOO creates a sparse tensor from per-entry coordinates and a flat
// value slice. coords[i] is the coordinate of entry i over the first
// sparseDim dimensions of shape; values holds nnz dense blocks of shape
// shape[sparseDim:], concatenated in entry order.
func FromCOO[T DType](coords [][]int, values []T, shape Shape, sparseDim int) (*Sparse, error) {
	nnz := len(coords)
	if sparseDim < 1 || sparseDim > len(shape) {
		return nil, errors.Errorf("sparse: sparseDim %d out of range for shape %v", sparseDim, shape)
	}

	denseShape := Shape(shape[sparseDim:]).Clone()
	blockSize := denseShape.NumElements()
	if len(values) != nnz*blockSize {
		return nil, errors.Errorf("sparse: %d entries with dense block size %d require %d values, got %d",
			nnz, blockSize, nnz*blockSize, len(values))
	}

	indices, err := NewRaw(Shape{sparseDim, nnz}, Int64, CPU)
	if err != nil {
		return nil, errors.Wrap(err, "sparse: allocating indices")
	}
	idx := indices.AsInt64()
	for i, c := range coords {
		if len(c) != sparseDim {
			return nil, errors.Errorf("sparse: coordinate %d has %d components, want %d", i, len(c), sparseDim)
		}
		for d := 0; d < sparseDim; d++ {
			idx[d*nnz+i] = int64(c[d])
		}
	}

	var dummy T
	valShape := append(Shape{nnz}, denseShape...)
	raw, err := NewRaw(valShape, inferDataType(dummy), CPU)
	if err != nil {
		return nil, errors.Wrap(err, "sparse: allocating values")
	}
	copy(typedSlice[T](raw), values)

	return NewSparse(indices, raw, shape)
}

// NewSparseResult creates an empty sparse tensor intended as a result handle
// for out-parameter style operations. Only the declared dtype and device are
// meaningful until the tensor is populated.
func NewSparseResult(dtype DataType, device Device) *Sparse {
	indices, err := NewRaw(Shape{1, 0}, Int64, device)
	if err != nil {
		panic(fmt.Sprintf("sparse result: %v", err))
	}
	values, err := NewRaw(Shape{0}, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("sparse result: %v", err))
	}
	return &Sparse{
		indices:   indices,
		values:    values,
		shape:     Shape{0},
		sparseDim: 1,
		denseDim:  0,
		nnz:       0,
	}
}

// Indices returns the Int64 coordinate buffer of shape [sparseDim, nnz].
func (s *Sparse) Indices() *RawTensor { return s.indices }

// Values returns the value buffer of shape [nnz, denseShape...].
func (s *Sparse) Values() *RawTensor { return s.values }

// Shape returns the tensor's full shape.
func (s *Sparse) Shape() Shape { return s.shape }

// SparseDim returns the number of sparse dimensions.
func (s *Sparse) SparseDim() int { return s.sparseDim }

// DenseDim returns the number of dense dimensions.
func (s *Sparse) DenseDim() int { return s.denseDim }

// Dim returns the total rank.
func (s *Sparse) Dim() int { return s.sparseDim + s.denseDim }

// Nnz returns the number of explicitly stored entries.
func (s *Sparse) Nnz() int { return s.nnz }

// DType returns the dtype of the values buffer.
func (s *Sparse) DType() DataType { return s.values.DType() }

// Device returns the tensor's compute device.
func (s *Sparse) Device() Device { return s.values.Device() }

// IsCoalesced reports whether the coordinates are known to be sorted and
// pairwise distinct.
func (s *Sparse) IsCoalesced() bool { return s.coalesced }

// SetCoalesced marks the tensor's coalesced state. The caller asserts the
// flag is truthful; nothing is verified.
func (s *Sparse) SetCoalesced(coalesced bool) { s.coalesced = coalesced }

// Coord returns the coordinate of entry i as an int slice.
func (s *Sparse) Coord(i int) []int {
	if i < 0 || i >= s.nnz {
		panic(fmt.Sprintf("sparse: entry %d out of range [0, %d)", i, s.nnz))
	}
	idx := s.indices.AsInt64()
	c := make([]int, s.sparseDim)
	for d := 0; d < s.sparseDim; d++ {
		c[d] = int(idx[d*s.nnz+i])
	}
	return c
}

// RawResize sets the tensor's dimensionality and shape without touching the
// buffers. Part of the structural-mutation interface used by kernels that
// populate result handles in place.
func (s *Sparse) RawResize(sparseDim, denseDim int, shape Shape) {
	s.sparseDim = sparseDim
	s.denseDim = denseDim
	s.shape = shape.Clone()
}

// SetIndicesAndValues installs new buffers without validation. The caller
// guarantees consistency with the shape set via RawResize.
func (s *Sparse) SetIndicesAndValues(indices, values *RawTensor) {
	s.indices = indices
	s.values = values
}

// SetNnzAndNarrow sets the number of stored entries. Buffers are expected to
// be exactly sized, so no narrowing copy takes place.
func (s *Sparse) SetNnzAndNarrow(nnz int) {
	s.nnz = nnz
}

// String returns a human-readable representation of the tensor.
func (s *Sparse) String() string {
	return fmt.Sprintf("Sparse[%s]%v nnz=%d sparseDim=%d coalesced=%t",
		s.DType(), s.shape, s.nnz, s.sparseDim, s.coalesced)
}

// typedSlice views a RawTensor's data as []T. T must match the tensor's
// dtype.
func typedSlice[T DType](r *RawTensor) []T {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return any(r.AsFloat32()).([]T)
	case float64:
		return any(r.AsFloat64()).([]T)
	case int32:
		return any(r.AsInt32()).([]T)
	case int64:
		return any(r.AsInt64()).([]T)
	case uint8:
		return any(r.AsUint8()).([]T)
	case bool:
		return any(r.AsBool()).([]T)
	default:
		panic("unsupported type")
	}
}

// TypedSlice is the exported form of typedSlice for callers outside the
// package (tests and the public façade).
func TypedSlice[T DType](r *RawTensor) []T { return typedSlice[T](r) }
