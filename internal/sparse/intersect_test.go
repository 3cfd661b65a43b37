package sparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sparse/internal/backend/cpu"
	"github.com/born-ml/sparse/internal/tensor"
)

// canonical coalesces a fixture and asserts the flag took.
func canonical(t *testing.T, s *tensor.Sparse) *tensor.Sparse {
	t.Helper()
	out, err := Coalesce(s)
	require.NoError(t, err)
	require.True(t, out.IsCoalesced())
	return out
}

func values32(s *tensor.Sparse) []float32 {
	return tensor.TypedSlice[float32](s.Values())
}

func TestDisjointOperands(t *testing.T) {
	b := cpu.New()

	x := canonical(t, coo(t, [][]int{{0, 0}, {1, 1}}, []float32{1, 2}, tensor.Shape{3, 3}, 2))
	y := canonical(t, coo(t, [][]int{{0, 1}, {2, 2}}, []float32{3, 4}, tensor.Shape{3, 3}, 2))

	res := tensor.NewSparseResult(tensor.Float32, tensor.CPU)
	require.NoError(t, IntersectBinaryOp(b, res, x, y, MulOp, true))

	assert.Equal(t, 0, res.Nnz())
	assert.True(t, res.IsCoalesced())
	assert.Equal(t, tensor.Shape{3, 3}, res.Shape())
}

func TestCanonicalIntersection(t *testing.T) {
	b := cpu.New()

	x := canonical(t, coo(t,
		[][]int{{0, 0}, {1, 2}, {2, 1}},
		[]float32{2, 3, 4}, tensor.Shape{3, 3}, 2))
	y := canonical(t, coo(t,
		[][]int{{0, 0}, {2, 1}, {2, 2}},
		[]float32{10, 20, 30}, tensor.Shape{3, 3}, 2))

	res := tensor.NewSparseResult(tensor.Float32, tensor.CPU)
	require.NoError(t, IntersectBinaryOp(b, res, x, y, MulOp, true))

	// Result coordinates are the sorted set intersection, and the result is
	// canonical.
	assert.Equal(t, 2, res.Nnz())
	assert.Equal(t, [][]int{{0, 0}, {2, 1}}, coords(res))
	assert.Equal(t, []float32{20, 80}, values32(res))
	assert.True(t, res.IsCoalesced())
}

func TestSubsetIdentity(t *testing.T) {
	b := cpu.New()

	// x's coordinates are a strict subset of y's, with identical values at
	// the shared coordinates. minimum(v, v) = v must reproduce x exactly.
	x := canonical(t, coo(t,
		[][]int{{1, 0}, {3, 2}},
		[]float32{5, 9}, tensor.Shape{4, 4}, 2))
	y := canonical(t, coo(t,
		[][]int{{0, 0}, {1, 0}, {2, 2}, {3, 2}},
		[]float32{1, 5, 7, 9}, tensor.Shape{4, 4}, 2))

	res := tensor.NewSparseResult(tensor.Float32, tensor.CPU)
	require.NoError(t, IntersectBinaryOp(b, res, x, y, MinimumOp, true))

	assert.Equal(t, coords(x), coords(res))
	assert.Equal(t, values32(x), values32(res))
	assert.True(t, res.IsCoalesced())
}

func TestCoalescedFlagDerivation(t *testing.T) {
	b := cpu.New()

	// Shared coordinate (1, 1) everywhere; the uncoalesced variants carry a
	// duplicate of it.
	mk := func(coalesced bool) *tensor.Sparse {
		if coalesced {
			return canonical(t, coo(t,
				[][]int{{1, 1}, {2, 0}},
				[]float32{2, 3}, tensor.Shape{3, 3}, 2))
		}
		return coo(t,
			[][]int{{1, 1}, {1, 1}, {2, 0}},
			[]float32{2, 2, 3}, tensor.Shape{3, 3}, 2)
	}

	tests := []struct {
		name          string
		xCoal, yCoal  bool
		wantCoalesced bool
	}{
		{"both coalesced", true, true, true},
		{"only x coalesced", true, false, false},
		{"only y coalesced", false, true, false},
		{"neither coalesced", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tensor.NewSparseResult(tensor.Float32, tensor.CPU)
			require.NoError(t, IntersectBinaryOp(b, res, mk(tt.xCoal), mk(tt.yCoal), MulOp, true))
			assert.Equal(t, tt.wantCoalesced, res.IsCoalesced())
			assert.Greater(t, res.Nnz(), 0)
		})
	}
}

func TestDuplicateCrossProduct(t *testing.T) {
	b := cpu.New()

	// A is canonical; B carries a duplicate at (1, 2). The duplicate run has
	// length 2, so A's entry at (1, 2) matches twice: two output rows, both
	// at coordinate (1, 2), both 3*5, and the result is not canonical.
	a := canonical(t, coo(t,
		[][]int{{0, 0}, {1, 2}},
		[]float32{2, 3}, tensor.Shape{3, 3}, 2))
	bOp := coo(t,
		[][]int{{1, 2}, {1, 2}, {2, 0}},
		[]float32{5, 5, 7}, tensor.Shape{3, 3}, 2)

	res := tensor.NewSparseResult(tensor.Float32, tensor.CPU)
	require.NoError(t, IntersectBinaryOp(b, res, a, bOp, MulOp, true))

	assert.Equal(t, 2, res.Nnz())
	assert.Equal(t, [][]int{{1, 2}, {1, 2}}, coords(res))
	assert.Equal(t, []float32{15, 15}, values32(res))
	assert.False(t, res.IsCoalesced())
}

func TestNonCommutativeSub(t *testing.T) {
	b := cpu.New()

	// x carries duplicates at (0, 0) that internal coalescing must sum to 5.
	x := coo(t,
		[][]int{{0, 0}, {0, 0}, {1, 1}},
		[]float32{2, 3, 4}, tensor.Shape{3, 3}, 2)
	y := coo(t,
		[][]int{{0, 0}, {2, 2}},
		[]float32{2, 9}, tensor.Shape{3, 3}, 2)

	fwd := tensor.NewSparseResult(tensor.Float32, tensor.CPU)
	require.NoError(t, IntersectBinaryOp(b, fwd, x, y, SubOp, false))
	rev := tensor.NewSparseResult(tensor.Float32, tensor.CPU)
	require.NoError(t, IntersectBinaryOp(b, rev, y, x, SubOp, false))

	// Antisymmetry: sub(x, y) = -sub(y, x), regardless of which operand the
	// classifier probes.
	require.Equal(t, 1, fwd.Nnz())
	require.Equal(t, 1, rev.Nnz())
	assert.Equal(t, [][]int{{0, 0}}, coords(fwd))
	assert.Equal(t, coords(fwd), coords(rev))
	assert.Equal(t, []float32{3}, values32(fwd))
	assert.Equal(t, []float32{-3}, values32(rev))
	// With both operands internally coalesced, the result is canonical.
	assert.True(t, fwd.IsCoalesced())
	assert.True(t, rev.IsCoalesced())
}

func TestWidthBoundary64BitHash(t *testing.T) {
	b := cpu.New()

	// Product of the sparse sizes is 2^33, beyond int32. Coordinates (0, 0)
	// and (1<<30, 0) hash to 0 and 2^32: a 32-bit hash would wrap the latter
	// to 0 and conflate the two.
	shape := tensor.Shape{1 << 31, 4}
	w := selectWidths(shape, 2, 1)
	require.True(t, w.hash64)
	require.False(t, w.offset64)

	x := coo(t, [][]int{{0, 0}, {1 << 30, 0}}, []float32{2, 3}, shape, 2)
	y := coo(t, [][]int{{1 << 30, 0}}, []float32{5}, shape, 2)

	res := tensor.NewSparseResult(tensor.Float32, tensor.CPU)
	require.NoError(t, IntersectBinaryOp(b, res, x, y, MulOp, true))

	require.Equal(t, 1, res.Nnz())
	assert.Equal(t, []int{1 << 30, 0}, res.Coord(0))
	assert.Equal(t, []float32{15}, values32(res))
}

func TestDenseDimBroadcast(t *testing.T) {
	b := cpu.New()

	// x entries carry dense blocks {2}, y entries dense blocks {1}; dense
	// dims broadcast like any dense op.
	x := coo(t, [][]int{{0}, {2}}, []float32{1, 2, 3, 4}, tensor.Shape{3, 2}, 1)
	y := coo(t, [][]int{{2}, {1}}, []float32{10, 100}, tensor.Shape{3, 1}, 1)

	res := tensor.NewSparseResult(tensor.Float32, tensor.CPU)
	require.NoError(t, IntersectBinaryOp(b, res, x, y, MulOp, true))

	require.Equal(t, 1, res.Nnz())
	assert.Equal(t, []int{2}, res.Coord(0))
	assert.Equal(t, tensor.Shape{3, 2}, res.Shape())
	assert.Equal(t, 1, res.DenseDim())
	assert.Equal(t, []float32{30, 40}, values32(res))
}

func TestDtypePromotion(t *testing.T) {
	b := cpu.New()

	xi, err := tensor.FromCOO([][]int{{0}, {1}}, []int32{2, 3}, tensor.Shape{4}, 1)
	require.NoError(t, err)
	yf, err := tensor.FromCOO([][]int{{1}, {3}}, []float32{0.5, 7}, tensor.Shape{4}, 1)
	require.NoError(t, err)

	// int32 * float32 promotes to float32; a float64 result handle is a safe
	// widening cast.
	res := tensor.NewSparseResult(tensor.Float64, tensor.CPU)
	require.NoError(t, IntersectBinaryOp(b, res, xi, yf, MulOp, true))

	require.Equal(t, 1, res.Nnz())
	assert.Equal(t, tensor.Float64, res.DType())
	assert.Equal(t, []float64{1.5}, tensor.TypedSlice[float64](res.Values()))
}

func TestDtypeCastRejected(t *testing.T) {
	b := cpu.New()

	x := coo(t, [][]int{{0}}, []float32{1}, tensor.Shape{4}, 1)
	y := coo(t, [][]int{{0}}, []float32{2}, tensor.Shape{4}, 1)

	// float32 results cannot be written into an int32 handle.
	res := tensor.NewSparseResult(tensor.Int32, tensor.CPU)
	err := IntersectBinaryOp(b, res, x, y, MulOp, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't convert")
	// The failure happens before any output mutation.
	assert.Equal(t, 0, res.Nnz())
}

func TestShapeMismatchRejected(t *testing.T) {
	b := cpu.New()
	res := tensor.NewSparseResult(tensor.Float32, tensor.CPU)

	t.Run("sparse sizes differ", func(t *testing.T) {
		x := coo(t, [][]int{{0}}, []float32{1}, tensor.Shape{4}, 1)
		y := coo(t, [][]int{{0}}, []float32{2}, tensor.Shape{5}, 1)
		require.Error(t, IntersectBinaryOp(b, res, x, y, MulOp, true))
	})

	t.Run("sparse rank differs", func(t *testing.T) {
		x := coo(t, [][]int{{0, 0}}, []float32{1}, tensor.Shape{4, 4}, 2)
		y := coo(t, [][]int{{0}}, []float32{2, 2, 2, 2}, tensor.Shape{4, 4}, 1)
		require.Error(t, IntersectBinaryOp(b, res, x, y, MulOp, true))
	})

	t.Run("total rank differs", func(t *testing.T) {
		x := coo(t, [][]int{{0}}, []float32{1}, tensor.Shape{4}, 1)
		y := coo(t, [][]int{{0}}, []float32{2, 2}, tensor.Shape{4, 2}, 1)
		require.Error(t, IntersectBinaryOp(b, res, x, y, MulOp, true))
	})
}

func TestEmptyOperand(t *testing.T) {
	b := cpu.New()

	x := coo(t, nil, []float32{}, tensor.Shape{3, 3}, 2)
	y := coo(t, [][]int{{0, 0}}, []float32{1}, tensor.Shape{3, 3}, 2)

	res := tensor.NewSparseResult(tensor.Float32, tensor.CPU)
	require.NoError(t, IntersectBinaryOp(b, res, x, y, MulOp, true))
	assert.Equal(t, 0, res.Nnz())

	// Swapped order too: the classifier may pick either side as source.
	res = tensor.NewSparseResult(tensor.Float32, tensor.CPU)
	require.NoError(t, IntersectBinaryOp(b, res, y, x, MulOp, true))
	assert.Equal(t, 0, res.Nnz())
}

func TestSequentialBackendMatches(t *testing.T) {
	par := cpu.New()
	seq := cpu.NewSequential()

	n := 500
	xc := make([][]int, n)
	xv := make([]float32, n)
	yc := make([][]int, n)
	yv := make([]float32, n)
	for i := 0; i < n; i++ {
		xc[i] = []int{(i * 7) % 50, (i * 13) % 50}
		xv[i] = float32(i)
		yc[i] = []int{(i * 3) % 50, (i * 11) % 50}
		yv[i] = float32(2 * i)
	}
	shape := tensor.Shape{50, 50}

	x := coo(t, xc, xv, shape, 2)
	y := coo(t, yc, yv, shape, 2)

	resPar := tensor.NewSparseResult(tensor.Float32, tensor.CPU)
	require.NoError(t, IntersectBinaryOp(par, resPar, x, y, MulOp, true))
	resSeq := tensor.NewSparseResult(tensor.Float32, tensor.CPU)
	require.NoError(t, IntersectBinaryOp(seq, resSeq, x, y, MulOp, true))

	assert.Equal(t, resPar.Nnz(), resSeq.Nnz())
	assert.Equal(t, coords(resPar), coords(resSeq))
	assert.Equal(t, values32(resPar), values32(resSeq))
}

func TestCoalesceThresholdOption(t *testing.T) {
	b := cpu.New()

	// Both uncoalesced; x has many duplicates over a tiny sparse shape, so a
	// zero threshold forces proactive coalescing of the target and the
	// duplicates merge (their values sum) before matching.
	xcoords := make([][]int, 6)
	xvals := make([]float32, 6)
	for i := range xcoords {
		xcoords[i] = []int{0}
		xvals[i] = 1
	}
	x := coo(t, xcoords, xvals, tensor.Shape{2}, 1)
	y := coo(t, [][]int{{0}}, []float32{10}, tensor.Shape{2}, 1)

	res := tensor.NewSparseResult(tensor.Float32, tensor.CPU)
	require.NoError(t, IntersectBinaryOp(b, res, x, y, MulOp, true, WithCoalesceThreshold(0)))
	require.Equal(t, 1, res.Nnz())
	assert.Equal(t, []float32{60}, values32(res))

	// With the default threshold the duplicates survive and expand as a
	// cross product.
	res = tensor.NewSparseResult(tensor.Float32, tensor.CPU)
	require.NoError(t, IntersectBinaryOp(b, res, x, y, MulOp, true))
	assert.Equal(t, 6, res.Nnz())
}
