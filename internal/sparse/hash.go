package sparse

import (
	"math"

	"golang.org/x/exp/constraints"
	"k8s.io/klog/v2"

	"github.com/born-ml/sparse/internal/tensor"
)

// hashCoeffs returns the row-major strides of a dense tensor with the given
// sparse shape, in the selected integer width. With these as coefficients,
//
//	hash(c) = Σ_d c[d] * coeffs[d]
//
// is the linear offset of coordinate c into that dense tensor. For
// coordinates bounded componentwise by the shape the map is bijective, so
// the hash is perfect: distinct valid coordinates never collide. A further
// consequence is that lexicographic coordinate order equals hash order,
// which is why a coalesced operand's hashes are already sorted.
func hashCoeffs[H constraints.Signed](sparseShape tensor.Shape) []H {
	coeffs := make([]H, len(sparseShape))
	if len(coeffs) == 0 {
		return coeffs
	}
	coeffs[len(coeffs)-1] = 1
	for d := len(coeffs) - 2; d >= 0; d-- {
		coeffs[d] = coeffs[d+1] * H(sparseShape[d+1])
	}
	return coeffs
}

// hashCoord hashes column col of an indices buffer laid out [sparseDim, nnz]
// row-major. All arithmetic stays in width H; the width selector guarantees
// the result cannot overflow.
func hashCoord[H constraints.Signed](indices []int64, nnz, col int, coeffs []H) H {
	var h H
	for d := range coeffs {
		h += H(indices[d*nnz+col]) * coeffs[d]
	}
	return h
}

// widths records the integer widths chosen for hash values and for
// offset/count arithmetic. The two are independent: a small sparse shape
// with huge nnz needs 32-bit hashes but 64-bit offsets, and vice versa.
type widths struct {
	hash64   bool
	offset64 bool
}

// selectWidths picks conservative integer widths before any kernel runs.
//
// The largest possible hash is the number of cells of a dense tensor with
// the broadcast sparse shape. The largest possible output is nnzX * nnzY:
// if all entries of both operands share one coordinate, every pair matches.
// Both bounds are computed in 64-bit arithmetic with explicit overflow
// checks, so a wrong-width silent wraparound cannot happen downstream.
func selectWidths(sparseShape tensor.Shape, nnzX, nnzY int) widths {
	var w widths

	maxHash := int64(1)
	for _, dim := range sparseShape {
		if dim > 0 && maxHash > math.MaxInt64/int64(dim) {
			// Product overflows int64; definitely beyond 32 bits.
			maxHash = math.MaxInt64
			break
		}
		maxHash *= int64(dim)
	}
	w.hash64 = maxHash > math.MaxInt32

	maxOut := int64(nnzX) * int64(nnzY)
	if nnzX > 0 && maxOut/int64(nnzX) != int64(nnzY) {
		maxOut = math.MaxInt64
	}
	w.offset64 = maxOut > math.MaxInt32

	if klog.V(2).Enabled() {
		klog.Infof("sparse intersection: hash width %d bits (max hash %d), offset width %d bits (max output %d)",
			bits(w.hash64), maxHash, bits(w.offset64), maxOut)
	}
	return w
}

func bits(wide bool) int {
	if wide {
		return 64
	}
	return 32
}
