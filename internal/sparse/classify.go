package sparse

import (
	"k8s.io/klog/v2"

	"github.com/born-ml/sparse/internal/tensor"
)

// DefaultCoalesceThreshold is the expected-matches-per-entry bound above
// which a large uncoalesced target is proactively coalesced. It is a tuning
// constant, not a correctness requirement; see WithCoalesceThreshold.
const DefaultCoalesceThreshold = 50

// classify decides which operand is searched into (the target, whose hashes
// get sorted) and which is probed entry by entry (the source).
//
// In priority order:
//  1. If exactly one operand is coalesced it becomes the target: its hashes
//     are already sorted, so the sort stage is free.
//  2. Otherwise the operand with more entries becomes the target; probing
//     the smaller side into the larger sorted array is cheaper than the
//     reverse.
//  3. If both are uncoalesced and the pigeonhole lower bound on the largest
//     hash bucket of the target, nnz / Π(sparse sizes), exceeds threshold,
//     the target is coalesced first. This bounds the expected matches per
//     source entry and keeps the ragged expansion balanced. Below the
//     threshold the target is left as is; it gets sorted next anyway.
//
// sourceIsX reports whether the source is operand x, which callers need to
// preserve the argument order of non-commutative operations.
func classify(x, y *tensor.Sparse, threshold int64) (target, source *tensor.Sparse, sourceIsX bool, err error) {
	if x.IsCoalesced() != y.IsCoalesced() {
		if x.IsCoalesced() {
			return x, y, false, nil
		}
		return y, x, true, nil
	}

	larger, smaller := x, y
	sourceIsX = false
	if y.Nnz() > x.Nnz() {
		larger, smaller = y, x
		sourceIsX = true
	}

	if !larger.IsCoalesced() {
		sparseNumel := int64(1)
		for _, dim := range larger.Shape()[:larger.SparseDim()] {
			sparseNumel *= int64(dim)
		}
		maxCountLowerBound := int64(0)
		if sparseNumel > 0 {
			maxCountLowerBound = int64(larger.Nnz()) / sparseNumel
		}
		if maxCountLowerBound > threshold {
			klog.V(2).Infof("sparse intersection: coalescing target (nnz=%d, bucket lower bound %d > %d)",
				larger.Nnz(), maxCountLowerBound, threshold)
			larger, err = Coalesce(larger)
			if err != nil {
				return nil, nil, false, err
			}
		}
	}

	return larger, smaller, sourceIsX, nil
}
