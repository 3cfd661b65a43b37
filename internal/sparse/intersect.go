package sparse

import (
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"github.com/born-ml/sparse/internal/tensor"
)

type config struct {
	coalesceThreshold int64
}

// Option configures the intersection pipeline.
type Option func(*config)

// WithCoalesceThreshold overrides the expected-matches-per-entry bound used
// by the operand classifier when deciding whether to proactively coalesce a
// large uncoalesced operand.
func WithCoalesceThreshold(n int64) Option {
	return func(c *config) { c.coalesceThreshold = n }
}

// IntersectBinaryOp computes op element-wise over the intersection of the
// coordinate sets of x and y and populates the result handle res in place:
// the result contains an entry exactly where both operands store an entry at
// the same coordinate. Dense dims and dtypes broadcast; sparse dims must
// match exactly.
//
// When commutative is false both operands are coalesced up front, and the
// operation is always applied in (x, y) argument order regardless of which
// operand the classifier turns into the probe side.
//
// The result is coalesced iff both operands are coalesced. If both are,
// every hash is unique per operand, each match range has length <= 1, and
// the pipeline preserves source order, so the output coordinates come out
// sorted and distinct. If either operand is uncoalesced, a match range can
// exceed 1 or duplicate source entries exist, and the output inherits the
// disorder.
func IntersectBinaryOp(b tensor.Backend, res, x, y *tensor.Sparse, op BinaryOp, commutative bool, opts ...Option) error {
	cfg := config{coalesceThreshold: DefaultCoalesceThreshold}
	for _, opt := range opts {
		opt(&cfg)
	}

	if x.Dim() != y.Dim() || x.SparseDim() != y.SparseDim() {
		return errors.Errorf("%s intersection: expects sparse inputs with equal dimensionality and number of sparse dimensions, got %s and %s",
			op.Name(), x, y)
	}
	sdim := x.SparseDim()
	if !x.Shape()[:sdim].Equal(y.Shape()[:sdim]) {
		return errors.Errorf("%s intersection: sparse dimension sizes must match exactly, got %v and %v",
			op.Name(), x.Shape()[:sdim], y.Shape()[:sdim])
	}

	// Check the result dtype before any kernel work. The op produces values
	// of its natural result dtype, and failing late would waste every
	// preceding stage.
	common := op.ResultType(x.DType(), y.DType())
	if !tensor.CanCast(common, res.DType()) {
		return errors.Errorf("%s intersection: can't convert result type %s to output %s",
			op.Name(), common, res.DType())
	}

	broadcast, _, err := tensor.BroadcastShapes(x.Shape(), y.Shape())
	if err != nil {
		return errors.Wrapf(err, "%s intersection", op.Name())
	}

	// Order-dependent ops need both operands in canonical form: the
	// coalesced-iff derivation and the (x, y) argument order below are only
	// provable when match ranges have length <= 1 on both sides.
	if !commutative {
		if x, err = Coalesce(x); err != nil {
			return errors.Wrapf(err, "%s intersection", op.Name())
		}
		if y, err = Coalesce(y); err != nil {
			return errors.Wrapf(err, "%s intersection", op.Name())
		}
	}

	target, source, sourceIsX, err := classify(x, y, cfg.coalesceThreshold)
	if err != nil {
		return errors.Wrapf(err, "%s intersection", op.Name())
	}

	w := selectWidths(broadcast[:sdim], x.Nnz(), y.Nnz())
	switch {
	case !w.hash64 && !w.offset64:
		return run[int32, int32](b, res, target, source, sourceIsX, broadcast, common, op)
	case !w.hash64 && w.offset64:
		return run[int32, int64](b, res, target, source, sourceIsX, broadcast, common, op)
	case w.hash64 && !w.offset64:
		return run[int64, int32](b, res, target, source, sourceIsX, broadcast, common, op)
	default:
		return run[int64, int64](b, res, target, source, sourceIsX, broadcast, common, op)
	}
}

// run is the width-generic pipeline. H is the hash width, O the
// offset/count width; the width selector guarantees neither can overflow.
func run[H, O constraints.Signed](
	b tensor.Backend,
	res *tensor.Sparse,
	target, source *tensor.Sparse,
	sourceIsX bool,
	broadcast tensor.Shape,
	common tensor.DataType,
	op BinaryOp,
) error {
	sdim := source.SparseDim()
	coeffs := hashCoeffs[H](broadcast[:sdim])

	// Stage 1: hash the target's coordinates.
	tIdx := target.Indices().AsInt64()
	tNnz := target.Nnz()
	targetHash := make([]H, tNnz)
	b.Launch(tNnz, func(i int) {
		targetHash[i] = hashCoord(tIdx, tNnz, i, coeffs)
	})

	// Stage 2: sort the target hashes unless the target is coalesced, in
	// which case they are already ascending and the permutation is the
	// identity (perm == nil).
	sortedHash := targetHash
	var perm []int
	if !target.IsCoalesced() {
		perm = make([]int, tNnz)
		for i := range perm {
			perm[i] = i
		}
		sort.SliceStable(perm, func(i, j int) bool {
			return targetHash[perm[i]] < targetHash[perm[j]]
		})
		sortedHash = make([]H, tNnz)
		for i, p := range perm {
			sortedHash[i] = targetHash[p]
		}
	}

	// Stage 3: for every source entry, fuse hashing with the search for its
	// match range [lower, upper) in the sorted target hashes. A zero-length
	// range is a valid miss; runs longer than one occur only for an
	// uncoalesced target and expand as cross products.
	sIdx := source.Indices().AsInt64()
	sNnz := source.Nnz()
	counts := make([]H, sNnz)
	firstMatch := make([]H, sNnz)
	b.Launch(sNnz, func(i int) {
		h := hashCoord(sIdx, sNnz, i, coeffs)
		lb := lowerBound(sortedHash, h)
		ub := upperBound(sortedHash, h)
		counts[i] = H(ub - lb)
		firstMatch[i] = H(lb)
	})

	// Stage 4: exclusive prefix sum of the match counts, in source order.
	// Source order fixes the output order, which the coalesced-flag
	// derivation depends on. Materializing the total is the pipeline's one
	// synchronization point: the output size is data-dependent.
	offsets := make([]O, sNnz)
	var total O
	for i := 0; i < sNnz; i++ {
		offsets[i] = total
		total += O(counts[i])
	}
	outNnz := int(total)

	// Stage 5: ragged expansion. Every source entry writes its matches to
	// its own offset range, so writers never contend for a slot.
	selSourceRaw, err := tensor.NewRaw(tensor.Shape{outNnz}, offsetDType[O](), b.Device())
	if err != nil {
		return errors.Wrap(err, "allocating selection buffer")
	}
	selTargetRaw, err := tensor.NewRaw(tensor.Shape{outNnz}, offsetDType[O](), b.Device())
	if err != nil {
		return errors.Wrap(err, "allocating selection buffer")
	}
	resIndices, err := tensor.NewRaw(tensor.Shape{sdim, outNnz}, tensor.Int64, b.Device())
	if err != nil {
		return errors.Wrap(err, "allocating result indices")
	}
	selSource := intSlice[O](selSourceRaw)
	selTarget := intSlice[O](selTargetRaw)
	ri := resIndices.AsInt64()

	b.Launch(sNnz, func(i int) {
		count := int(counts[i])
		first := int(firstMatch[i])
		off := int(offsets[i])
		for k := 0; k < count; k++ {
			pos := off + k
			selSource[pos] = O(i)
			j := first + k
			if perm != nil {
				j = perm[j]
			}
			selTarget[pos] = O(j)
			// The result coordinate is the source's coordinate: the op runs
			// over the source's index domain restricted to matching targets.
			for d := 0; d < sdim; d++ {
				ri[d*outNnz+pos] = sIdx[d*sNnz+i]
			}
		}
	})

	// Stage 6: gather both value buffers through the selections, restore the
	// caller's (x, y) argument order, apply the op and cast into the
	// declared result dtype.
	sourceVals := b.IndexSelect(source.Values(), 0, selSourceRaw)
	targetVals := b.IndexSelect(target.Values(), 0, selTargetRaw)

	lhs, rhs := sourceVals, targetVals
	if !sourceIsX {
		lhs, rhs = rhs, lhs
	}
	lhs = b.Cast(lhs, common)
	rhs = b.Cast(rhs, common)
	vals := op.Apply(b, lhs, rhs)
	vals = b.Cast(vals, res.DType())

	res.RawResize(sdim, len(vals.Shape())-1, broadcast)
	res.SetIndicesAndValues(resIndices, vals)
	res.SetNnzAndNarrow(outNnz)
	res.SetCoalesced(source.IsCoalesced() && target.IsCoalesced())
	return nil
}

// offsetDType maps the offset width type parameter to its runtime dtype.
func offsetDType[O constraints.Signed]() tensor.DataType {
	var zero O
	switch any(zero).(type) {
	case int32:
		return tensor.Int32
	case int64:
		return tensor.Int64
	default:
		panic("unsupported offset width")
	}
}

// intSlice views an Int32 or Int64 RawTensor as []O.
func intSlice[O constraints.Signed](r *tensor.RawTensor) []O {
	switch r.DType() {
	case tensor.Int32:
		return any(r.AsInt32()).([]O)
	case tensor.Int64:
		return any(r.AsInt64()).([]O)
	default:
		panic("unsupported index dtype")
	}
}
