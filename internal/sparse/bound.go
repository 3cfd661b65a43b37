package sparse

import "golang.org/x/exp/constraints"

// lowerBound returns the first position in sorted (non-decreasing) whose
// value is >= v, or len(sorted) if no such position exists.
//
// Both bounds use the classic count/halving loop over plain index
// arithmetic. Iterator-distance style traversal is deliberately avoided so
// the same code shape stays valid on execution backends where only
// random-access indexing is safe.
func lowerBound[H constraints.Signed](sorted []H, v H) int {
	first := 0
	count := len(sorted)
	for count > 0 {
		step := count / 2
		it := first + step
		if sorted[it] < v {
			first = it + 1
			count -= step + 1
		} else {
			count = step
		}
	}
	return first
}

// upperBound returns the first position in sorted (non-decreasing) whose
// value is > v, or len(sorted) if no such position exists.
func upperBound[H constraints.Signed](sorted []H, v H) int {
	first := 0
	count := len(sorted)
	for count > 0 {
		step := count / 2
		it := first + step
		if v >= sorted[it] {
			first = it + 1
			count -= step + 1
		} else {
			count = step
		}
	}
	return first
}
