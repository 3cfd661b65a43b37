// Package sparse implements element-wise binary operations between sparse
// COO tensors restricted to the intersection of their coordinate sets.
//
// The pipeline hashes coordinates with a perfect (collision-free) linear
// hash, binary-searches the hashes of one operand (the source) into the
// sorted hashes of the other (the target), expands the per-entry match
// ranges into flat selection arrays, gathers both value buffers through
// them and applies the binary operation. Neither operand is ever
// materialized densely and no pairwise O(nnz_x * nnz_y) comparison takes
// place.
//
// Hash and offset arithmetic is instantiated at 32 or 64 bits depending on
// the broadcast shape and worst-case output size; see selectWidths.
package sparse
