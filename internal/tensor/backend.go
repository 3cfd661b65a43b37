package tensor

// Backend defines the interface that compute backends must implement for the
// sparse intersection pipeline and its collaborators.
//
// The interface is deliberately small: dense element-wise binary kernels
// (applied to gathered value buffers), row gathering, dtype conversion, and
// a uniform "run f over N independent indices" dispatch primitive. The
// intersection algorithm itself is backend-agnostic; its correctness does
// not depend on whether Launch runs sequentially or in parallel.
type Backend interface {
	// Element-wise binary operations over dense buffers, with NumPy-style
	// broadcasting and dtype promotion.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor
	Minimum(a, b *RawTensor) *RawTensor
	Maximum(a, b *RawTensor) *RawTensor

	// IndexSelect gathers rows of x along dim using an index tensor of
	// dtype Int32 or Int64. Only dim == 0 is required by this library.
	IndexSelect(x *RawTensor, dim int, index *RawTensor) *RawTensor

	// Cast converts x to a different data type (no-op when dtypes match).
	Cast(x *RawTensor, dtype DataType) *RawTensor

	// Launch executes f(i) for every i in [0, n). Calls to f must be
	// independent: no two indices may write the same output slot.
	Launch(n int, f func(i int))

	// Metadata
	Name() string
	Device() Device
}
