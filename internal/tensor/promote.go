package tensor

// typeCategory orders dtypes into promotion categories:
// bool < unsigned/signed integers < floating point.
type typeCategory int

const (
	categoryBool typeCategory = iota
	categoryInt
	categoryFloat
)

func (dt DataType) category() typeCategory {
	switch dt {
	case Bool:
		return categoryBool
	case Uint8, Int32, Int64:
		return categoryInt
	case Float32, Float64:
		return categoryFloat
	default:
		panic("unknown data type")
	}
}

// rank orders dtypes within a category, wider types rank higher.
func (dt DataType) rank() int {
	switch dt {
	case Bool:
		return 0
	case Uint8:
		return 1
	case Int32:
		return 2
	case Int64:
		return 3
	case Float32:
		return 4
	case Float64:
		return 5
	default:
		panic("unknown data type")
	}
}

// PromoteTypes returns the dtype that results from combining operands of the
// two given dtypes in a binary operation.
//
// Rules follow the usual NumPy-style lattice restricted to the supported
// dtypes: bool promotes to anything, integers promote to floats, and within
// a category the wider type wins.
func PromoteTypes(a, b DataType) DataType {
	if a == b {
		return a
	}
	if a.rank() < b.rank() {
		a, b = b, a
	}
	// a now has the higher rank; with distinct dtypes the higher rank always
	// dominates in this lattice (uint8 < int32 < int64 < float32 < float64).
	return a
}

// CanCast reports whether a value of dtype from can be safely cast to dtype
// to for the purpose of writing results into a pre-typed output tensor.
//
// Casting is considered unsafe when it crosses a category downwards:
// float -> integer discards fractional parts, and anything -> bool discards
// magnitudes. Narrowing within a category (e.g. int64 -> int32,
// float64 -> float32) is permitted.
func CanCast(from, to DataType) bool {
	if from == to {
		return true
	}
	if to == Bool {
		return false
	}
	if from.category() == categoryFloat && to.category() == categoryInt {
		return false
	}
	return true
}
