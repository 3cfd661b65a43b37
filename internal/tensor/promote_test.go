package tensor

import "testing"

func TestPromoteTypes(t *testing.T) {
	tests := []struct {
		a, b, want DataType
	}{
		{Float32, Float32, Float32},
		{Float32, Float64, Float64},
		{Int32, Float32, Float32},
		{Int64, Float32, Float32},
		{Uint8, Int32, Int32},
		{Uint8, Int64, Int64},
		{Int32, Int64, Int64},
		{Bool, Int32, Int32},
		{Bool, Float64, Float64},
		{Bool, Bool, Bool},
	}

	for _, tt := range tests {
		if got := PromoteTypes(tt.a, tt.b); got != tt.want {
			t.Errorf("PromoteTypes(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
		// Promotion is symmetric.
		if got := PromoteTypes(tt.b, tt.a); got != tt.want {
			t.Errorf("PromoteTypes(%s, %s) = %s, want %s", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestCanCast(t *testing.T) {
	tests := []struct {
		from, to DataType
		want     bool
	}{
		{Float32, Float32, true},
		{Float64, Float32, true}, // narrowing within category is safe
		{Int64, Int32, true},
		{Int64, Uint8, true},
		{Int32, Float64, true},
		{Bool, Int32, true},
		{Float32, Int32, false}, // float -> int discards fractions
		{Float64, Int64, false},
		{Int32, Bool, false}, // nothing casts to bool
		{Float32, Bool, false},
		{Bool, Bool, true},
	}

	for _, tt := range tests {
		if got := CanCast(tt.from, tt.to); got != tt.want {
			t.Errorf("CanCast(%s, %s) = %t, want %t", tt.from, tt.to, got, tt.want)
		}
	}
}
