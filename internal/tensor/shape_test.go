package tensor

import "testing"

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  int
	}{
		{"scalar", Shape{}, 1},
		{"vector", Shape{5}, 5},
		{"matrix", Shape{3, 4}, 12},
		{"empty", Shape{0}, 0},
		{"empty with dense", Shape{0, 3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shape.NumElements(); got != tt.want {
				t.Errorf("NumElements() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{3, 0, 2}).Validate(); err != nil {
		t.Errorf("Zero-sized dimension should be valid, got %v", err)
	}
	if err := (Shape{3, -1}).Validate(); err == nil {
		t.Error("Negative dimension should be invalid")
	}
}

func TestComputeStrides(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  []int
	}{
		{"matrix", Shape{3, 4}, []int{4, 1}},
		{"3D", Shape{2, 3, 4}, []int{12, 4, 1}},
		{"vector", Shape{7}, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.shape.ComputeStrides()
			if len(got) != len(tt.want) {
				t.Fatalf("ComputeStrides() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ComputeStrides() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Shape
		want      Shape
		needs     bool
		expectErr bool
	}{
		{"same", Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false, false},
		{"broadcast left", Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"broadcast right", Shape{1, 5}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"rank mismatch", Shape{5}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"incompatible", Shape{3, 4}, Shape{3, 5}, nil, false, true},
		{"zero dims", Shape{0, 3}, Shape{0, 3}, Shape{0, 3}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, needs, err := BroadcastShapes(tt.a, tt.b)
			if tt.expectErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("BroadcastShapes() = %v, want %v", got, tt.want)
			}
			if needs != tt.needs {
				t.Errorf("needsBroadcast = %t, want %t", needs, tt.needs)
			}
		})
	}
}
