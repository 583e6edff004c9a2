// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		y    [4]float32
		x    float32
		want float32
	}{
		{"start returns y1", [4]float32{0, 1, 2, 3}, 0, 1},
		{"end returns y2", [4]float32{0, 1, 2, 3}, 1, 2},
		{"line stays linear", [4]float32{0, 1, 2, 3}, 0.25, 1.25},
		{"negative line", [4]float32{-3, -2, -1, 0}, 0.5, -1.5},
		{"flat", [4]float32{0.5, 0.5, 0.5, 0.5}, 0.7, 0.5},
		{"symmetric peak", [4]float32{0, 1, 1, 0}, 0.5, 1.125},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y[0], tt.y[1], tt.y[2], tt.y[3], tt.x)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("CubicInterpolate(%v, %v) = %v, want %v", tt.y, tt.x, got, tt.want)
			}
		})
	}
}

// Between two equal neighbours the spline may not leave the range of the
// surrounding samples by more than the Catmull-Rom overshoot.
func TestCubicInterpolate_Bounded(t *testing.T) {
	t.Parallel()

	for i := range 101 {
		x := float32(i) / 100
		got := CubicInterpolate(-1, 1, -1, 1, x)
		if got < -1.5 || got > 1.5 {
			t.Fatalf("CubicInterpolate(x=%v) = %v, outside [-1.5, 1.5]", x, got)
		}
	}
}

func TestCubicInterpolate_ZeroAllocs(t *testing.T) {
	allocs := testing.AllocsPerRun(100, func() {
		_ = CubicInterpolate(0.1, 0.2, 0.3, 0.4, 0.5)
	})
	if allocs != 0 {
		t.Errorf("CubicInterpolate() allocs = %v, want 0", allocs)
	}
}

func BenchmarkCubicInterpolate(b *testing.B) {
	b.ReportAllocs()

	var sink float32
	for b.Loop() {
		sink += CubicInterpolate(0.1, 0.2, 0.3, 0.4, 0.5)
	}
	_ = sink
}
