// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestFloat32ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input float32
		want  int16
	}{
		{"zero", 0.0, 0},
		{"max positive", 1.0, math.MaxInt16},
		{"max negative", -1.0, -math.MaxInt16},
		{"half positive", 0.5, 16383},
		{"half negative", -0.5, -16383},
		{"small positive", 0.001, 32},
		{"clamp over max", 1.5, math.MaxInt16},
		{"clamp under min", -100.0, -math.MaxInt16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Float32ToInt16(tt.input); got != tt.want {
				t.Errorf("Float32ToInt16(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestPutFloat32LE(t *testing.T) {
	t.Parallel()

	samples := []float32{0, 1, -0.5, 0.25}
	dst := make([]byte, 16)

	if n := PutFloat32LE(dst, samples); n != 4 {
		t.Fatalf("PutFloat32LE() n = %d, want 4", n)
	}
	for i, want := range samples {
		got := math.Float32frombits(binary.LittleEndian.Uint32(dst[i*4:]))
		if got != want {
			t.Errorf("sample %d decoded as %v, want %v", i, got, want)
		}
	}

	// short destination truncates instead of panicking
	if n := PutFloat32LE(make([]byte, 7), samples); n != 1 {
		t.Errorf("PutFloat32LE() into 7 bytes n = %d, want 1", n)
	}
}

func TestPutFloat32LE_ZeroAllocs(t *testing.T) {
	samples := make([]float32, 512)
	dst := make([]byte, 2048)

	allocs := testing.AllocsPerRun(100, func() {
		PutFloat32LE(dst, samples)
	})
	if allocs > 0 {
		t.Errorf("PutFloat32LE allocated %v times, want 0", allocs)
	}
}
