// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"encoding/binary"
	"math"
)

// Float32ToInt16 clamps x to [-1, 1] and scales it to 16-bit PCM.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// 32767 keeps +1.0 from overflowing
	return int16(x * 32767.0)
}

// PutFloat32LE encodes samples into dst as little-endian IEEE 754 values
// and returns the number of samples written. dst is not grown.
func PutFloat32LE(dst []byte, samples []float32) int {
	n := min(len(dst)/4, len(samples))
	for i := range n {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(samples[i]))
	}

	return n
}

// PCMScale is the divisor that maps signed integer PCM of bitDepth bits
// onto [-1, 1). Unknown depths fall back to 16-bit.
func PCMScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}
