// SPDX-License-Identifier: EPL-2.0

package utils

// Clamp01 limits x to [0, 1]. NaN maps to 0.
func Clamp01(x float32) float32 {
	if !(x > 0) { // also catches NaN
		return 0
	}
	if x > 1 {
		return 1
	}

	return x
}
