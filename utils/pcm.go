// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 scales a canonical sample to 16-bit PCM for output.
// Unlike normalization, the output side clamps to [-1, 1] first.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// 32767 keeps +1.0 from overflowing
	return int16(x * 32767.0)
}

// Float32sToInt16s converts src into dst and returns the number of samples
// converted, which is the shorter of the two lengths.
func Float32sToInt16s(dst []int16, src []float32) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = Float32ToInt16(src[i])
	}

	return n
}
