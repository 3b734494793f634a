// Package mix provides audio mixing and blending operations.
package mix

// DryWet performs a dry/wet mix between two values.
// amount parameter: 0.0 = 100% dry, 1.0 = 100% wet
func DryWet(dry, wet, amount float64) float64 {
	return dry*(1.0-amount) + wet*amount
}

// Accumulate adds src scaled by gain into dst.
func Accumulate(dst, src []float32, gain float32) {
	length := len(dst)
	if len(src) < length {
		length = len(src)
	}

	for i := 0; i < length; i++ {
		dst[i] += src[i] * gain
	}
}
