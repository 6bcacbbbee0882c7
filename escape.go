package mandel

// Limit is the iteration limit used for rendering. It matches the byte range of a gray pixel.
const Limit = 255

// EscapeTime iterates z = z*z + c from z = 0 and returns the iteration at which |z|² exceeded 4.
// escaped is false when the orbit stayed bounded for limit iterations.
func EscapeTime(c complex128, limit int) (n int, escaped bool) {
	var z complex128
	for i := range limit {
		if real(z)*real(z)+imag(z)*imag(z) > 4 {
			return i, true
		}
		z = z*z + c
	}
	return 0, false
}

// Intensity maps an escape result to a gray level: bounded points are black,
// fast divergence is bright.
func Intensity(n int, escaped bool) byte {
	if !escaped || n >= 255 {
		return 0
	}
	return byte(255 - n)
}
