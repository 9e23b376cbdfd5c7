package systems

import "math"

// ModInt returns a mod m in [0, m) (Go's % can return negative).
func ModInt(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// WrapCoord folds v into [0, size) on a toroidal axis.
func WrapCoord(v, size float64) float64 {
	r := math.Mod(v, size)
	if r < 0 {
		r += size
	}
	// r+size can round up to size for tiny negative r
	if r >= size {
		r = 0
	}
	return r
}

// NormalizeAngle wraps an angle to [-Pi, Pi].
func NormalizeAngle(angle float64) float64 {
	return math.Remainder(angle, 2*math.Pi)
}

// distanceSq returns the squared distance between two points.
func distanceSq(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}
