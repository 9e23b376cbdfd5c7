package renderer

import "image/color"

// FieldPixels converts pheromone intensities to grayscale pixels.
// An intensity of 1/gain maps to white; anything above saturates.
// dst is reused when large enough.
func FieldPixels(field []float64, gain float64, dst []color.RGBA) []color.RGBA {
	if cap(dst) < len(field) {
		dst = make([]color.RGBA, len(field))
	}
	dst = dst[:len(field)]

	for i, v := range field {
		g := uint8(clamp01(v*gain) * 255)
		dst[i] = color.RGBA{R: g, G: g, B: g, A: 255}
	}
	return dst
}

// AutoGain picks a gain that maps the given reference intensity to white.
// A non-positive reference yields gain 1.
func AutoGain(reference float64) float64 {
	if reference <= 0 {
		return 1
	}
	return 1 / reference
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
