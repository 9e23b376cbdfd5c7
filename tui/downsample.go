package tui

// downsample averages a w×h row-major field into a cols×rows grid.
// When the grid is finer than the field each output cell covers at least
// one source cell.
func downsample(field []float64, w, h, cols, rows int, dst []float64) []float64 {
	n := cols * rows
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]

	for r := 0; r < rows; r++ {
		y0 := r * h / rows
		y1 := (r + 1) * h / rows
		if y1 <= y0 {
			y1 = y0 + 1
		}
		for c := 0; c < cols; c++ {
			x0 := c * w / cols
			x1 := (c + 1) * w / cols
			if x1 <= x0 {
				x1 = x0 + 1
			}

			var sum float64
			for y := y0; y < y1 && y < h; y++ {
				row := field[y*w:]
				for x := x0; x < x1 && x < w; x++ {
					sum += row[x]
				}
			}
			dst[r*cols+c] = sum / float64((y1-y0)*(x1-x0))
		}
	}
	return dst
}
