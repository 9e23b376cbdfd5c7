package systems

import (
	"math"
	"sync/atomic"
)

// PheromoneField is a toroidal grid of non-negative trail intensities.
// Cells are stored row-major as float64 bits so deposits from concurrent
// workers accumulate atomically. Evaporate, Diffuse and Reset are
// single-writer passes and must not overlap with Deposit.
type PheromoneField struct {
	W, H int

	cells []atomic.Uint64

	// Scratch buffer for diffusion
	tmp []float64
}

// NewPheromoneField creates an all-zero field of w×h cells.
func NewPheromoneField(w, h int) *PheromoneField {
	return &PheromoneField{
		W:     w,
		H:     h,
		cells: make([]atomic.Uint64, w*h),
		tmp:   make([]float64, w*h),
	}
}

// index truncates a continuous position to its cell and wraps it onto the grid.
func (f *PheromoneField) index(x, y float64) int {
	cx := ModInt(int(x), f.W)
	cy := ModInt(int(y), f.H)
	return cy*f.W + cx
}

// Deposit adds amount to the cell containing (x, y).
// Safe to call from multiple goroutines.
func (f *PheromoneField) Deposit(x, y, amount float64) {
	c := &f.cells[f.index(x, y)]
	for {
		old := c.Load()
		next := math.Float64bits(math.Float64frombits(old) + amount)
		if c.CompareAndSwap(old, next) {
			return
		}
	}
}

// Sample returns the intensity of the cell containing (x, y).
func (f *PheromoneField) Sample(x, y float64) float64 {
	return math.Float64frombits(f.cells[f.index(x, y)].Load())
}

// Cell returns the intensity at integer cell coordinates, wrapped onto the grid.
func (f *PheromoneField) Cell(cx, cy int) float64 {
	i := ModInt(cy, f.H)*f.W + ModInt(cx, f.W)
	return math.Float64frombits(f.cells[i].Load())
}

// Evaporate multiplies every cell by (1 - rate).
func (f *PheromoneField) Evaporate(rate float64) {
	k := 1 - rate
	for i := range f.cells {
		v := math.Float64frombits(f.cells[i].Load())
		f.cells[i].Store(math.Float64bits(v * k))
	}
}

// Diffuse applies 5-point stencil diffusion on the toroidal grid.
// Strength is clamped to 0.25, which keeps every cell non-negative.
func (f *PheromoneField) Diffuse(a float64) {
	if a <= 0 {
		return
	}
	// Stability clamp for explicit diffusion
	if a > 0.25 {
		a = 0.25
	}

	w, h := f.W, f.H
	src := f.Snapshot(f.tmp)
	f.tmp = src

	for y := 0; y < h; y++ {
		yN := ModInt(y-1, h)
		yS := ModInt(y+1, h)
		for x := 0; x < w; x++ {
			xW := ModInt(x-1, w)
			xE := ModInt(x+1, w)

			i := y*w + x
			c := src[i]
			n := src[yN*w+x]
			s := src[yS*w+x]
			e := src[y*w+xE]
			wv := src[y*w+xW]

			v := c*(1-4*a) + a*(n+s+e+wv)
			if v < 0 {
				v = 0
			}
			f.cells[i].Store(math.Float64bits(v))
		}
	}
}

// Snapshot copies the grid into dst (grown if needed) and returns it.
// Each cell is read atomically, so it may be called while a tick is running;
// the copy then mixes values from before and during that tick.
func (f *PheromoneField) Snapshot(dst []float64) []float64 {
	n := len(f.cells)
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]
	for i := range f.cells {
		dst[i] = math.Float64frombits(f.cells[i].Load())
	}
	return dst
}

// Total returns the sum of all cells.
func (f *PheromoneField) Total() float64 {
	var sum float64
	for i := range f.cells {
		sum += math.Float64frombits(f.cells[i].Load())
	}
	return sum
}

// Reset zeroes every cell.
func (f *PheromoneField) Reset() {
	for i := range f.cells {
		f.cells[i].Store(0)
	}
}

// GridSize returns the grid dimensions.
func (f *PheromoneField) GridSize() (int, int) {
	return f.W, f.H
}
