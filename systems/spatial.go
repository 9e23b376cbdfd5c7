// Package systems implements the slime model: the pheromone field, obstacles,
// food sources and the per-agent sense and move rules.
package systems

import "math"

// SpatialGrid buckets a tick's agent snapshot by position so avoidance checks
// only visit nearby agents. Entries are indices into that snapshot.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int32 // flat grid of snapshot indices
}

// maxGridCells caps the buckets per axis. Radii smaller than a bucket still
// give exact counts because queries scan every bucket the radius overlaps.
const maxGridCells = 256

// NewSpatialGrid creates a spatial grid covering the given world size.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	cellSize = max(cellSize, math.Max(width, height)/maxGridCells)
	if !(cellSize > 0) {
		cellSize = 1
	}
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]int32, cols*rows)
	for i := range cells {
		cells[i] = make([]int32, 0, 8) // pre-allocate small capacity
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all entries from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds snapshot index idx at the given position.
func (g *SpatialGrid) Insert(idx int, x, y float64) {
	i := g.cellIndex(x, y)
	g.cells[i] = append(g.cells[i], int32(idx))
}

// Rebuild clears the grid and inserts every agent of the snapshot.
func (g *SpatialGrid) Rebuild(agents []Agent) {
	g.Clear()
	for i := range agents {
		g.Insert(i, agents[i].X, agents[i].Y)
	}
}

// CountWithin returns how many agents other than exclude lie strictly closer
// than radius to (x, y). Distances are plain Euclidean; agents across the wrap
// seam are not neighbours.
func (g *SpatialGrid) CountWithin(agents []Agent, x, y, radius float64, exclude int) int {
	if radius <= 0 {
		return 0
	}
	radiusSq := radius * radius

	c0, c1 := g.span(x, radius, g.cols)
	r0, r1 := g.span(y, radius, g.rows)

	n := 0
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			for _, idx := range g.cells[row*g.cols+col] {
				i := int(idx)
				if i != exclude && distanceSq(x, y, agents[i].X, agents[i].Y) < radiusSq {
					n++
				}
			}
		}
	}
	return n
}

// span returns the clamped range of cells overlapping [v-radius, v+radius].
func (g *SpatialGrid) span(v, radius float64, n int) (lo, hi int) {
	lo = clampCell(int(math.Floor((v-radius)/g.cellSize)), n)
	hi = clampCell(int(math.Floor((v+radius)/g.cellSize)), n)
	return lo, hi
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	col := clampCell(int(x/g.cellSize), g.cols)
	row := clampCell(int(y/g.cellSize), g.rows)
	return row*g.cols + col
}

func clampCell(c, n int) int {
	if c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}
