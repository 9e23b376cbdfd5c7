package telemetry

import "github.com/pthm-cable/slime/systems"

// Collector accumulates host events within tick windows and produces
// WindowStats.
type Collector struct {
	windowTicks       int64
	coverageThreshold float64

	// Current window tracking
	windowStartTick int64
	obstaclesAdded  int
	foodAdded       int

	// Reused between flushes
	sortScratch []float64
	affinities  []float64
}

// NewCollector creates a collector that flushes every windowTicks ticks.
func NewCollector(windowTicks int, coverageThreshold float64) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowTicks:       int64(windowTicks),
		coverageThreshold: coverageThreshold,
	}
}

// RecordObstacle records an obstacle added by the host.
func (c *Collector) RecordObstacle() {
	c.obstaclesAdded++
}

// RecordFood records a food source added by the host.
func (c *Collector) RecordFood() {
	c.foodAdded++
}

// ShouldFlush reports whether a full window has elapsed.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Scene is the simulation state sampled at the end of a window.
type Scene struct {
	Agents    []systems.Agent
	Field     []float64
	Obstacles int
	Food      int
}

// Flush produces a WindowStats for the window ending at currentTick and
// resets the counters for the next window.
func (c *Collector) Flush(currentTick int64, scene Scene) WindowStats {
	c.affinities = c.affinities[:0]
	for i := range scene.Agents {
		c.affinities = append(c.affinities, scene.Agents[i].Affinity)
	}

	var fs FieldStats
	fs, c.sortScratch = ComputeFieldStats(scene.Field, c.coverageThreshold, c.sortScratch)
	affMean, affMax, feeding := ComputeAffinityStats(c.affinities)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		Ticks:           int(currentTick - c.windowStartTick),

		Agents:    len(scene.Agents),
		Obstacles: scene.Obstacles,
		Food:      scene.Food,

		ObstaclesAdded: c.obstaclesAdded,
		FoodAdded:      c.foodAdded,

		FieldStats: fs,

		AffinityMean: affMean,
		AffinityMax:  affMax,
		Feeding:      feeding,
	}

	c.windowStartTick = currentTick
	c.obstaclesAdded = 0
	c.foodAdded = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowTicks
}
