package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int64 `csv:"-"`
	WindowEndTick   int64 `csv:"window_end"`
	Ticks           int   `csv:"ticks"`

	// Scene at window end
	Agents    int `csv:"agents"`
	Obstacles int `csv:"obstacles"`
	Food      int `csv:"food"`

	// Host edits during the window
	ObstaclesAdded int `csv:"obstacles_added"`
	FoodAdded      int `csv:"food_added"`

	// Pheromone field at window end
	FieldStats

	// Food affinity distribution at window end
	AffinityMean float64 `csv:"affinity_mean"`
	AffinityMax  float64 `csv:"affinity_max"`
	Feeding      int     `csv:"feeding"` // agents with positive affinity
}

// FieldStats summarises one pheromone field snapshot.
type FieldStats struct {
	Total    float64 `csv:"field_total"`
	Mean     float64 `csv:"field_mean"`
	Std      float64 `csv:"field_std"`
	Max      float64 `csv:"field_max"`
	P50      float64 `csv:"field_p50"`
	P90      float64 `csv:"field_p90"`
	P99      float64 `csv:"field_p99"`
	Coverage float64 `csv:"coverage"` // fraction of cells at or above the threshold
}

// Percentile returns the p-th percentile of a sorted slice using linear
// interpolation between closest ranks. p is clamped to [0, 1]; an empty
// slice yields 0.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeFieldStats summarises cells. scratch is reused for sorting and
// returned so callers can keep it between windows.
func ComputeFieldStats(cells []float64, coverageThreshold float64, scratch []float64) (FieldStats, []float64) {
	if len(cells) == 0 {
		return FieldStats{}, scratch
	}

	sorted := append(scratch[:0], cells...)
	sort.Float64s(sorted)

	var fs FieldStats
	fs.Total = floats.Sum(sorted)
	fs.Mean, fs.Std = stat.PopMeanStdDev(sorted, nil)
	fs.Max = sorted[len(sorted)-1]
	fs.P50 = Percentile(sorted, 0.50)
	fs.P90 = Percentile(sorted, 0.90)
	fs.P99 = Percentile(sorted, 0.99)

	// First cell at or above the threshold
	covered := len(sorted) - sort.SearchFloat64s(sorted, coverageThreshold)
	fs.Coverage = float64(covered) / float64(len(sorted))

	return fs, sorted
}

// ComputeAffinityStats returns mean and max affinity and the number of
// agents with positive affinity.
func ComputeAffinityStats(values []float64) (mean, maxVal float64, feeding int) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	mean = stat.Mean(values, nil)
	maxVal = floats.Max(values)
	for _, v := range values {
		if v > 0 {
			feeding++
		}
	}
	return mean, maxVal, feeding
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Int("agents", s.Agents),
		slog.Int("obstacles", s.Obstacles),
		slog.Int("food", s.Food),
		slog.Float64("field_total", s.Total),
		slog.Float64("field_max", s.Max),
		slog.Float64("field_p90", s.P90),
		slog.Float64("coverage", s.Coverage),
		slog.Float64("affinity_mean", s.AffinityMean),
		slog.Int("feeding", s.Feeding),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"ticks", s.Ticks,
		"agents", s.Agents,
		"obstacles", s.Obstacles,
		"food", s.Food,
		"obstacles_added", s.ObstaclesAdded,
		"food_added", s.FoodAdded,
		"field_total", s.Total,
		"field_mean", s.Mean,
		"field_std", s.Std,
		"field_max", s.Max,
		"field_p50", s.P50,
		"field_p90", s.P90,
		"field_p99", s.P99,
		"coverage", s.Coverage,
		"affinity_mean", s.AffinityMean,
		"affinity_max", s.AffinityMax,
		"feeding", s.Feeding,
	)
}
