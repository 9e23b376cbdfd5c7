package game

import (
	"log/slog"

	"github.com/pthm-cable/slime/telemetry"
)

// flushTelemetry writes a stats window when one has elapsed.
func (g *Game) flushTelemetry() {
	tick := g.sim.Tick()
	if !g.collector.ShouldFlush(tick) {
		return
	}

	g.fieldBuf = g.sim.FieldSnapshot(g.fieldBuf)
	g.agentsBuf = g.sim.Agents(g.agentsBuf)

	stats := g.collector.Flush(tick, telemetry.Scene{
		Agents:    g.agentsBuf,
		Field:     g.fieldBuf,
		Obstacles: len(g.sim.Obstacles()),
		Food:      len(g.sim.Food()),
	})
	g.lastField = stats.FieldStats
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
