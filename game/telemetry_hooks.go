package game

import (
	"log/slog"

	"github.com/pthm-cable/voxsmoke/telemetry"
)

// recordCycle computes stats for the pass the engine just committed and
// writes every Nth one out.
func (g *Game) recordCycle() {
	cycle := g.engine.Cycles()
	if g.cycleLogging <= 0 || cycle%g.cycleLogging != 0 {
		return
	}

	g.densities = g.grid.Densities(g.densities[:0])
	stats := telemetry.ComputeCycleStats(cycle, g.tick, g.engine.Committed(), g.densities)
	g.lastCycle = stats

	if g.cycleCallback != nil {
		g.cycleCallback(stats)
	}
	if g.logStats {
		stats.LogStats()
	}
	if err := g.outputManager.WriteCycle(stats); err != nil {
		slog.Error("failed to write cycle", "error", err)
	}
}

// flushPerf logs and writes perf stats once per log interval.
func (g *Game) flushPerf() {
	if g.paused || g.logInterval <= 0 || g.tick == 0 || g.tick%g.logInterval != 0 {
		return
	}

	stats := g.perfCollector.Stats()
	if g.logStats {
		stats.LogStats()
	}
	if err := g.outputManager.WritePerf(stats, g.tick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
