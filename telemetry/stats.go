// Package telemetry collects per-cycle smoke statistics and tick timings and
// writes them to CSV.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/voxsmoke/systems"
)

// CycleStats summarizes the grid at the end of one diffusion pass.
type CycleStats struct {
	Cycle int   `csv:"cycle"`
	Tick  int32 `csv:"tick"`

	// From the committed visibility summary
	TotalDensity float64 `csv:"total_density"`
	Enabled      bool    `csv:"enabled"`
	Visible      bool    `csv:"visible"`
	BBoxMinX     float32 `csv:"bbox_min_x"`
	BBoxMinY     float32 `csv:"bbox_min_y"`
	BBoxMinZ     float32 `csv:"bbox_min_z"`
	BBoxMaxX     float32 `csv:"bbox_max_x"`
	BBoxMaxY     float32 `csv:"bbox_max_y"`
	BBoxMaxZ     float32 `csv:"bbox_max_z"`

	// Distribution over cells holding smoke
	ActiveCells int     `csv:"active_cells"`
	Mean        float64 `csv:"mean"`
	Std         float64 `csv:"std"`
	P50         float64 `csv:"p50"`
	P90         float64 `csv:"p90"`
	Max         float64 `csv:"max"`
}

// ComputeCycleStats builds the stats for a committed pass. densities holds one
// value per stored cell; zeros are ignored for the distribution.
func ComputeCycleStats(cycle int, tick int32, sum systems.Summary, densities []float64) CycleStats {
	s := CycleStats{
		Cycle:        cycle,
		Tick:         tick,
		TotalDensity: float64(sum.Total),
		Enabled:      sum.Enabled,
		Visible:      sum.Visible,
	}
	if !sum.BBox.Empty() {
		s.BBoxMinX, s.BBoxMinY, s.BBoxMinZ = sum.BBox.Min.Elem()
		s.BBoxMaxX, s.BBoxMaxY, s.BBoxMaxZ = sum.BBox.Max.Elem()
	}

	active := make([]float64, 0, len(densities)/8)
	for _, d := range densities {
		if d > 0 {
			active = append(active, d)
		}
	}
	s.ActiveCells = len(active)
	if len(active) == 0 {
		return s
	}

	s.Mean, s.Std = stat.PopMeanStdDev(active, nil)
	s.Max = floats.Max(active)

	sort.Float64s(active)
	s.P50 = stat.Quantile(0.5, stat.Empirical, active, nil)
	s.P90 = stat.Quantile(0.9, stat.Empirical, active, nil)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s CycleStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("cycle", s.Cycle),
		slog.Int("tick", int(s.Tick)),
		slog.Float64("total_density", s.TotalDensity),
		slog.Bool("enabled", s.Enabled),
		slog.Bool("visible", s.Visible),
		slog.Int("active_cells", s.ActiveCells),
		slog.Float64("mean", s.Mean),
		slog.Float64("max", s.Max),
	)
}

// LogStats logs the cycle stats using slog.
func (s CycleStats) LogStats() {
	slog.Info("cycle", "stats", s)
}
