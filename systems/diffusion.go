package systems

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/voxsmoke/config"
	"github.com/pthm-cable/voxsmoke/voxel"
)

// SmokeParams holds the diffusion constants.
type SmokeParams struct {
	Stride     int     // Row stride; a full pass takes Stride ticks
	Density    float32 // Scale applied to injected amounts
	MaxValue   float32 // Per-cell density ceiling
	RateXY     float32 // Horizontal rate, already scaled by Stride
	RateUp     float32 // Vertical rate for smoke moving up
	RateDown   float32 // Vertical rate for smoke moving down
	FloorValue float32 // Densities below this snap to zero

	CeilingZ        float32 // No smoke at or above this height
	FloorZ          float32 // No sampled smoke at or below this height
	NoSmokeOverMesh bool
}

// ParamsFromConfig builds SmokeParams from the loaded configuration.
func ParamsFromConfig(cfg *config.Config) SmokeParams {
	return SmokeParams{
		Stride:          cfg.Smoke.Stride,
		Density:         float32(cfg.Smoke.Density),
		MaxValue:        cfg.Derived.MaxValue,
		RateXY:          cfg.Derived.RateXY,
		RateUp:          cfg.Derived.RateUp,
		RateDown:        cfg.Derived.RateDown,
		FloorValue:      cfg.Derived.FloorValue,
		CeilingZ:        float32(cfg.Grid.CeilingZ),
		FloorZ:          float32(cfg.Grid.FloorZ),
		NoSmokeOverMesh: cfg.Grid.NoSmokeOverMesh,
	}
}

// Engine advances smoke density through the voxel grid. Each Tick processes
// every Stride-th row, so one full pass over the grid is spread across Stride
// ticks. At the end of each pass the pending summary is committed to State.
type Engine struct {
	grid  *voxel.Grid
	mesh  voxel.Mesh
	view  Visibility
	coin  CoinFlipper
	state *State

	params  SmokeParams
	enabled bool
	animate bool

	phase     Cycler
	pending   Summary
	committed Summary
	margin    mgl32.Vec3
	cycles    int
}

// NewEngine creates a diffusion engine over grid. view decides smoke
// visibility and coin picks the per-cell neighbor order.
func NewEngine(grid *voxel.Grid, mesh voxel.Mesh, view Visibility, coin CoinFlipper, params SmokeParams) *Engine {
	e := &Engine{
		grid:    grid,
		mesh:    mesh,
		view:    view,
		coin:    coin,
		state:   &State{},
		params:  params,
		enabled: true,
		animate: true,
		phase:   NewCycler(params.Stride),
		margin:  grid.Step,
	}
	extent := grid.Extent()
	e.state.bbox = EmptyBBox(extent)
	e.pending = NewSummary(extent, 0.5*grid.Step.X(), view, &e.state.bbox)
	e.committed = e.pending
	return e
}

// State returns the shared smoke flags.
func (e *Engine) State() *State { return e.state }

// Pending returns the summary being accumulated by the current pass.
func (e *Engine) Pending() Summary { return e.pending }

// Committed returns the summary of the last finished pass.
func (e *Engine) Committed() Summary { return e.committed }

// Phase returns the row phase the next tick will process.
func (e *Engine) Phase() int { return e.phase.Pos() }

// Cycles returns the number of completed passes.
func (e *Engine) Cycles() int { return e.cycles }

// SetEnabled turns the whole smoke feature on or off.
func (e *Engine) SetEnabled(on bool) { e.enabled = on }

// SetAnimate pauses (false) or resumes (true) the simulation.
func (e *Engine) SetAnimate(on bool) { e.animate = on }

// Animating reports whether the simulation is running.
func (e *Engine) Animating() bool { return e.animate }

// Clear removes all smoke and restarts the pass from row phase 0.
func (e *Engine) Clear() {
	e.grid.ClearSmoke()
	e.pending.Reset()
	e.committed = e.pending
	e.state.exists = false
	e.state.visible = false
	e.state.bbox = EmptyBBox(e.grid.Extent())
	e.phase.Reset()
}

// Tick runs one slice of the diffusion pass. It returns true when the tick
// completed a pass and a new summary was committed.
func (e *Engine) Tick() bool {
	if !e.enabled || !e.state.exists || !e.animate {
		return false
	}

	w, h, d := e.grid.Size()
	for y := e.phase.Pos(); y < h; y += e.params.Stride {
		for x := 0; x < w; x++ {
			if e.grid.Column(x, y) == nil {
				continue
			}
			for z := 0; z < d; z++ {
				e.distribute(x, y, z)
			}
		}
	}

	if !e.phase.Advance() {
		return false
	}
	e.commit()
	return true
}

// commit promotes the pending summary. The box is grown by one cell since the
// stride leaves unsampled rows next to its edges that may hold smoke.
func (e *Engine) commit() {
	e.committed = e.pending
	e.committed.Expand(e.margin)
	e.state.commit(&e.committed)
	e.pending.Reset()
	e.cycles++
}

// distribute spreads the smoke of one cell into its six face neighbors.
func (e *Engine) distribute(x, y, z int) {
	if !e.grid.IsValidCell(x, y, z) {
		return
	}
	c := e.grid.Cell(x, y, z)
	if c.Smoke == 0 {
		return
	}
	e.pending.RecordCell(e.grid.Pos(x, y, z), c.Smoke)
	if c.Smoke < e.params.FloorValue {
		c.Smoke = 0
		return
	}

	dx, dy := e.coin.Bool(), e.coin.Bool()
	xy := e.params.RateXY

	for _, d := range [2]bool{false, true} {
		fx, fy := d != dx, d != dy
		e.exchange(c, x+step(fx), y, z, xy, xy, voxel.AxisX, fx)
		e.exchange(c, x, y+step(fy), z, xy, xy, voxel.AxisY, fy)
	}
	e.exchange(c, x, y, z+1, e.params.RateUp, e.params.RateDown, voxel.AxisZ, true)
	e.exchange(c, x, y, z-1, e.params.RateDown, e.params.RateUp, voxel.AxisZ, false)
}

// exchange moves smoke between src and the neighbor at (x, y, z) along axis.
// pos is the rate used when smoke leaves src, neg when it enters src. forward
// is true when the neighbor lies in the +axis direction. It returns the change
// applied to src.
func (e *Engine) exchange(src *voxel.Cell, x, y, z int, pos, neg float32, axis int, forward bool) float32 {
	var delta float32
	if e.grid.IsValidCell(x, y, z) {
		nb := e.grid.Cell(x, y, z)
		flow := nb.Flow[axis]
		if forward {
			flow = src.Flow[axis]
		}
		if flow == 0 {
			return 0
		}
		before := nb.Smoke
		delta = float32(flow) / 255 * (src.Smoke - before)
		if delta < 0 {
			delta *= neg
		} else {
			delta *= pos
		}
		nb.Smoke = e.clamp(before + delta)
		delta = nb.Smoke - before
	} else {
		// Outside the grid is an infinite sink holding no smoke
		delta = 0.5 * (pos + neg)
	}
	before := src.Smoke
	src.Smoke = e.clamp(before - delta)
	return src.Smoke - before
}

func (e *Engine) clamp(v float32) float32 {
	return max(0, min(e.params.MaxValue, v))
}

func step(forward bool) int {
	if forward {
		return 1
	}
	return -1
}
