// Package voxel provides the lighting grid that smoke density is stored in,
// along with the terrain mesh queries the smoke systems consult.
package voxel

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Axis indices for per-axis cell data.
const (
	AxisX = 0
	AxisY = 1
	AxisZ = 2
)

// FlowOpen is the permeability of a face that lets smoke through unhindered.
const FlowOpen uint8 = 255

// Cell is one voxel of the lighting grid.
type Cell struct {
	Smoke float32
	// Flow is the permeability of the face between this cell and its +axis neighbor.
	Flow  [3]uint8
	Color [3]float32 // Baked indirect lighting, nominally [0,1]
}

// FinalColor returns the lighting color sampled by the renderer.
func (c *Cell) FinalColor() [3]float32 {
	return c.Color
}

// OutsideCell returns the cell used for absent columns.
func OutsideCell(color [3]float32) Cell {
	return Cell{
		Flow:  [3]uint8{FlowOpen, FlowOpen, FlowOpen},
		Color: color,
	}
}

// Grid is a column-major voxel grid. Columns may be absent (nil) where the
// lighting system has nothing to store, e.g. under solid ground.
type Grid struct {
	W, H, D int

	// Min is the world position of cell (0,0,0); Step is the size of one cell.
	Min  mgl32.Vec3
	Step mgl32.Vec3

	cols [][]Cell
}

// NewGrid allocates a grid with every column present.
func NewGrid(w, h, d int, min, step mgl32.Vec3) *Grid {
	g := NewSparseGrid(w, h, d, min, step)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.AllocColumn(x, y)
		}
	}
	return g
}

// NewSparseGrid creates a grid with no columns allocated.
func NewSparseGrid(w, h, d int, min, step mgl32.Vec3) *Grid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	if d <= 0 {
		d = 1
	}
	return &Grid{
		W: w, H: h, D: d,
		Min:  min,
		Step: step,
		cols: make([][]Cell, w*h),
	}
}

// Allocated reports whether the grid has backing storage.
func (g *Grid) Allocated() bool {
	return g != nil && g.cols != nil
}

// Size returns the grid dimensions.
func (g *Grid) Size() (w, h, d int) {
	return g.W, g.H, g.D
}

// Len returns the number of cells in the full (dense) grid.
func (g *Grid) Len() int {
	return g.W * g.H * g.D
}

// AllocColumn makes the column at (x, y) present and returns it.
func (g *Grid) AllocColumn(x, y int) []Cell {
	i := y*g.W + x
	if g.cols[i] == nil {
		col := make([]Cell, g.D)
		for z := range col {
			col[z].Flow = [3]uint8{FlowOpen, FlowOpen, FlowOpen}
		}
		g.cols[i] = col
	}
	return g.cols[i]
}

// FreeColumn removes the column at (x, y).
func (g *Grid) FreeColumn(x, y int) {
	g.cols[y*g.W+x] = nil
}

// Column returns the cells at (x, y), or nil if the column is absent or out of range.
func (g *Grid) Column(x, y int) []Cell {
	if x < 0 || y < 0 || x >= g.W || y >= g.H {
		return nil
	}
	return g.cols[y*g.W+x]
}

// IsValidCell reports whether (x, y, z) addresses a stored cell.
func (g *Grid) IsValidCell(x, y, z int) bool {
	if z < 0 || z >= g.D {
		return false
	}
	return g.Column(x, y) != nil
}

// Cell returns a mutable reference to a valid cell. Callers must check IsValidCell.
func (g *Grid) Cell(x, y, z int) *Cell {
	return &g.cols[y*g.W+x][z]
}

// CellAt returns the cell containing a world position, or nil.
func (g *Grid) CellAt(pos mgl32.Vec3) *Cell {
	x, y, z := g.Index(pos)
	if !g.IsValidCell(x, y, z) {
		return nil
	}
	return g.Cell(x, y, z)
}

// Index converts a world position to cell coordinates. Results may be out of range.
func (g *Grid) Index(pos mgl32.Vec3) (x, y, z int) {
	return g.XPos(pos.X()), g.YPos(pos.Y()), g.ZPos(pos.Z())
}

// XPos converts a world X coordinate to a column index.
func (g *Grid) XPos(v float32) int { return floorDiv(v-g.Min.X(), g.Step.X()) }

// YPos converts a world Y coordinate to a row index.
func (g *Grid) YPos(v float32) int { return floorDiv(v-g.Min.Y(), g.Step.Y()) }

// ZPos converts a world Z coordinate to a layer index.
func (g *Grid) ZPos(v float32) int { return floorDiv(v-g.Min.Z(), g.Step.Z()) }

// ZVal returns the world height of the bottom of layer z.
func (g *Grid) ZVal(z int) float32 { return g.Min.Z() + float32(z)*g.Step.Z() }

// Pos returns the world position of the minimum corner of cell (x, y, z).
func (g *Grid) Pos(x, y, z int) mgl32.Vec3 {
	return mgl32.Vec3{
		g.Min.X() + float32(x)*g.Step.X(),
		g.Min.Y() + float32(y)*g.Step.Y(),
		g.Min.Z() + float32(z)*g.Step.Z(),
	}
}

// Extent returns the largest absolute world coordinate per axis covered by the grid.
func (g *Grid) Extent() mgl32.Vec3 {
	var e mgl32.Vec3
	for i := 0; i < 3; i++ {
		lo := g.Min[i]
		hi := lo + g.Step[i]*float32(g.dim(i))
		e[i] = max(absf(lo), absf(hi))
	}
	return e
}

// ClearSmoke zeroes density in every stored cell.
func (g *Grid) ClearSmoke() {
	for _, col := range g.cols {
		for z := range col {
			col[z].Smoke = 0
		}
	}
}

// Densities appends the density of every stored cell to dst.
func (g *Grid) Densities(dst []float64) []float64 {
	for _, col := range g.cols {
		for z := range col {
			dst = append(dst, float64(col[z].Smoke))
		}
	}
	return dst
}

func (g *Grid) dim(axis int) int {
	switch axis {
	case AxisX:
		return g.W
	case AxisY:
		return g.H
	}
	return g.D
}

func floorDiv(v, step float32) int {
	q := v / step
	i := int(q)
	if float32(i) > q {
		i--
	}
	return i
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
