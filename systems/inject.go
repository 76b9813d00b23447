package systems

import (
	"github.com/go-gl/mathgl/mgl32"
)

// AddSmoke injects amount of smoke at a world position. Positions above the
// ceiling, outside the terrain, inside collision geometry or below the
// surface are ignored.
func (e *Engine) AddSmoke(pos mgl32.Vec3, amount float32) {
	if !e.enabled || amount == 0 || pos.Z() >= e.params.CeilingZ {
		return
	}
	c := e.grid.CellAt(pos)
	if c == nil {
		return
	}
	x, y := e.grid.XPos(pos.X()), e.grid.YPos(pos.Y())
	if e.mesh != nil {
		if e.mesh.OutsideMesh(x, y) || pos.Z() >= e.mesh.ColumnMaxHeight(x, y) || pos.Z() < e.mesh.MeshHeight(x, y) {
			return
		}
		if e.params.NoSmokeOverMesh && !e.mesh.MeshDisabled(x, y) {
			return
		}
	}
	c.Smoke = e.clamp(c.Smoke + e.params.Density*amount)

	if e.view != nil && e.view.SphereVisible(pos, e.pending.radius) {
		e.state.exists = true
	}
}

// DensityAt returns the simulated smoke density at a world position, or 0
// when there is no smoke there.
func (e *Engine) DensityAt(pos mgl32.Vec3) float32 {
	if !e.enabled || !e.state.exists {
		return 0
	}
	if pos.Z() <= e.params.FloorZ || pos.Z() >= e.params.CeilingZ {
		return 0
	}
	x, y, z := e.grid.Index(pos)
	if e.mesh != nil && e.mesh.OutsideMesh(x, y) {
		return 0
	}
	if z < 0 || z >= e.grid.D {
		return 0
	}
	col := e.grid.Column(x, y)
	if col == nil {
		return 0
	}
	return col[z].Smoke
}
