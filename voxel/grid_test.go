package voxel

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func newTestGrid() *Grid {
	return NewGrid(4, 3, 2, mgl32.Vec3{-2, -1.5, 0}, mgl32.Vec3{1, 1, 0.5})
}

func TestGridIndexing(t *testing.T) {
	g := newTestGrid()

	x, y, z := g.Index(mgl32.Vec3{-1.5, 0.2, 0.7})
	if x != 0 || y != 1 || z != 1 {
		t.Errorf("Index = (%d, %d, %d), want (0, 1, 1)", x, y, z)
	}
	// Negative offsets floor rather than truncate toward zero
	if x := g.XPos(-2.5); x != -1 {
		t.Errorf("XPos(-2.5) = %d, want -1", x)
	}
	if c := g.CellAt(mgl32.Vec3{5, 0, 0}); c != nil {
		t.Error("position outside the grid should have no cell")
	}
	if got := g.ZVal(2); got != 1 {
		t.Errorf("ZVal(2) = %v, want 1", got)
	}
	if p := g.Pos(1, 2, 1); p != (mgl32.Vec3{-1, 0.5, 0.5}) {
		t.Errorf("Pos(1,2,1) = %v", p)
	}
}

func TestGridExtent(t *testing.T) {
	g := newTestGrid()
	if e := g.Extent(); e != (mgl32.Vec3{2, 1.5, 1}) {
		t.Errorf("Extent = %v, want (2, 1.5, 1)", e)
	}
}

func TestSparseColumns(t *testing.T) {
	g := NewSparseGrid(3, 3, 2, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	if g.IsValidCell(1, 1, 0) {
		t.Error("sparse grid should start without columns")
	}

	col := g.AllocColumn(1, 1)
	if len(col) != 2 || col[0].Flow != [3]uint8{FlowOpen, FlowOpen, FlowOpen} {
		t.Errorf("new column should be open, got %+v", col)
	}
	if !g.IsValidCell(1, 1, 1) || g.IsValidCell(1, 1, 2) {
		t.Error("allocated column should hold exactly D layers")
	}

	g.Cell(1, 1, 0).Smoke = 3
	if got := len(g.Densities(nil)); got != 2 {
		t.Errorf("Densities returned %d values, want 2", got)
	}

	g.FreeColumn(1, 1)
	if g.Column(1, 1) != nil {
		t.Error("freed column should be absent")
	}
}

func TestClearSmoke(t *testing.T) {
	g := newTestGrid()
	g.Cell(0, 0, 0).Smoke = 1
	g.Cell(3, 2, 1).Smoke = 2
	g.ClearSmoke()
	for _, d := range g.Densities(nil) {
		if d != 0 {
			t.Fatalf("found density %v after clear", d)
		}
	}
}
