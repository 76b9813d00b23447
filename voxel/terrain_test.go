package voxel

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPermeateClosesCellsBelowSurface(t *testing.T) {
	g := NewGrid(2, 2, 4, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	hm := NewHeightmap(2, 2, 2, 4)
	hm.Height[1] = 0.5
	sky := [3]float32{0.2, 0.4, 0.6}

	Permeate(g, hm, sky)

	// Surface at 2: layers 0 and 1 lie fully below it
	for z := 0; z < 2; z++ {
		c := g.Cell(0, 0, z)
		if c.Flow != [3]uint8{} || c.Color != [3]float32{} {
			t.Errorf("layer %d below the surface: %+v", z, c)
		}
	}
	if c := g.Cell(0, 0, 2); c.Flow[AxisZ] != FlowOpen || c.Color != sky {
		t.Errorf("layer 2 above the surface: %+v", c)
	}
	// Surface at 0.5 cuts layer 0 partway, which stays open
	if c := g.Cell(1, 0, 0); c.Flow[AxisX] != FlowOpen {
		t.Errorf("partially covered cell should stay open: %+v", c)
	}
}

func TestGenerateHeightmapIsDeterministic(t *testing.T) {
	p := TerrainParams{Seed: 9, Scale: 0.1, Amplitude: 3, BaseHeight: 1, MaxZ: 10, Disabled: 0.25}
	a := GenerateHeightmap(16, 16, p)
	b := GenerateHeightmap(16, 16, p)

	var disabled int
	for i := range a.Height {
		if a.Height[i] != b.Height[i] || a.Disabled[i] != b.Disabled[i] {
			t.Fatalf("column %d differs between runs with the same seed", i)
		}
		if a.Height[i] < -2 || a.Height[i] > 4 {
			t.Errorf("height %v outside base +- amplitude", a.Height[i])
		}
		if a.MaxZ[i] != 10 {
			t.Errorf("max z = %v, want 10", a.MaxZ[i])
		}
		if a.Disabled[i] {
			disabled++
		}
	}
	if disabled == 0 || disabled == len(a.Disabled) {
		t.Errorf("expected some but not all columns disabled, got %d", disabled)
	}
}

func TestHeightmapOutsideMesh(t *testing.T) {
	hm := NewHeightmap(3, 2, 0, 1)
	if hm.OutsideMesh(2, 1) {
		t.Error("(2, 1) is inside a 3x2 mesh")
	}
	for _, p := range [][2]int{{-1, 0}, {3, 0}, {0, 2}} {
		if !hm.OutsideMesh(p[0], p[1]) {
			t.Errorf("%v should be outside the mesh", p)
		}
	}
}
