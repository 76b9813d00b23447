package voxel

import (
	"math/rand"

	"github.com/ojrac/opensimplex-go"
)

// Mesh answers per-column terrain queries.
type Mesh interface {
	OutsideMesh(x, y int) bool
	MeshHeight(x, y int) float32
	MeshDisabled(x, y int) bool
	// ColumnMaxHeight is the top of the highest collision object in the column.
	ColumnMaxHeight(x, y int) float32
}

// Heightmap is a Mesh backed by per-column arrays.
type Heightmap struct {
	W, H int

	Height   []float32
	MaxZ     []float32
	Disabled []bool
}

// NewHeightmap creates a flat heightmap at the given height with collision tops at maxZ.
func NewHeightmap(w, h int, height, maxZ float32) *Heightmap {
	hm := &Heightmap{
		W: w, H: h,
		Height:   make([]float32, w*h),
		MaxZ:     make([]float32, w*h),
		Disabled: make([]bool, w*h),
	}
	for i := range hm.Height {
		hm.Height[i] = height
		hm.MaxZ[i] = maxZ
	}
	return hm
}

// TerrainParams controls procedural heightmap generation.
type TerrainParams struct {
	Seed       int64
	Scale      float64 // Noise frequency in cells
	Amplitude  float64
	BaseHeight float64
	MaxZ       float32 // Collision top for every column
	Disabled   float64 // Fraction of columns with the mesh disabled
}

// GenerateHeightmap builds rolling terrain from simplex noise.
func GenerateHeightmap(w, h int, p TerrainParams) *Heightmap {
	hm := NewHeightmap(w, h, float32(p.BaseHeight), p.MaxZ)
	noise := opensimplex.New(p.Seed)
	rng := rand.New(rand.NewSource(p.Seed))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			n := noise.Eval2(float64(x)*p.Scale, float64(y)*p.Scale)
			hm.Height[i] = float32(p.BaseHeight + n*p.Amplitude)
			hm.Disabled[i] = p.Disabled > 0 && rng.Float64() < p.Disabled
		}
	}
	return hm
}

// OutsideMesh reports whether (x, y) is outside the terrain.
func (hm *Heightmap) OutsideMesh(x, y int) bool {
	return x < 0 || y < 0 || x >= hm.W || y >= hm.H
}

// MeshHeight returns the terrain surface height at (x, y).
func (hm *Heightmap) MeshHeight(x, y int) float32 {
	return hm.Height[y*hm.W+x]
}

// MeshDisabled reports whether the terrain surface is disabled at (x, y).
func (hm *Heightmap) MeshDisabled(x, y int) bool {
	return hm.Disabled[y*hm.W+x]
}

// ColumnMaxHeight returns the collision top at (x, y).
func (hm *Heightmap) ColumnMaxHeight(x, y int) float32 {
	return hm.MaxZ[y*hm.W+x]
}

// Permeate closes flow out of cells that lie fully below the terrain surface
// and bakes a flat sky color into the cells above it.
func Permeate(g *Grid, m Mesh, sky [3]float32) {
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			col := g.Column(x, y)
			if col == nil {
				continue
			}
			surface := m.MeshHeight(x, y)
			for z := range col {
				if g.ZVal(z+1) <= surface {
					col[z].Flow = [3]uint8{}
					col[z].Color = [3]float32{}
					continue
				}
				col[z].Color = sky
			}
		}
	}
}
