package renderer

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/voxsmoke/config"
	"github.com/pthm-cable/voxsmoke/systems"
	"github.com/pthm-cable/voxsmoke/voxel"
)

// Channels per texel: RGB indirect lighting, A smoke density.
const Channels = 4

// Lighting is the global light state that feeds the smoke texture.
type Lighting struct {
	Ambient mgl32.Vec4
	Diffuse mgl32.Vec4

	// IndirectUpdated is set by the lighting system when baked cell colors
	// changed; the next upload refreshes RGB and clears it.
	IndirectUpdated bool
}

// TextureParams controls how the smoke texture is packed.
type TextureParams struct {
	Bands        int     // Partial uploads per full refresh; must divide the grid height
	Bilinear     bool
	MeshVisible  bool    // Zero lighting below the terrain surface
	FloorZ       float32 // Lighting threshold where the mesh is hidden or disabled
	AlphaScale   float32 // Density to alpha scale (1 / max cell density)
	OutsideColor [3]float32
}

// TextureParamsFromConfig builds TextureParams from the loaded configuration.
func TextureParamsFromConfig(cfg *config.Config) TextureParams {
	oc := cfg.Texture.OutsideColor
	return TextureParams{
		Bands:        cfg.Texture.Bands,
		Bilinear:     cfg.Texture.Bilinear,
		MeshVisible:  cfg.Texture.MeshVisible,
		FloorZ:       float32(cfg.Grid.FloorZ),
		AlphaScale:   cfg.Derived.AlphaScale,
		OutsideColor: [3]float32{float32(oc[0]), float32(oc[1]), float32(oc[2])},
	}
}

// SmokeTexture mirrors grid lighting and smoke density into a packed RGBA
// volume and keeps a GPU copy of it in sync. Outside of full refreshes only
// one band of rows is repacked and sent per call.
type SmokeTexture struct {
	grid  *voxel.Grid
	mesh  voxel.Mesh
	state systems.SmokeState
	gpu   VolumeTextures

	params  TextureParams
	enabled bool

	data []byte
	tex  TextureID
	band systems.Cycler

	lastAmbient mgl32.Vec4
	lastDiffuse mgl32.Vec4
}

// NewSmokeTexture creates a streamer for grid. Panics if the band count does
// not divide the grid height.
func NewSmokeTexture(grid *voxel.Grid, mesh voxel.Mesh, state systems.SmokeState, gpu VolumeTextures, params TextureParams) *SmokeTexture {
	if params.Bands <= 0 || grid.H%params.Bands != 0 {
		panic(fmt.Sprintf("renderer: %d bands do not divide grid height %d", params.Bands, grid.H))
	}
	return &SmokeTexture{
		grid:    grid,
		mesh:    mesh,
		state:   state,
		gpu:     gpu,
		params:  params,
		enabled: true,
		band:    systems.NewCycler(params.Bands),
	}
}

// SetEnabled turns uploads on or off (off when shading is disabled).
func (s *SmokeTexture) SetEnabled(on bool) { s.enabled = on }

// Texture returns the GPU texture, or 0 before the first upload.
func (s *SmokeTexture) Texture() TextureID { return s.tex }

// Band returns the band the next partial upload will process.
func (s *SmokeTexture) Band() int { return s.band.Pos() }

// Data returns the packed texel buffer.
func (s *SmokeTexture) Data() []byte { return s.data }

// Upload repacks and sends the next part of the smoke texture. It returns
// false when nothing was uploaded.
func (s *SmokeTexture) Upload(light *Lighting) bool {
	if !s.enabled || !s.grid.Allocated() {
		return false
	}
	w, h, d := s.grid.Size()
	if h%s.band.Len() != 0 {
		panic(fmt.Sprintf("renderer: %d bands do not divide grid height %d", s.band.Len(), h))
	}
	size := w * h * d * Channels
	if size == 0 {
		return false
	}

	var initCall bool
	if s.data == nil {
		s.gpu.FreeTexture(s.tex)
		s.tex = 0
		s.data = make([]byte, size)
		initCall = true
	} else {
		if len(s.data) != size {
			panic(fmt.Sprintf("renderer: smoke texture buffer is %d bytes, grid needs %d", len(s.data), size))
		}
		initCall = s.tex == 0
	}

	full := initCall || light.Ambient != s.lastAmbient || light.Diffuse != s.lastDiffuse
	s.lastAmbient = light.Ambient
	s.lastDiffuse = light.Diffuse

	// A little smoke may linger in the grid after smoke_exists drops; it is
	// left in the texture until the next band refresh that has a reason to run.
	if !full && !s.state.SmokeExists() && !light.IndirectUpdated {
		return false
	}

	bandRows := h / s.band.Len()
	yStart, yEnd := 0, h
	if !full {
		yStart = s.band.Pos() * bandRows
		yEnd = yStart + bandRows
	}
	s.pack(yStart, yEnd, full, full || light.IndirectUpdated)

	if initCall {
		slog.Info("smoke texture allocated",
			"depth", d, "width", w, "height", h, "bytes", size)
		s.tex = s.gpu.CreateVolume(Extent{d, w, h}, Channels, s.data, s.params.Bilinear)
	} else {
		rows := bandRows
		if full {
			rows = h
		}
		off := yStart * w * d * Channels
		s.gpu.UpdateVolumeRegion(s.tex, Extent{0, 0, yStart}, Extent{d, w, rows}, Channels, s.data[off:])
	}

	if !full {
		s.band.Advance()
	}
	light.IndirectUpdated = false
	return true
}

// pack fills rows [yStart, yEnd) of the buffer. Alpha is always refreshed;
// RGB only when lighting is.
func (s *SmokeTexture) pack(yStart, yEnd int, full, lighting bool) {
	w, _, d := s.grid.Size()
	outside := voxel.OutsideCell(s.params.OutsideColor)

	for y := yStart; y < yEnd; y++ {
		for x := 0; x < w; x++ {
			col := s.grid.Column(x, y)
			if col == nil && !full {
				continue
			}
			off := d * (y*w + x)
			zthresh := s.lightThreshold(x, y)

			for z := 0; z < d; z++ {
				o := Channels * (off + z)
				c := &outside
				if col != nil {
					c = &col[z]
				}
				if lighting {
					// Top of the cell, since the GPU interpolates between texels
					if s.grid.ZVal(z+1) < zthresh {
						s.data[o], s.data[o+1], s.data[o+2] = 0, 0, 0
					} else {
						rgb := c.FinalColor()
						s.data[o] = unitToByte(rgb[0])
						s.data[o+1] = unitToByte(rgb[1])
						s.data[o+2] = unitToByte(rgb[2])
					}
				}
				s.data[o+3] = unitToByte(s.params.AlphaScale * c.Smoke)
			}
		}
	}
}

// lightThreshold is the height below which lighting is zeroed in column (x, y).
// Columns with a disabled mesh fall back to the global floor, which can leave
// residual smoke visible next to them.
func (s *SmokeTexture) lightThreshold(x, y int) float32 {
	if !s.params.MeshVisible || s.mesh == nil || s.mesh.OutsideMesh(x, y) || s.mesh.MeshDisabled(x, y) {
		return s.params.FloorZ
	}
	return s.mesh.MeshHeight(x, y)
}

// Reset drops the packed buffer; the next upload reallocates it and recreates
// the texture.
func (s *SmokeTexture) Reset() {
	s.data = nil
}

// Reconfigure switches to a new grid, releasing the texture and buffer.
func (s *SmokeTexture) Reconfigure(grid *voxel.Grid, mesh voxel.Mesh) {
	if params := s.params; params.Bands <= 0 || grid.H%params.Bands != 0 {
		panic(fmt.Sprintf("renderer: %d bands do not divide grid height %d", params.Bands, grid.H))
	}
	s.Unload()
	s.grid = grid
	s.mesh = mesh
	s.data = nil
	s.band.Reset()
}

// Unload frees the GPU texture.
func (s *SmokeTexture) Unload() {
	if s.tex == 0 {
		return
	}
	s.gpu.FreeTexture(s.tex)
	s.tex = 0
}

func unitToByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(255 * v)
}
