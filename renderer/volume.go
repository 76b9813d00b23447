package renderer

import (
	"fmt"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// TextureID identifies a GPU texture. Zero means no texture.
type TextureID uint32

// Extent gives texel counts along the fastest, middle and slowest memory axes
// of a packed volume.
type Extent [3]int

// VolumeTextures creates and updates 3D textures on the GPU.
type VolumeTextures interface {
	CreateVolume(size Extent, channels int, data []byte, bilinear bool) TextureID
	UpdateVolumeRegion(id TextureID, offset, size Extent, channels int, data []byte)
	FreeTexture(id TextureID)
}

// RaylibVolumes stores volumes as 2D atlas textures, since raylib has no 3D
// textures. The two fastest axes are laid out along a texture row and the
// slowest axis picks the row, so slab updates map to row rectangles.
type RaylibVolumes struct {
	textures map[TextureID]rl.Texture2D
	sizes    map[TextureID]Extent
	scratch  []color.RGBA
}

// NewRaylibVolumes creates the raylib backend (must be used after the raylib window is created).
func NewRaylibVolumes() *RaylibVolumes {
	return &RaylibVolumes{
		textures: make(map[TextureID]rl.Texture2D),
		sizes:    make(map[TextureID]Extent),
	}
}

// CreateVolume uploads a full RGBA volume and returns its texture.
func (r *RaylibVolumes) CreateVolume(size Extent, channels int, data []byte, bilinear bool) TextureID {
	if channels != 4 {
		panic(fmt.Sprintf("renderer: raylib volumes need 4 channels, got %d", channels))
	}
	w, h := size[0]*size[1], size[2]

	img := rl.GenImageColor(w, h, rl.Blank)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)

	if bilinear {
		rl.SetTextureFilter(tex, rl.FilterBilinear)
	} else {
		rl.SetTextureFilter(tex, rl.FilterPoint)
	}
	rl.UpdateTexture(tex, r.pixels(data))

	id := TextureID(tex.ID)
	r.textures[id] = tex
	r.sizes[id] = size
	return id
}

// UpdateVolumeRegion replaces whole slabs along the slowest axis.
func (r *RaylibVolumes) UpdateVolumeRegion(id TextureID, offset, size Extent, channels int, data []byte) {
	tex, ok := r.textures[id]
	if !ok {
		return
	}
	full := r.sizes[id]
	if offset[0] != 0 || offset[1] != 0 || size[0] != full[0] || size[1] != full[1] {
		panic(fmt.Sprintf("renderer: partial-row volume update %v+%v not supported", offset, size))
	}
	n := size[0] * size[1] * size[2] * channels
	rec := rl.Rectangle{
		X:      0,
		Y:      float32(offset[2]),
		Width:  float32(size[0] * size[1]),
		Height: float32(size[2]),
	}
	rl.UpdateTextureRec(tex, rec, r.pixels(data[:n]))
}

// FreeTexture releases a texture. Unknown ids are ignored.
func (r *RaylibVolumes) FreeTexture(id TextureID) {
	tex, ok := r.textures[id]
	if !ok {
		return
	}
	rl.UnloadTexture(tex)
	delete(r.textures, id)
	delete(r.sizes, id)
}

// Texture returns the raylib texture behind id for drawing.
func (r *RaylibVolumes) Texture(id TextureID) (rl.Texture2D, bool) {
	tex, ok := r.textures[id]
	return tex, ok
}

// pixels converts packed RGBA bytes into the reusable scratch buffer.
func (r *RaylibVolumes) pixels(data []byte) []color.RGBA {
	n := len(data) / 4
	if cap(r.scratch) < n {
		r.scratch = make([]color.RGBA, n)
	}
	px := r.scratch[:n]
	for i := range px {
		o := i * 4
		px[i] = color.RGBA{R: data[o], G: data[o+1], B: data[o+2], A: data[o+3]}
	}
	return px
}

// MemoryVolumes keeps volumes in host memory. Headless runs use it in place
// of a GPU.
type MemoryVolumes struct {
	volumes map[TextureID][]byte
	sizes   map[TextureID]Extent
	nextID  TextureID

	Creates int
	Updates int
}

// NewMemoryVolumes creates an empty in-memory backend.
func NewMemoryVolumes() *MemoryVolumes {
	return &MemoryVolumes{
		volumes: make(map[TextureID][]byte),
		sizes:   make(map[TextureID]Extent),
	}
}

// CreateVolume copies data into a new volume.
func (m *MemoryVolumes) CreateVolume(size Extent, channels int, data []byte, bilinear bool) TextureID {
	m.nextID++
	n := size[0] * size[1] * size[2] * channels
	m.volumes[m.nextID] = append([]byte(nil), data[:n]...)
	m.sizes[m.nextID] = size
	m.Creates++
	return m.nextID
}

// UpdateVolumeRegion copies a box of texels into an existing volume.
func (m *MemoryVolumes) UpdateVolumeRegion(id TextureID, offset, size Extent, channels int, data []byte) {
	vol, ok := m.volumes[id]
	if !ok {
		return
	}
	full := m.sizes[id]
	row := size[0] * channels
	src := 0
	for k := 0; k < size[2]; k++ {
		for j := 0; j < size[1]; j++ {
			dst := ((offset[2]+k)*full[1]*full[0] + (offset[1]+j)*full[0] + offset[0]) * channels
			copy(vol[dst:dst+row], data[src:src+row])
			src += row
		}
	}
	m.Updates++
}

// FreeTexture drops a volume. Unknown ids are ignored.
func (m *MemoryVolumes) FreeTexture(id TextureID) {
	delete(m.volumes, id)
	delete(m.sizes, id)
}

// Volume returns the stored bytes of a volume.
func (m *MemoryVolumes) Volume(id TextureID) ([]byte, bool) {
	v, ok := m.volumes[id]
	return v, ok
}
