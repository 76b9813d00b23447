package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/voxsmoke/systems"
	"github.com/pthm-cable/voxsmoke/voxel"
)

type volumeCall struct {
	op     string
	id     TextureID
	offset Extent
	size   Extent
	bytes  int
}

// recordingVolumes is a VolumeTextures that records calls instead of touching a GPU.
type recordingVolumes struct {
	calls  []volumeCall
	nextID TextureID
}

func (r *recordingVolumes) CreateVolume(size Extent, channels int, data []byte, bilinear bool) TextureID {
	r.nextID++
	r.calls = append(r.calls, volumeCall{op: "create", id: r.nextID, size: size, bytes: len(data)})
	return r.nextID
}

func (r *recordingVolumes) UpdateVolumeRegion(id TextureID, offset, size Extent, channels int, data []byte) {
	n := size[0] * size[1] * size[2] * channels
	r.calls = append(r.calls, volumeCall{op: "update", id: id, offset: offset, size: size, bytes: n})
}

func (r *recordingVolumes) FreeTexture(id TextureID) {
	if id == 0 {
		return
	}
	r.calls = append(r.calls, volumeCall{op: "free", id: id})
}

func (r *recordingVolumes) reset() { r.calls = nil }

type fakeState struct {
	exists bool
}

func (s *fakeState) SmokeExists() bool { return s.exists }
func (s *fakeState) SmokeVisible() bool { return s.exists }
func (s *fakeState) BoundingBox() systems.BBox { return systems.BBox{} }

const (
	testW = 4
	testH = 8
	testD = 3
)

func testParams() TextureParams {
	return TextureParams{
		Bands:        8,
		MeshVisible:  true,
		FloorZ:       0,
		AlphaScale:   8,
		OutsideColor: [3]float32{1, 1, 1},
	}
}

func newTestTexture(t *testing.T, mesh voxel.Mesh) (*SmokeTexture, *voxel.Grid, *recordingVolumes, *fakeState) {
	t.Helper()
	grid := voxel.NewGrid(testW, testH, testD, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})
	gpu := &recordingVolumes{}
	state := &fakeState{exists: true}
	return NewSmokeTexture(grid, mesh, state, gpu, testParams()), grid, gpu, state
}

func defaultLighting() *Lighting {
	return &Lighting{
		Ambient: mgl32.Vec4{0.3, 0.3, 0.3, 1},
		Diffuse: mgl32.Vec4{0.9, 0.9, 0.9, 1},
	}
}

func texel(data []byte, x, y, z int) []byte {
	o := Channels * (testD*(y*testW+x) + z)
	return data[o : o+Channels]
}

func TestFirstUploadCreatesFullVolume(t *testing.T) {
	tex, _, gpu, _ := newTestTexture(t, nil)

	if !tex.Upload(defaultLighting()) {
		t.Fatal("first upload should send data")
	}
	if len(gpu.calls) != 1 || gpu.calls[0].op != "create" {
		t.Fatalf("expected a single create, got %+v", gpu.calls)
	}
	c := gpu.calls[0]
	if c.bytes != testW*testH*testD*Channels {
		t.Errorf("created with %d bytes, want %d", c.bytes, testW*testH*testD*Channels)
	}
	if c.size != (Extent{testD, testW, testH}) {
		t.Errorf("created with size %v", c.size)
	}
	if tex.Texture() != c.id {
		t.Errorf("texture id = %d, want %d", tex.Texture(), c.id)
	}
	if tex.Band() != 0 {
		t.Errorf("full update advanced band to %d", tex.Band())
	}
}

func TestUploadCyclesBands(t *testing.T) {
	tex, _, gpu, _ := newTestTexture(t, nil)
	light := defaultLighting()
	tex.Upload(light)
	gpu.reset()

	for i := 0; i < 10; i++ {
		want := i % 8
		if !tex.Upload(light) {
			t.Fatalf("upload %d returned false", i)
		}
		c := gpu.calls[len(gpu.calls)-1]
		if c.op != "update" {
			t.Fatalf("upload %d: op %q, want update", i, c.op)
		}
		if c.offset != (Extent{0, 0, want}) || c.size != (Extent{testD, testW, 1}) {
			t.Errorf("upload %d: region %v+%v, want band %d", i, c.offset, c.size, want)
		}
	}
	if tex.Band() != 2 {
		t.Errorf("band after 10 partial uploads = %d, want 2", tex.Band())
	}
}

func TestUploadSkipsWhenNothingChanged(t *testing.T) {
	tex, _, gpu, state := newTestTexture(t, nil)
	light := defaultLighting()
	tex.Upload(light)
	gpu.reset()

	state.exists = false
	if tex.Upload(light) {
		t.Error("upload with no smoke and no lighting change should be a no-op")
	}
	if len(gpu.calls) != 0 {
		t.Errorf("expected no GPU calls, got %+v", gpu.calls)
	}
	if tex.Band() != 0 {
		t.Errorf("band moved to %d on a skipped upload", tex.Band())
	}

	light.IndirectUpdated = true
	if !tex.Upload(light) {
		t.Error("indirect lighting change should force an upload")
	}
	if light.IndirectUpdated {
		t.Error("upload should clear the indirect lighting flag")
	}
}

func TestLightingChangeForcesFullUpdate(t *testing.T) {
	tex, _, gpu, _ := newTestTexture(t, nil)
	light := defaultLighting()
	tex.Upload(light)
	tex.Upload(light)
	gpu.reset()

	light.Ambient = mgl32.Vec4{0.5, 0.5, 0.5, 1}
	tex.Upload(light)
	if len(gpu.calls) != 1 {
		t.Fatalf("expected one call, got %+v", gpu.calls)
	}
	c := gpu.calls[0]
	if c.op != "update" || c.offset != (Extent{0, 0, 0}) || c.size != (Extent{testD, testW, testH}) {
		t.Errorf("lighting change should update the whole volume, got %+v", c)
	}
	if tex.Band() != 1 {
		t.Errorf("full update moved the band cursor to %d", tex.Band())
	}
}

func TestUploadDisabledOrUnallocated(t *testing.T) {
	tex, _, gpu, _ := newTestTexture(t, nil)
	tex.SetEnabled(false)
	if tex.Upload(defaultLighting()) {
		t.Error("disabled streamer uploaded")
	}

	var unallocated *voxel.Grid
	other := NewSmokeTexture(voxel.NewGrid(testW, testH, testD, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}),
		nil, &fakeState{exists: true}, gpu, testParams())
	other.grid = unallocated
	if other.Upload(defaultLighting()) {
		t.Error("streamer without a grid uploaded")
	}
	if len(gpu.calls) != 0 {
		t.Errorf("expected no GPU calls, got %+v", gpu.calls)
	}
}

func TestPackedAlphaAndLighting(t *testing.T) {
	mesh := voxel.NewHeightmap(testW, testH, 1.5, 10)
	tex, grid, _, _ := newTestTexture(t, mesh)
	for y := 0; y < testH; y++ {
		for x := 0; x < testW; x++ {
			for z := 0; z < testD; z++ {
				grid.Cell(x, y, z).Color = [3]float32{0.5, 1, 2}
			}
		}
	}
	grid.Cell(1, 2, 0).Smoke = 0.0625
	grid.Cell(1, 2, 2).Smoke = 3

	tex.Upload(defaultLighting())
	data := tex.Data()

	// Layer 0 tops out at z=1, below the surface at 1.5
	if got := texel(data, 1, 2, 0); got[0] != 0 || got[1] != 0 || got[2] != 0 {
		t.Errorf("below-surface texel RGB = %v, want zero", got[:3])
	}
	if got := texel(data, 1, 2, 0)[3]; got != 127 {
		t.Errorf("alpha at half max cell = %d, want 127", got)
	}
	// Layer 1 tops out at z=2, above the surface
	if got := texel(data, 1, 2, 1); got[0] != 127 || got[1] != 255 || got[2] != 255 {
		t.Errorf("lit texel RGB = %v, want [127 255 255]", got[:3])
	}
	if got := texel(data, 1, 2, 2)[3]; got != 255 {
		t.Errorf("alpha above max cell = %d, want 255", got)
	}
	if got := texel(data, 0, 0, 2)[3]; got != 0 {
		t.Errorf("alpha of empty cell = %d, want 0", got)
	}
}

func TestDisabledMeshUsesFloor(t *testing.T) {
	mesh := voxel.NewHeightmap(testW, testH, 1.5, 10)
	mesh.Disabled[2*testW+1] = true
	tex, grid, _, _ := newTestTexture(t, mesh)
	grid.Cell(1, 2, 0).Color = [3]float32{1, 1, 1}

	tex.Upload(defaultLighting())
	if got := texel(tex.Data(), 1, 2, 0); got[0] != 255 {
		t.Errorf("disabled mesh column should only be cut at the floor, got %v", got)
	}
}

func TestAbsentColumns(t *testing.T) {
	tex, grid, _, _ := newTestTexture(t, nil)
	grid.FreeColumn(3, 0)
	light := defaultLighting()

	tex.Upload(light)
	if got := texel(tex.Data(), 3, 0, 1); got[0] != 255 || got[1] != 255 || got[2] != 255 || got[3] != 0 {
		t.Errorf("absent column on full update = %v, want outside color with no smoke", got)
	}

	// Partial updates leave absent columns untouched
	texel(tex.Data(), 3, 0, 1)[3] = 42
	tex.Upload(light)
	if got := texel(tex.Data(), 3, 0, 1)[3]; got != 42 {
		t.Errorf("partial update rewrote an absent column: alpha %d", got)
	}
}

func TestResetRecreatesTexture(t *testing.T) {
	tex, _, gpu, _ := newTestTexture(t, nil)
	light := defaultLighting()
	tex.Upload(light)
	first := tex.Texture()
	gpu.reset()

	tex.Reset()
	tex.Upload(light)
	if len(gpu.calls) != 2 || gpu.calls[0].op != "free" || gpu.calls[0].id != first || gpu.calls[1].op != "create" {
		t.Errorf("reset should free then recreate, got %+v", gpu.calls)
	}

	gpu.reset()
	tex.Unload()
	if tex.Texture() != 0 || len(gpu.calls) != 1 || gpu.calls[0].op != "free" {
		t.Errorf("unload should free the texture, got %+v", gpu.calls)
	}
}

func TestReconfigureSwitchesGrid(t *testing.T) {
	tex, _, gpu, _ := newTestTexture(t, nil)
	light := defaultLighting()
	tex.Upload(light)
	tex.Upload(light)

	bigger := voxel.NewGrid(testW*2, testH, testD, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	tex.Reconfigure(bigger, nil)
	gpu.reset()

	tex.Upload(light)
	if len(gpu.calls) != 1 || gpu.calls[0].op != "create" {
		t.Fatalf("expected a create after reconfigure, got %+v", gpu.calls)
	}
	if gpu.calls[0].bytes != 2*testW*testH*testD*Channels {
		t.Errorf("reconfigured volume has %d bytes", gpu.calls[0].bytes)
	}
	if tex.Band() != 0 {
		t.Errorf("reconfigure should reset the band cursor, got %d", tex.Band())
	}
}

func TestBandsMustDivideHeight(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for bands that do not divide the grid height")
		}
	}()
	grid := voxel.NewGrid(testW, 6, testD, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	NewSmokeTexture(grid, nil, &fakeState{}, &recordingVolumes{}, testParams())
}

func TestBufferSizeMismatchPanics(t *testing.T) {
	tex, _, _, _ := newTestTexture(t, nil)
	light := defaultLighting()
	tex.Upload(light)
	tex.data = tex.data[:len(tex.data)-Channels]

	defer func() {
		if recover() == nil {
			t.Error("expected panic for a buffer that does not match the grid")
		}
	}()
	tex.Upload(light)
}

func BenchmarkSmokeTextureUpload(b *testing.B) {
	grid := voxel.NewGrid(64, 64, 32, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	tex := NewSmokeTexture(grid, nil, &fakeState{exists: true}, &recordingVolumes{}, testParams())
	light := defaultLighting()
	tex.Upload(light)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tex.Upload(light)
	}
}

func TestMemoryVolumesMirrorBuffer(t *testing.T) {
	grid := voxel.NewGrid(testW, testH, testD, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	gpu := NewMemoryVolumes()
	tex := NewSmokeTexture(grid, nil, &fakeState{exists: true}, gpu, testParams())
	light := defaultLighting()
	tex.Upload(light)

	grid.Cell(2, 0, 1).Smoke = 0.1
	grid.Cell(2, 1, 1).Smoke = 0.1
	// Band 0 covers row 0 only; row 1 reaches the GPU on the next call
	tex.Upload(light)
	vol, _ := gpu.Volume(tex.Texture())
	if texel(vol, 2, 0, 1)[3] == 0 {
		t.Error("band 0 update did not reach the volume")
	}
	if texel(vol, 2, 1, 1)[3] != 0 {
		t.Error("row 1 was uploaded before its band")
	}

	tex.Upload(light)
	vol, _ = gpu.Volume(tex.Texture())
	if string(vol) != string(tex.Data()) {
		t.Error("volume does not match the packed buffer after both bands")
	}
	if gpu.Creates != 1 || gpu.Updates != 2 {
		t.Errorf("creates/updates = %d/%d, want 1/2", gpu.Creates, gpu.Updates)
	}
}
