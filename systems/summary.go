package systems

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Visibility tests whether a sphere can be seen by the camera.
type Visibility interface {
	SphereVisible(center mgl32.Vec3, radius float32) bool
}

// VisibilityFunc adapts a function to the Visibility interface.
type VisibilityFunc func(center mgl32.Vec3, radius float32) bool

// SphereVisible calls f.
func (f VisibilityFunc) SphereVisible(center mgl32.Vec3, radius float32) bool {
	return f(center, radius)
}

// BBox is an axis-aligned bounding box.
type BBox struct {
	Min, Max mgl32.Vec3
}

// EmptyBBox returns a box inverted across the given extent, so that the first
// union sets both corners.
func EmptyBBox(extent mgl32.Vec3) BBox {
	return BBox{Min: extent, Max: extent.Mul(-1)}
}

// Empty reports whether the box contains no points.
func (b BBox) Empty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() || b.Min.Z() > b.Max.Z()
}

// Union grows the box to contain p.
func (b *BBox) Union(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

// Expand grows the box outward by the given per-axis margins.
func (b *BBox) Expand(margin mgl32.Vec3) {
	b.Min = b.Min.Sub(margin)
	b.Max = b.Max.Add(margin)
}

// Summary tracks where smoke was found during one diffusion pass.
type Summary struct {
	BBox    BBox
	Total   float32 // Sum of recorded densities
	Enabled bool    // Any cell was recorded
	Visible bool    // Any recorded cell was camera-visible

	extent mgl32.Vec3
	radius float32
	view   Visibility
	frame  *BBox // Shared current-frame box, also grown by visible cells
}

// NewSummary creates an empty summary. Visible cells are tested as spheres of
// the given radius and also unioned into frame when it is non-nil.
func NewSummary(extent mgl32.Vec3, radius float32, view Visibility, frame *BBox) Summary {
	s := Summary{
		extent: extent,
		radius: radius,
		view:   view,
		frame:  frame,
	}
	s.Reset()
	return s
}

// Reset clears the summary to its empty state.
func (s *Summary) Reset() {
	s.BBox = EmptyBBox(s.extent)
	s.Total = 0
	s.Enabled = false
	s.Visible = false
}

// RecordCell accumulates a cell holding amount of smoke at pos.
func (s *Summary) RecordCell(pos mgl32.Vec3, amount float32) {
	if s.view != nil && s.view.SphereVisible(pos, s.radius) {
		s.BBox.Union(pos)
		if s.frame != nil {
			s.frame.Union(pos)
		}
		s.Visible = true
	}
	s.Total += amount
	s.Enabled = true
}

// Expand grows the bounding box by per-axis margins.
func (s *Summary) Expand(margin mgl32.Vec3) {
	s.BBox.Expand(margin)
}
