package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSummaryResetIsInverted(t *testing.T) {
	var frame BBox
	s := NewSummary(mgl32.Vec3{10, 10, 5}, 0.5, alwaysVisible(), &frame)
	s.RecordCell(mgl32.Vec3{1, 2, 3}, 4)
	s.Reset()

	if s.Enabled || s.Visible {
		t.Error("expected reset summary to be disabled and invisible")
	}
	if s.Total != 0 {
		t.Errorf("expected zero total, got %f", s.Total)
	}
	for i := 0; i < 3; i++ {
		if s.BBox.Min[i] <= s.BBox.Max[i] {
			t.Errorf("axis %d: expected inverted box, got min %f max %f", i, s.BBox.Min[i], s.BBox.Max[i])
		}
	}
	if !s.BBox.Empty() {
		t.Error("expected reset box to be empty")
	}
}

func TestSummaryRecordsVisibleCell(t *testing.T) {
	frame := EmptyBBox(mgl32.Vec3{10, 10, 5})
	s := NewSummary(mgl32.Vec3{10, 10, 5}, 0.5, alwaysVisible(), &frame)

	s.RecordCell(mgl32.Vec3{1, 2, 3}, 2)
	s.RecordCell(mgl32.Vec3{-1, 4, 0}, 0)

	if !s.Enabled || !s.Visible {
		t.Error("expected summary to be enabled and visible")
	}
	if s.Total != 2 {
		t.Errorf("expected total 2, got %f", s.Total)
	}
	want := BBox{Min: mgl32.Vec3{-1, 2, 0}, Max: mgl32.Vec3{1, 4, 3}}
	if s.BBox != want {
		t.Errorf("expected box %v, got %v", want, s.BBox)
	}
	if frame != want {
		t.Errorf("expected frame box %v, got %v", want, frame)
	}
}

func TestSummaryIgnoresHiddenCellBounds(t *testing.T) {
	frame := EmptyBBox(mgl32.Vec3{10, 10, 5})
	s := NewSummary(mgl32.Vec3{10, 10, 5}, 0.5, neverVisible(), &frame)

	s.RecordCell(mgl32.Vec3{1, 2, 3}, 1.5)

	if s.Total != 1.5 {
		t.Errorf("expected total 1.5, got %f", s.Total)
	}
	if !s.Enabled {
		t.Error("expected hidden cell to still enable the summary")
	}
	if s.Visible {
		t.Error("expected hidden cell to leave summary invisible")
	}
	if !s.BBox.Empty() || !frame.Empty() {
		t.Error("expected hidden cell to leave boxes untouched")
	}
}

func TestSummaryVisibilityUsesCellRadius(t *testing.T) {
	var gotRadius float32
	view := VisibilityFunc(func(_ mgl32.Vec3, r float32) bool {
		gotRadius = r
		return true
	})
	s := NewSummary(mgl32.Vec3{1, 1, 1}, 0.25, view, nil)
	s.RecordCell(mgl32.Vec3{}, 1)
	if gotRadius != 0.25 {
		t.Errorf("expected radius 0.25, got %f", gotRadius)
	}
}

func TestBBoxExpand(t *testing.T) {
	b := BBox{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	b.Expand(mgl32.Vec3{0.5, 1, 2})

	want := BBox{Min: mgl32.Vec3{-0.5, -1, -2}, Max: mgl32.Vec3{1.5, 2, 3}}
	if b != want {
		t.Errorf("expected %v, got %v", want, b)
	}
}
