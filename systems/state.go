package systems

// SmokeState is the read side of the process-wide smoke flags.
type SmokeState interface {
	SmokeExists() bool
	SmokeVisible() bool
	BoundingBox() BBox
}

// State holds the smoke flags shared with the renderer and gameplay code.
// The Engine is the only writer.
type State struct {
	exists  bool
	visible bool
	bbox    BBox
}

// SmokeExists reports whether any smoke was present in the last committed pass
// or has been injected since.
func (s *State) SmokeExists() bool { return s.exists }

// SmokeVisible reports whether the last committed pass saw any visible smoke.
func (s *State) SmokeVisible() bool { return s.visible }

// BoundingBox returns the current smoke bounding box.
func (s *State) BoundingBox() BBox { return s.bbox }

// commit replaces the flags from a finished pass.
func (s *State) commit(sum *Summary) {
	s.visible = sum.Visible
	s.exists = sum.Enabled
	s.bbox = sum.BBox
}
