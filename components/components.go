// Package components defines ECS components for the simulation.
package components

// Position represents an entity's world position.
type Position struct {
	X, Y, Z float32
}

// Emitter injects smoke at its entity's position every tick.
type Emitter struct {
	Rate      float32 // Amount injected per tick, before density scaling
	Remaining int32   // Ticks left for finite emitters
	Forever   bool
}

// Expired reports whether a finite emitter has run out.
func (e *Emitter) Expired() bool {
	return !e.Forever && e.Remaining <= 0
}
