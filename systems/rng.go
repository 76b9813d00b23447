package systems

import "math/rand/v2"

// CoinFlipper supplies the per-cell random bits that pick neighbor order.
type CoinFlipper interface {
	Bool() bool
}

// RNG is a thin wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Bool returns a random boolean value.
func (r *RNG) Bool() bool {
	return r.r.IntN(2) == 1
}

// Source exposes the underlying rand.Rand.
func (r *RNG) Source() *rand.Rand { return r.r }
