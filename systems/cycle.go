package systems

import "fmt"

// Cycler is a counter that walks 0..N-1 and wraps. It drives the row phase of
// the diffusion pass and the band cursor of the texture upload.
type Cycler struct {
	n   int
	cur int
}

// NewCycler creates a cycler over n positions. Panics if n is not positive.
func NewCycler(n int) Cycler {
	if n <= 0 {
		panic(fmt.Sprintf("systems: cycler length must be positive, got %d", n))
	}
	return Cycler{n: n}
}

// Len returns the number of positions in the cycle.
func (c *Cycler) Len() int { return c.n }

// Pos returns the current position.
func (c *Cycler) Pos() int { return c.cur }

// Advance moves to the next position and reports whether it wrapped to 0.
func (c *Cycler) Advance() bool {
	c.cur = (c.cur + 1) % c.n
	return c.cur == 0
}

// Reset returns the cycler to position 0.
func (c *Cycler) Reset() { c.cur = 0 }
