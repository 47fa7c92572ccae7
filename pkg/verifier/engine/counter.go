package engine

// counter is a monotonic identifier source. It is owned by a Brancher and
// reset with it between verification runs; it is never package state.
type counter struct {
	n uint64
}

func (c *counter) next() uint64 {
	c.n++
	return c.n
}

func (c *counter) value() uint64 { return c.n }

func (c *counter) reset() { c.n = 0 }
