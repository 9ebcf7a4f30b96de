// Package components defines ECS components for density sources.
package components

// Emitter injects density into a cube of cells centred on (X, Y, Z) every
// tick. Amount is added per tick, independent of the time step.
type Emitter struct {
	X, Y, Z int
	Amount  float32
	Radius  int // cube side in cells; 0 or 1 is a single cell
}

// Lifetime bounds how long an entity lives. Entities without a Lifetime
// persist until cleared.
type Lifetime struct {
	Remaining float32 // seconds
}

// Expired reports whether the lifetime has run out.
func (l Lifetime) Expired() bool {
	return l.Remaining <= 0
}
