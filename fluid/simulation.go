package fluid

import (
	"math/rand"

	"gonum.org/v1/gonum/blas/blas32"
)

// Params holds solver coefficients and stage switches.
type Params struct {
	DiffuseRate float32 // density diffusion rate
	Viscosity   float32 // velocity diffusion rate
	Vorticity   float32 // confinement strength
	Buoyancy    float32 // vertical lift per unit density
	Iterations  int     // Gauss-Seidel sweeps for diffusion and projection

	Diffuse      bool
	Advect       bool
	DensityStep  bool
	VelocityStep bool
}

// DefaultParams returns the solver defaults.
func DefaultParams() Params {
	return Params{
		DiffuseRate:  0.0000005,
		Viscosity:    0,
		Vorticity:    2.5,
		Buoyancy:     0.5,
		Iterations:   10,
		Diffuse:      true,
		Advect:       true,
		DensityStep:  true,
		VelocityStep: true,
	}
}

// Simulation advances a GridState one time step at a time.
// It is not safe for concurrent use; readers of Density must synchronise
// with Update themselves.
type Simulation struct {
	Params Params
	grid   *GridState
}

// New creates a simulation with default parameters. resolution is the full
// grid width including the halo, so the interior is resolution-2 cells wide.
func New(resolution int) *Simulation {
	return NewWithParams(resolution, DefaultParams())
}

// NewWithParams creates a simulation with the given parameters.
func NewWithParams(resolution int, p Params) *Simulation {
	return &Simulation{
		Params: p,
		grid:   NewGridState(resolution),
	}
}

// Grid exposes the underlying grid state.
func (s *Simulation) Grid() *GridState { return s.grid }

// GridWidth returns the full grid width including the halo.
func (s *Simulation) GridWidth() int { return s.grid.width }

// Update runs a velocity step followed by a density step.
func (s *Simulation) Update(dt float32) {
	if s.Params.VelocityStep {
		s.VelocityStep(dt)
	}
	if s.Params.DensityStep {
		s.DensityStep(dt)
	}
}

// DensityStep diffuses then advects density along the current velocity.
func (s *Simulation) DensityStep(dt float32) {
	g := s.grid
	vel := &g.velocity

	if s.Params.Diffuse {
		g.density.swap()
		g.diffuse(BoundaryScalar, g.density.cur(), g.density.prev(), s.Params.DiffuseRate, dt, s.Params.Iterations)
	}

	if s.Params.Advect {
		g.density.swap()
		g.advect(BoundaryScalar, g.density.cur(), g.density.prev(),
			vel[AxisX].cur(), vel[AxisY].cur(), vel[AxisZ].cur(), dt)
	}
}

// VelocityStep applies ambient forcing, buoyancy and vorticity confinement,
// then diffuses and self-advects the velocity, projecting after each.
func (s *Simulation) VelocityStep(dt float32) {
	g := s.grid
	vel := &g.velocity

	for a := range vel {
		relax(vel[a].cur(), g.ambient[a], dt)
	}
	g.addBuoyancy(s.Params.Buoyancy, dt)
	g.vorticityConfinement(dt, s.Params.Vorticity)

	if s.Params.Diffuse {
		s.swapVelocity()
		for a := range vel {
			g.diffuse(BoundaryX+a, vel[a].cur(), vel[a].prev(), s.Params.Viscosity, dt, s.Params.Iterations)
		}
		g.project(s.Params.Iterations)
	}

	if s.Params.Advect {
		s.swapVelocity()
		u, v, w := vel[AxisX].prev(), vel[AxisY].prev(), vel[AxisZ].prev()
		for a := range vel {
			g.advect(BoundaryX+a, vel[a].cur(), vel[a].prev(), u, v, w, dt)
		}
		g.project(s.Params.Iterations)
	}
}

func (s *Simulation) swapVelocity() {
	for a := range s.grid.velocity {
		s.grid.velocity[a].swap()
	}
}

// SetBoundary applies the boundary rule for id b to field x.
func (s *Simulation) SetBoundary(b int, x Field) {
	s.grid.SetBoundary(b, x)
}

// Density returns the current density field. The slice is owned by the
// simulation and changes on the next step.
func (s *Simulation) Density() Field { return s.grid.density.cur() }

// Velocity returns the current velocity component for axis a.
func (s *Simulation) Velocity(a Axis) Field { return s.grid.velocity[a].cur() }

// DensityAt returns the density at cell (x, y, z).
func (s *Simulation) DensityAt(x, y, z int) float32 {
	return s.grid.density.cur()[s.grid.Index(x, y, z)]
}

// TotalDensity sums the current density field, halo included.
func (s *Simulation) TotalDensity() float32 {
	return GridTotal(s.grid.density.cur())
}

// AddDensity adds amount at cell (x, y, z). Only the flat index is checked:
// calls whose index falls outside the array are ignored, while an
// out-of-range axis that still maps inside the array writes that cell.
func (s *Simulation) AddDensity(x, y, z int, amount float32) {
	idx := s.grid.Index(x, y, z)
	if idx < 0 || idx >= s.grid.total {
		return
	}
	s.grid.density.cur()[idx] += amount
}

// AddDensityRadius adds amount to every cell of the cube [c-r/2, c+r/2) on
// each axis. A radius of 1 or less touches only the centre cell.
func (s *Simulation) AddDensityRadius(x, y, z int, amount float32, radius int) {
	if radius <= 1 {
		s.AddDensity(x, y, z, amount)
		return
	}
	half := radius / 2
	for k := z - half; k < z+half; k++ {
		for j := y - half; j < y+half; j++ {
			for i := x - half; i < x+half; i++ {
				s.AddDensity(i, j, k, amount)
			}
		}
	}
}

// AddDensityGrid adds a whole field cell by cell.
func (s *Simulation) AddDensityGrid(src Field) {
	blas32.Axpy(1, vec(src), vec(s.grid.density.cur()))
}

// maxCloudRadius caps the arm length of a random cloud.
const maxCloudRadius = 5

// AddRandomDensityCloud drops a small star-shaped puff at a random interior
// position: the centre plus arms of radius-1 cells along all six axes.
func (s *Simulation) AddRandomDensityCloud(rng *rand.Rand, radius int, amount float32) {
	if radius > maxCloudRadius {
		radius = maxCloudRadius
	}
	n := s.grid.n
	margin := n / 15
	span := n - 2*margin + 1
	if span < 1 {
		span = 1
	}
	x := margin + rng.Intn(span)
	y := margin + rng.Intn(span)
	z := margin + rng.Intn(span)

	s.AddDensity(x, y, z, amount)
	for i := 1; i < radius; i++ {
		s.AddDensity(x+i, y, z, amount)
		s.AddDensity(x-i, y, z, amount)
		s.AddDensity(x, y+i, z, amount)
		s.AddDensity(x, y-i, z, amount)
		s.AddDensity(x, y, z+i, amount)
		s.AddDensity(x, y, z-i, amount)
	}
}

// ClearDensity zeroes the current and previous density.
func (s *Simulation) ClearDensity() {
	fill(s.grid.density.bufs[0], 0)
	fill(s.grid.density.bufs[1], 0)
}

// ClearVelocity zeroes current, previous and ambient velocity.
func (s *Simulation) ClearVelocity() {
	for a := range s.grid.velocity {
		fill(s.grid.velocity[a].bufs[0], 0)
		fill(s.grid.velocity[a].bufs[1], 0)
		fill(s.grid.ambient[a], 0)
	}
}

// SetAmbientVelocity sets the uniform flow the velocity relaxes toward.
func (s *Simulation) SetAmbientVelocity(u, v, w float32) {
	fill(s.grid.ambient[AxisX], u)
	fill(s.grid.ambient[AxisY], v)
	fill(s.grid.ambient[AxisZ], w)
}

// SetVelocity fills the current and previous velocity with a uniform value.
func (s *Simulation) SetVelocity(u, v, w float32) {
	for a, val := range [3]float32{u, v, w} {
		fill(s.grid.velocity[a].bufs[0], val)
		fill(s.grid.velocity[a].bufs[1], val)
	}
}
