package fluid

import (
	"math"

	"gonum.org/v1/gonum/blas/blas32"
)

// SetBoundary writes the halo faces of x from their neighbouring interior
// cells, negating the face whose axis matches b. Corners become the mean of
// their three face-adjacent halo cells. Edge cells are left untouched.
func (g *GridState) SetBoundary(b int, x Field) {
	n := g.n
	for i := 1; i <= n; i++ {
		for j := 1; j <= n; j++ {
			x[g.Index(0, i, j)] = reflect(b == BoundaryX, x[g.Index(1, i, j)])
			x[g.Index(n+1, i, j)] = reflect(b == BoundaryX, x[g.Index(n, i, j)])
			x[g.Index(i, 0, j)] = reflect(b == BoundaryY, x[g.Index(i, 1, j)])
			x[g.Index(i, n+1, j)] = reflect(b == BoundaryY, x[g.Index(i, n, j)])
			x[g.Index(i, j, 0)] = reflect(b == BoundaryZ, x[g.Index(i, j, 1)])
			x[g.Index(i, j, n+1)] = reflect(b == BoundaryZ, x[g.Index(i, j, n)])
		}
	}

	// corner (ci, cj, ck) averages the three halo cells one step inward
	for _, ci := range [2]int{0, n + 1} {
		di := inward(ci, n)
		for _, cj := range [2]int{0, n + 1} {
			dj := inward(cj, n)
			for _, ck := range [2]int{0, n + 1} {
				dk := inward(ck, n)
				x[g.Index(ci, cj, ck)] = (x[g.Index(di, cj, ck)] +
					x[g.Index(ci, dj, ck)] +
					x[g.Index(ci, cj, dk)]) / 3
			}
		}
	}
}

func reflect(negate bool, v float32) float32 {
	if negate {
		return -v
	}
	return v
}

// inward returns the coordinate one step from a halo face into the grid.
func inward(c, n int) int {
	if c == 0 {
		return 1
	}
	return n
}

// diffuse solves (I - a*Laplacian) cur = prev with Gauss-Seidel sweeps.
// a scales with N^3.
func (g *GridState) diffuse(b int, cur, prev Field, rate, dt float32, iterations int) {
	n := float32(g.n)
	a := dt * rate * n * n * n
	g.linearSolve(b, cur, prev, a, 1+6*a, iterations)
}

// linearSolve relaxes x toward (x0 + a*sum(neighbours)) / c, reapplying the
// boundary after each full sweep.
func (g *GridState) linearSolve(b int, x, x0 Field, a, c float32, iterations int) {
	w := g.width
	plane := w * w
	inv := 1 / c
	for it := 0; it < iterations; it++ {
		// z, then x, with y innermost
		for k := 1; k <= g.n; k++ {
			for i := 1; i <= g.n; i++ {
				idx := g.Index(i, 1, k)
				for j := 1; j <= g.n; j++ {
					x[idx] = (x0[idx] + a*(x[idx-1]+x[idx+1]+
						x[idx-w]+x[idx+w]+
						x[idx-plane]+x[idx+plane])) * inv
					idx += w
				}
			}
		}
		g.SetBoundary(b, x)
	}
}

// advect traces each interior cell back along (u, v, w) and samples prev
// trilinearly at the clamped source position.
func (g *GridState) advect(b int, cur, prev, u, v, w Field, dt float32) {
	n := g.n
	dt0 := dt * float32(n)
	lo := float32(0.5)
	hi := float32(n) + 0.5

	for k := 1; k <= n; k++ {
		for j := 1; j <= n; j++ {
			for i := 1; i <= n; i++ {
				idx := g.Index(i, j, k)

				x := clamp(float32(i)-dt0*u[idx], lo, hi)
				y := clamp(float32(j)-dt0*v[idx], lo, hi)
				z := clamp(float32(k)-dt0*w[idx], lo, hi)

				i0, j0, k0 := int(x), int(y), int(z)
				i1, j1, k1 := i0+1, j0+1, k0+1

				s1 := x - float32(i0)
				s0 := 1 - s1
				t1 := y - float32(j0)
				t0 := 1 - t1
				r1 := z - float32(k0)
				r0 := 1 - r1

				cur[idx] = s0*(t0*r0*prev[g.Index(i0, j0, k0)]+t1*r0*prev[g.Index(i0, j1, k0)]+
					t0*r1*prev[g.Index(i0, j0, k1)]+t1*r1*prev[g.Index(i0, j1, k1)]) +
					s1*(t0*r0*prev[g.Index(i1, j0, k0)]+t1*r0*prev[g.Index(i1, j1, k0)]+
						t0*r1*prev[g.Index(i1, j0, k1)]+t1*r1*prev[g.Index(i1, j1, k1)])
			}
		}
	}
	g.SetBoundary(b, cur)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// project removes the divergent part of the current velocity field.
// Only the x and y components get their boundary reapplied afterwards.
func (g *GridState) project(iterations int) {
	u := g.velocity[AxisX].cur()
	v := g.velocity[AxisY].cur()
	w := g.velocity[AxisZ].cur()
	p := g.pressure
	div := g.divergence

	n := g.n
	h := 1 / float32(n)
	wd := g.width
	plane := wd * wd

	for k := 1; k <= n; k++ {
		for j := 1; j <= n; j++ {
			for i := 1; i <= n; i++ {
				idx := g.Index(i, j, k)
				div[idx] = -h * (u[idx+1] - u[idx-1] +
					v[idx+wd] - v[idx-wd] +
					w[idx+plane] - w[idx-plane]) / 3
				p[idx] = 0
			}
		}
	}
	g.SetBoundary(BoundaryScalar, div)
	g.SetBoundary(BoundaryScalar, p)

	g.linearSolve(BoundaryScalar, p, div, 1, 6, iterations)

	for k := 1; k <= n; k++ {
		for j := 1; j <= n; j++ {
			for i := 1; i <= n; i++ {
				idx := g.Index(i, j, k)
				u[idx] -= (p[idx+1] - p[idx-1]) / 3 / h
				v[idx] -= (p[idx+wd] - p[idx-wd]) / 3 / h
				w[idx] -= (p[idx+plane] - p[idx-plane]) / 3 / h
			}
		}
	}

	g.SetBoundary(BoundaryX, u)
	g.SetBoundary(BoundaryY, v)
}

// vorticityConfinement pushes the current velocity along N x curl, where N is
// the normalised gradient of the curl magnitude.
func (g *GridState) vorticityConfinement(dt, coef float32) {
	u := g.velocity[AxisX].cur()
	v := g.velocity[AxisY].cur()
	w := g.velocity[AxisZ].cur()
	cx, cy, cz := g.curl[AxisX], g.curl[AxisY], g.curl[AxisZ]
	mag := g.curlMag

	wd := g.width
	plane := wd * wd
	dt0 := dt * coef

	// The interior loops stop one short of N on every axis.
	for k := 1; k < g.n; k++ {
		for j := 1; j < g.n; j++ {
			for i := 1; i < g.n; i++ {
				idx := g.Index(i, j, k)
				x := (w[idx+wd]-w[idx-wd])*0.5 - (v[idx+plane]-v[idx-plane])*0.5
				y := (u[idx+plane]-u[idx-plane])*0.5 - (w[idx+1]-w[idx-1])*0.5
				z := (v[idx+1]-v[idx-1])*0.5 - (u[idx+wd]-u[idx-wd])*0.5
				cx[idx], cy[idx], cz[idx] = x, y, z
				mag[idx] = float32(math.Sqrt(float64(x*x + y*y + z*z)))
			}
		}
	}

	for k := 1; k < g.n; k++ {
		for j := 1; j < g.n; j++ {
			for i := 1; i < g.n; i++ {
				idx := g.Index(i, j, k)
				nx := (mag[idx+1] - mag[idx-1]) * 0.5
				ny := (mag[idx+wd] - mag[idx-wd]) * 0.5
				nz := (mag[idx+plane] - mag[idx-plane]) * 0.5
				inv := 1 / (float32(math.Sqrt(float64(nx*nx+ny*ny+nz*nz))) + 1e-7)
				nx *= inv
				ny *= inv
				nz *= inv

				u[idx] += (ny*cz[idx] - nz*cy[idx]) * dt0
				v[idx] += (nz*cx[idx] - nx*cz[idx]) * dt0
				w[idx] += (nx*cy[idx] - ny*cx[idx]) * dt0
			}
		}
	}
}

// relax blends target toward source: target = (target + dt*source) / (1 + dt).
func relax(target, source Field, dt float32) {
	t := vec(target)
	blas32.Axpy(dt, vec(source), t)
	blas32.Scal(1/(1+dt), t)
}

// addBuoyancy lifts the vertical velocity in proportion to density.
func (g *GridState) addBuoyancy(coef, dt float32) {
	blas32.Axpy(coef*dt, vec(g.density.cur()), vec(g.velocity[AxisY].cur()))
}
