package fluid

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffuseSingleCellUsesCubicFactor(t *testing.T) {
	g := NewGridState(5) // N = 3
	cur := make(Field, g.Total())
	prev := make(Field, g.Total())
	prev[g.Index(2, 2, 2)] = 1

	const rate, dt = 0.1, 0.1
	g.diffuse(BoundaryScalar, cur, prev, rate, dt, 1)

	a := float32(dt * rate * 27)
	c := 1 + 6*a
	assert.InDelta(t, 1/c, cur[g.Index(2, 2, 2)], 1e-6)
	// neighbours swept after the centre pick up a/c²; earlier ones stay empty
	assert.InDelta(t, a/(c*c), cur[g.Index(2, 3, 2)], 1e-6)
	assert.InDelta(t, a/(c*c), cur[g.Index(3, 2, 2)], 1e-6)
	assert.InDelta(t, a/(c*c), cur[g.Index(2, 2, 3)], 1e-6)
	assert.Zero(t, cur[g.Index(1, 2, 2)])
	assert.Zero(t, cur[g.Index(2, 1, 2)])
}

// sweepZXY is a plain Gauss-Seidel pass visiting z, then x, with y innermost.
func sweepZXY(g *GridState, b int, x, x0 Field, a, c float32, iterations int) {
	n := g.Interior()
	for it := 0; it < iterations; it++ {
		for k := 1; k <= n; k++ {
			for i := 1; i <= n; i++ {
				for j := 1; j <= n; j++ {
					sum := x[g.Index(i-1, j, k)] + x[g.Index(i+1, j, k)] +
						x[g.Index(i, j-1, k)] + x[g.Index(i, j+1, k)] +
						x[g.Index(i, j, k-1)] + x[g.Index(i, j, k+1)]
					x[g.Index(i, j, k)] = (x0[g.Index(i, j, k)] + a*sum) / c
				}
			}
		}
		g.SetBoundary(b, x)
	}
}

func TestLinearSolveSweepOrder(t *testing.T) {
	g := NewGridState(8)
	rng := rand.New(rand.NewSource(3))
	x0 := make(Field, g.Total())
	for i := range x0 {
		x0[i] = rng.Float32()
	}

	got := make(Field, g.Total())
	want := make(Field, g.Total())
	const a, c = 2.5, 16
	g.linearSolve(BoundaryScalar, got, x0, a, c, 3)
	sweepZXY(g, BoundaryScalar, want, x0, a, c, 3)

	for idx := range want {
		require.InDelta(t, want[idx], got[idx], 1e-5, "cell %d", idx)
	}
}

func TestVorticityConfinementPushesAlongGradient(t *testing.T) {
	g := NewGridState(8) // N = 6
	v := g.velocity[AxisY].cur()
	// v = x²/2 gives a z curl of exactly x, growing along +x
	for k := 0; k < 8; k++ {
		for j := 0; j < 8; j++ {
			for i := 0; i < 8; i++ {
				v[g.Index(i, j, k)] = float32(i*i) / 2
			}
		}
	}

	idx := g.Index(3, 3, 3)
	before := v[idx]
	const dt, coef = 0.1, 2
	g.vorticityConfinement(dt, coef)

	assert.InDelta(t, 3, g.curl[AxisZ][idx], 1e-6)
	assert.InDelta(t, 3, g.curlMag[idx], 1e-6)

	// n̂ = +x, ω = 3ẑ, so n̂ × ω = -3ŷ
	assert.InDelta(t, -3*dt*coef, v[idx]-before, 1e-4)
	assert.InDelta(t, 0, g.velocity[AxisX].cur()[idx], 1e-6)
	assert.InDelta(t, 0, g.velocity[AxisZ].cur()[idx], 1e-6)
}
