package fluid

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testResolution = 32

func TestNewSimulationIsEmpty(t *testing.T) {
	s := New(testResolution)

	assert.Equal(t, testResolution, s.GridWidth())
	assert.Equal(t, testResolution-2, s.Grid().Interior())
	assert.Len(t, s.Density(), testResolution*testResolution*testResolution)
	assert.Less(t, s.TotalDensity(), float32(0.001))
}

func TestAddDensityTotals(t *testing.T) {
	s := New(testResolution)

	for i := 1; i <= 5; i++ {
		s.AddDensity(i, i, i, 5)
	}

	assert.Equal(t, float32(25), s.TotalDensity())
	assert.Equal(t, float32(5), s.DensityAt(1, 1, 1))
}

func TestAddDensityChecksFlatIndexOnly(t *testing.T) {
	s := New(testResolution)
	w := testResolution

	// Past the last cell: ignored
	s.AddDensity(w, w-1, w-1, 1)
	// Negative flat index: ignored
	s.AddDensity(0, 0, -1, 1)
	assert.Zero(t, s.TotalDensity())

	// x == width wraps onto the next row and is written there
	s.AddDensity(w, 0, 0, 2)
	assert.Equal(t, float32(2), s.DensityAt(0, 1, 0))
}

func TestEmptyUpdateAddsNoDensity(t *testing.T) {
	s := New(testResolution)
	s.Update(0.1)
	assert.LessOrEqual(t, s.TotalDensity(), float32(0.001))
}

func TestDiffusionSpreadsInAllDirections(t *testing.T) {
	s := New(testResolution)
	s.Params.Advect = false

	c := 15
	s.AddDensity(c, c, c, 10)
	for i := 0; i < 5; i++ {
		s.DensityStep(0.1)
	}

	assert.Less(t, s.DensityAt(c, c, c), float32(10))
	neighbours := [][3]int{
		{c + 1, c, c}, {c - 1, c, c},
		{c, c + 1, c}, {c, c - 1, c},
		{c, c, c + 1}, {c, c, c - 1},
	}
	for _, n := range neighbours {
		assert.Greater(t, s.DensityAt(n[0], n[1], n[2]), float32(0), "neighbour %v", n)
	}
}

func TestDiffusionConservesMass(t *testing.T) {
	s := New(testResolution)
	s.Params.Advect = false

	for i := 10; i < 15; i++ {
		s.AddDensity(i, i, i, 5)
	}
	require.InDelta(t, 25.0, s.TotalDensity(), 1e-5)

	for step := 0; step < 10; step++ {
		s.DensityStep(0.1)
		assert.InDelta(t, 25.0, s.TotalDensity(), 1e-3, "step %d", step)
	}
}

func TestDirectionalAdvection(t *testing.T) {
	tests := []struct {
		name    string
		vel     [3]float32
		forward [3]int
	}{
		{"up", [3]float32{0, 0.1, 0}, [3]int{0, 1, 0}},
		{"down", [3]float32{0, -0.1, 0}, [3]int{0, -1, 0}},
		{"right", [3]float32{0.1, 0, 0}, [3]int{1, 0, 0}},
		{"forward", [3]float32{0, 0, -0.1}, [3]int{0, 0, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(testResolution)
			s.Params.Diffuse = false
			s.SetVelocity(tt.vel[0], tt.vel[1], tt.vel[2])

			c := 15
			at := func(steps int) float32 {
				return s.DensityAt(c+steps*tt.forward[0], c+steps*tt.forward[1], c+steps*tt.forward[2])
			}

			s.AddDensity(c, c, c, 10)

			s.DensityStep(0.1)
			assert.Less(t, at(0), float32(10))
			assert.Greater(t, at(1), float32(0))

			s.DensityStep(0.1)
			assert.Greater(t, at(2), float32(0))

			// Nothing flows backwards or sideways
			assert.LessOrEqual(t, at(-1), float32(0))
			for _, d := range [][3]int{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}} {
				if d == tt.forward || d == [3]int{-tt.forward[0], -tt.forward[1], -tt.forward[2]} {
					continue
				}
				assert.LessOrEqual(t, s.DensityAt(c+d[0], c+d[1], c+d[2]), float32(0), "lateral %v", d)
			}
		})
	}
}

func TestSetBoundary(t *testing.T) {
	g := NewGridState(8)
	n := g.Interior()

	field := func() Field {
		f := make(Field, g.Total())
		for k := 1; k <= n; k++ {
			for j := 1; j <= n; j++ {
				for i := 1; i <= n; i++ {
					f[g.Index(i, j, k)] = float32(i + 10*j + 100*k)
				}
			}
		}
		return f
	}

	t.Run("scalar copies", func(t *testing.T) {
		f := field()
		g.SetBoundary(BoundaryScalar, f)
		assert.Equal(t, f[g.Index(1, 3, 4)], f[g.Index(0, 3, 4)])
		assert.Equal(t, f[g.Index(n, 3, 4)], f[g.Index(n+1, 3, 4)])
		assert.Equal(t, f[g.Index(2, 1, 5)], f[g.Index(2, 0, 5)])
		assert.Equal(t, f[g.Index(2, 5, n)], f[g.Index(2, 5, n+1)])
	})

	t.Run("x axis negates x faces", func(t *testing.T) {
		f := field()
		g.SetBoundary(BoundaryX, f)
		assert.Equal(t, -f[g.Index(1, 3, 4)], f[g.Index(0, 3, 4)])
		assert.Equal(t, -f[g.Index(n, 3, 4)], f[g.Index(n+1, 3, 4)])
		// Other faces copy unchanged
		assert.Equal(t, f[g.Index(2, 1, 5)], f[g.Index(2, 0, 5)])
		assert.Equal(t, f[g.Index(2, 5, 1)], f[g.Index(2, 5, 0)])
	})

	t.Run("y axis negates y faces", func(t *testing.T) {
		f := field()
		g.SetBoundary(BoundaryY, f)
		assert.Equal(t, -f[g.Index(2, 1, 5)], f[g.Index(2, 0, 5)])
		assert.Equal(t, f[g.Index(1, 3, 4)], f[g.Index(0, 3, 4)])
	})

	t.Run("corners average face neighbours", func(t *testing.T) {
		f := field()
		f[g.Index(1, 0, 0)] = 3
		f[g.Index(0, 1, 0)] = 6
		f[g.Index(0, 0, 1)] = 9
		g.SetBoundary(BoundaryScalar, f)
		// All three neighbours of a corner are edge cells, which the face pass skips
		assert.Equal(t, float32(3), f[g.Index(1, 0, 0)])
		assert.Equal(t, float32(6), f[g.Index(0, 0, 0)])
	})
}

func TestProjectLeavesZBoundaryUnset(t *testing.T) {
	g := NewGridState(10)
	n := g.Interior()
	rng := rand.New(rand.NewSource(7))

	for a := range g.velocity {
		f := g.velocity[a].cur()
		for i := range f {
			f[i] = rng.Float32() - 0.5
		}
	}
	w := g.velocity[AxisZ].cur()
	const sentinel = 42
	w[g.Index(3, 4, 0)] = sentinel
	w[g.Index(3, 4, n+1)] = sentinel

	g.project(10)

	u := g.velocity[AxisX].cur()
	v := g.velocity[AxisY].cur()
	assert.Equal(t, -u[g.Index(1, 3, 4)], u[g.Index(0, 3, 4)])
	assert.Equal(t, -v[g.Index(3, 1, 4)], v[g.Index(3, 0, 4)])
	assert.Equal(t, float32(sentinel), w[g.Index(3, 4, 0)])
	assert.Equal(t, float32(sentinel), w[g.Index(3, 4, n+1)])
}

func TestAmbientRelaxation(t *testing.T) {
	s := New(testResolution)
	s.Params.Diffuse = false
	s.Params.Advect = false
	s.SetAmbientVelocity(0, 1, 0)

	s.VelocityStep(0.1)

	want := float32(0.1 / 1.1)
	assert.InDelta(t, want, s.Velocity(AxisY)[s.Grid().Index(10, 10, 10)], 1e-6)
	assert.Zero(t, s.Velocity(AxisX)[s.Grid().Index(10, 10, 10)])

	s.ClearVelocity()
	s.VelocityStep(0.1)
	assert.Zero(t, s.Velocity(AxisY)[s.Grid().Index(10, 10, 10)])
}

func TestBuoyancyLiftsDenseCells(t *testing.T) {
	s := New(testResolution)
	s.Params.Diffuse = false
	s.Params.Advect = false
	s.Params.Vorticity = 0

	s.AddDensity(10, 10, 10, 10)
	s.VelocityStep(0.1)

	assert.InDelta(t, 10*0.5*0.1, s.Velocity(AxisY)[s.Grid().Index(10, 10, 10)], 1e-6)
	assert.Zero(t, s.Velocity(AxisY)[s.Grid().Index(20, 20, 20)])
}

func TestAddDensityRadius(t *testing.T) {
	s := New(testResolution)

	s.AddDensityRadius(10, 10, 10, 2, 4)
	assert.InDelta(t, 4*4*4*2, s.TotalDensity(), 1e-4)
	assert.Equal(t, float32(2), s.DensityAt(8, 8, 8))
	assert.Equal(t, float32(2), s.DensityAt(11, 11, 11))
	assert.Zero(t, s.DensityAt(12, 10, 10))

	s.ClearDensity()
	s.AddDensityRadius(10, 10, 10, 3, 1)
	assert.Equal(t, float32(3), s.TotalDensity())
}

func TestAddRandomDensityCloud(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := New(testResolution)

	s.AddRandomDensityCloud(rng, 1, 7)
	assert.Equal(t, float32(7), s.TotalDensity())

	s.ClearDensity()
	s.AddRandomDensityCloud(rng, 20, 1)
	// Capped at radius 5: centre plus four cells along each of six arms
	total := s.TotalDensity()
	assert.Greater(t, total, float32(0))
	assert.LessOrEqual(t, total, float32(25))
}

func TestAddDensityGrid(t *testing.T) {
	s := New(testResolution)
	src := make(Field, len(s.Density()))
	for i := range src {
		src[i] = 0.5
	}
	s.AddDensityGrid(src)
	s.AddDensityGrid(src)
	assert.Equal(t, float32(1), s.DensityAt(3, 4, 5))
}

func TestDoubleBufferSwapKeepsStorage(t *testing.T) {
	d := newDoubleBuffer(4)
	first := d.cur()
	second := d.prev()

	d.swap()
	assert.Same(t, &second[0], &d.cur()[0])
	assert.Same(t, &first[0], &d.prev()[0])

	d.swap()
	assert.Same(t, &first[0], &d.cur()[0])
}

func TestUpdateStaysFinite(t *testing.T) {
	s := New(testResolution)
	c := testResolution / 2
	for frame := 0; frame < 10; frame++ {
		s.AddDensityRadius(c, 5, c, 15, 8)
		s.Update(0.1)
	}

	total := s.TotalDensity()
	assert.Greater(t, total, float32(0))
	for i, v := range s.Density() {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("density[%d] = %v", i, v)
		}
	}
}
