// Package fluid implements a 3D stable-fluids smoke solver on a cubic grid
// with a one-cell halo border.
//
// Fields are flat float32 arrays of width^3 cells where width = N+2 and N is
// the interior resolution. Cell (i, j, k) lives at i + width*j + width^2*k.
// Halo cells (index 0 and N+1 on any axis) only carry boundary values.
package fluid

import "gonum.org/v1/gonum/blas/blas32"

// Field is a flat scalar field covering the whole grid including the halo.
type Field []float32

// Axis identifies a velocity component.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Boundary condition ids passed to SetBoundary.
const (
	BoundaryScalar = 0 // copy interior values into the halo
	BoundaryX      = 1 // negate on the x faces
	BoundaryY      = 2 // negate on the y faces
	BoundaryZ      = 3 // negate on the z faces
)

// doubleBuffer holds a current/previous pair of fields.
// Swapping flips the front index; no data moves.
type doubleBuffer struct {
	bufs  [2]Field
	front int
}

func newDoubleBuffer(total int) doubleBuffer {
	return doubleBuffer{bufs: [2]Field{make(Field, total), make(Field, total)}}
}

func (d *doubleBuffer) cur() Field  { return d.bufs[d.front] }
func (d *doubleBuffer) prev() Field { return d.bufs[1-d.front] }
func (d *doubleBuffer) swap()       { d.front = 1 - d.front }

// GridState owns every field the solver touches.
type GridState struct {
	n     int // interior resolution
	width int // n + 2
	total int // width^3

	density  doubleBuffer
	velocity [3]doubleBuffer
	ambient  [3]Field

	// scratch
	pressure   Field
	divergence Field
	curl       [3]Field
	curlMag    Field
}

// NewGridState allocates a zero-filled grid with the given full width (N+2).
func NewGridState(width int) *GridState {
	total := width * width * width
	g := &GridState{
		n:          width - 2,
		width:      width,
		total:      total,
		density:    newDoubleBuffer(total),
		pressure:   make(Field, total),
		divergence: make(Field, total),
		curlMag:    make(Field, total),
	}
	for a := range g.velocity {
		g.velocity[a] = newDoubleBuffer(total)
		g.ambient[a] = make(Field, total)
		g.curl[a] = make(Field, total)
	}
	return g
}

// Width returns the full grid width including the halo.
func (g *GridState) Width() int { return g.width }

// Interior returns the interior resolution N.
func (g *GridState) Interior() int { return g.n }

// Total returns the number of cells in a field.
func (g *GridState) Total() int { return g.total }

// Index returns the flat index of cell (i, j, k).
func (g *GridState) Index(i, j, k int) int {
	return i + g.width*j + g.width*g.width*k
}

func vec(f Field) blas32.Vector {
	return blas32.Vector{N: len(f), Inc: 1, Data: f}
}

func fill(f Field, v float32) {
	for i := range f {
		f[i] = v
	}
}

// GridTotal sums every cell of a field, halo included.
func GridTotal(f Field) float32 {
	var total float32
	for _, v := range f {
		total += v
	}
	return total
}
