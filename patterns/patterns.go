// Package patterns generates synthetic density grids for checking the viewer
// and file format without running the solver.
package patterns

// Value is the density written into lit cells.
const Value = 0.7

// Pattern selects a synthetic grid generator.
type Pattern int

const (
	SingleCell  Pattern = iota // one lit cell walking through the grid
	Incremental                // cells 0..count lit
	Full                       // every cell lit
	Empty                      // every cell zero
	Cycling                    // every cell 0.01*(count%100)
	numPatterns
)

var names = [...]string{"single cell", "incremental", "full", "empty", "cycling"}

func (p Pattern) String() string {
	if p < 0 || p >= numPatterns {
		return "unknown"
	}
	return names[p]
}

// Next returns the following pattern, wrapping after Cycling.
func (p Pattern) Next() Pattern {
	return (p + 1) % numPatterns
}

// All returns every pattern in cycling order.
func All() []Pattern {
	out := make([]Pattern, numPatterns)
	for i := range out {
		out[i] = Pattern(i)
	}
	return out
}

// Fill overwrites grid with the pattern for step count.
func (p Pattern) Fill(grid []float32, count int) {
	n := len(grid)
	if n == 0 {
		return
	}
	switch p {
	case SingleCell:
		clear(grid)
		grid[count%n] = Value
	case Incremental:
		lit := count%n + 1
		for i := range grid {
			if i < lit {
				grid[i] = Value
			} else {
				grid[i] = 0
			}
		}
	case Full:
		for i := range grid {
			grid[i] = Value
		}
	case Cycling:
		v := 0.01 * float32(count%100)
		for i := range grid {
			grid[i] = v
		}
	default:
		clear(grid)
	}
}
