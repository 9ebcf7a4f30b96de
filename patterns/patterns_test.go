package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lit(grid []float32) []int {
	var idx []int
	for i, v := range grid {
		if v != 0 {
			idx = append(idx, i)
		}
	}
	return idx
}

func TestSingleCellWalks(t *testing.T) {
	grid := make([]float32, 27)
	SingleCell.Fill(grid, 4)
	assert.Equal(t, []int{4}, lit(grid))
	assert.Equal(t, float32(Value), grid[4])

	SingleCell.Fill(grid, 28)
	assert.Equal(t, []int{1}, lit(grid), "count wraps around the grid")
}

func TestIncrementalGrows(t *testing.T) {
	grid := make([]float32, 27)
	Incremental.Fill(grid, 0)
	assert.Len(t, lit(grid), 1)
	Incremental.Fill(grid, 9)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, lit(grid))
	Incremental.Fill(grid, 2)
	assert.Len(t, lit(grid), 3, "previously lit cells are cleared")
}

func TestFullEmptyCycling(t *testing.T) {
	grid := make([]float32, 8)
	Full.Fill(grid, 3)
	assert.Len(t, lit(grid), 8)

	Empty.Fill(grid, 3)
	assert.Empty(t, lit(grid))

	Cycling.Fill(grid, 150)
	for _, v := range grid {
		assert.InDelta(t, 0.5, v, 1e-6)
	}
	Cycling.Fill(grid, 100)
	assert.Empty(t, lit(grid))
}

func TestNextCycles(t *testing.T) {
	p := SingleCell
	var seen []string
	for range All() {
		seen = append(seen, p.String())
		p = p.Next()
	}
	assert.Equal(t, SingleCell, p)
	assert.Equal(t, []string{"single cell", "incremental", "full", "empty", "cycling"}, seen)
	assert.Equal(t, "unknown", Pattern(42).String())
}
