// Package smokefile reads and writes delta-compressed recordings of a cubic
// density grid.
//
// A recording is a 32-byte file header followed by frames. Each frame is a
// bitmask of changed blocks followed by the raw little-endian float32 values
// of those blocks in ascending block order. Frame 0 flags every block.
package smokefile

import (
	"fmt"
	"math"
)

// DiffTolerance is the absolute per-cell change that marks a block as changed.
const DiffTolerance = 1e-6

// Layout maps between a flat grid and its cubic blocks.
type Layout struct {
	GridWidth       int
	BlockWidth      int
	BlockArrayWidth int
}

// IsValidSplit reports whether blockWidth evenly divides gridWidth and, if
// so, how many blocks fit along one axis.
func IsValidSplit(gridWidth, blockWidth int) (blockArrayWidth int, ok bool) {
	if gridWidth <= 0 || blockWidth <= 0 || gridWidth%blockWidth != 0 {
		return 0, false
	}
	return gridWidth / blockWidth, true
}

// NewLayout validates the split and returns the layout.
func NewLayout(gridWidth, blockWidth int) (Layout, error) {
	baw, ok := IsValidSplit(gridWidth, blockWidth)
	if !ok {
		return Layout{}, fmt.Errorf("%w: grid width %d, block width %d", ErrConfiguration, gridWidth, blockWidth)
	}
	return Layout{GridWidth: gridWidth, BlockWidth: blockWidth, BlockArrayWidth: baw}, nil
}

// GridSize returns the number of cells in the grid.
func (l Layout) GridSize() int { return l.GridWidth * l.GridWidth * l.GridWidth }

// BlockSize returns the number of cells in one block.
func (l Layout) BlockSize() int { return l.BlockWidth * l.BlockWidth * l.BlockWidth }

// BlockCount returns the number of blocks in the grid.
func (l Layout) BlockCount() int {
	return l.BlockArrayWidth * l.BlockArrayWidth * l.BlockArrayWidth
}

// HeaderWords returns the number of 64-bit words in a frame header.
func (l Layout) HeaderWords() int { return (l.BlockCount() + 63) / 64 }

// BlockIndex returns the block containing grid cell (x, y, z).
func (l Layout) BlockIndex(x, y, z int) int {
	bw, baw := l.BlockWidth, l.BlockArrayWidth
	return x/bw + baw*(y/bw) + baw*baw*(z/bw)
}

// CellIndex returns the position of grid cell (x, y, z) inside its block.
func (l Layout) CellIndex(x, y, z int) int {
	bw := l.BlockWidth
	return x%bw + bw*(y%bw) + bw*bw*(z%bw)
}

// blockOrigin returns the grid coordinates of a block's first cell.
func (l Layout) blockOrigin(b int) (x, y, z int) {
	baw := l.BlockArrayWidth
	return l.BlockWidth * (b % baw),
		l.BlockWidth * ((b / baw) % baw),
		l.BlockWidth * (b / (baw * baw))
}

// NewBlocks allocates a zeroed block set.
func (l Layout) NewBlocks() [][]float32 {
	size := l.BlockSize()
	backing := make([]float32, l.BlockCount()*size)
	blocks := make([][]float32, l.BlockCount())
	for i := range blocks {
		blocks[i] = backing[i*size : (i+1)*size : (i+1)*size]
	}
	return blocks
}

// SplitGrid copies a grid into a newly allocated block set.
func (l Layout) SplitGrid(grid []float32) [][]float32 {
	blocks := l.NewBlocks()
	l.splitInto(grid, blocks)
	return blocks
}

// splitInto copies every block of grid into blocks.
func (l Layout) splitInto(grid []float32, blocks [][]float32) {
	for b, block := range blocks {
		l.gather(grid, b, block)
	}
}

// JoinGrids reassembles a block set into a newly allocated grid.
func (l Layout) JoinGrids(blocks [][]float32) []float32 {
	grid := make([]float32, l.GridSize())
	for b, block := range blocks {
		l.scatter(grid, b, block)
	}
	return grid
}

// gather copies block b of grid into dst, one x-run at a time.
func (l Layout) gather(grid []float32, b int, dst []float32) {
	ox, oy, oz := l.blockOrigin(b)
	gw, bw := l.GridWidth, l.BlockWidth
	n := 0
	for z := oz; z < oz+bw; z++ {
		for y := oy; y < oy+bw; y++ {
			row := ox + gw*y + gw*gw*z
			copy(dst[n:n+bw], grid[row:row+bw])
			n += bw
		}
	}
}

// scatter writes src into block b of grid.
func (l Layout) scatter(grid []float32, b int, src []float32) {
	ox, oy, oz := l.blockOrigin(b)
	gw, bw := l.GridWidth, l.BlockWidth
	n := 0
	for z := oz; z < oz+bw; z++ {
		for y := oy; y < oy+bw; y++ {
			row := ox + gw*y + gw*gw*z
			copy(grid[row:row+bw], src[n:n+bw])
			n += bw
		}
	}
}

// GetDifferenceBlocks returns, in ascending order, the index of every block
// where some cell of a and b differs by more than DiffTolerance.
func GetDifferenceBlocks(a, b [][]float32) []int {
	var changed []int
	for i := range a {
		if blockChanged(a[i], b[i]) {
			changed = append(changed, i)
		}
	}
	return changed
}

func blockChanged(a, b []float32) bool {
	for i := range a {
		if math.Abs(float64(a[i])-float64(b[i])) > DiffTolerance {
			return true
		}
	}
	return false
}
