package fluid

import (
	"fmt"
	"strings"
)

// String returns the lower-case axis name.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// Next cycles x -> y -> z -> x.
func (a Axis) Next() Axis {
	return (a + 1) % 3
}

// ParseAxis accepts "x", "y" or "z" in any case.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("fluid: unknown axis %q", s)
}

// Slice copies the plane of f perpendicular to axis at the given index into
// dst, which is grown to width*width if needed. Rows run along the second
// free axis and columns along the first:
//
//	AxisZ: dst[i + width*j] = f(i, j, index)
//	AxisY: dst[i + width*k] = f(i, index, k)
//	AxisX: dst[k + width*j] = f(index, j, k)
//
// index is clamped to [0, width-1].
func Slice(f Field, width int, axis Axis, index int, dst []float32) []float32 {
	n := width * width
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	if index < 0 {
		index = 0
	}
	if index > width-1 {
		index = width - 1
	}

	switch axis {
	case AxisZ:
		copy(dst, f[n*index:n*(index+1)])
	case AxisY:
		for k := 0; k < width; k++ {
			copy(dst[width*k:width*(k+1)], f[width*index+n*k:width*index+n*k+width])
		}
	case AxisX:
		for j := 0; j < width; j++ {
			for k := 0; k < width; k++ {
				dst[k+width*j] = f[index+width*j+n*k]
			}
		}
	}
	return dst
}
