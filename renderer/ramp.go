package renderer

import "image/color"

// rampStops are the colours a scaled density of 0, 0.5 and 1 maps to.
var rampStops = [3]color.RGBA{
	{R: 8, G: 10, B: 18, A: 255},
	{R: 70, G: 110, B: 180, A: 255},
	{R: 245, G: 245, B: 250, A: 255},
}

// Ramp maps a density to a colour. gain scales density before clamping to
// [0, 1]; a gain of 0.25 saturates at a density of 4.
func Ramp(density, gain float32) color.RGBA {
	t := density * gain
	if t <= 0 {
		return rampStops[0]
	}
	if t >= 1 {
		return rampStops[2]
	}
	lo, hi := rampStops[0], rampStops[1]
	t *= 2
	if t > 1 {
		lo, hi = rampStops[1], rampStops[2]
		t--
	}
	return color.RGBA{
		R: lerp8(lo.R, hi.R, t),
		G: lerp8(lo.G, hi.G, t),
		B: lerp8(lo.B, hi.B, t),
		A: 255,
	}
}

func lerp8(a, b uint8, t float32) uint8 {
	return uint8(float32(a) + (float32(b)-float32(a))*t)
}

// RampPixels converts a slice of densities into pixels, reusing dst.
func RampPixels(values []float32, gain float32, dst []color.RGBA) []color.RGBA {
	if cap(dst) < len(values) {
		dst = make([]color.RGBA, len(values))
	}
	dst = dst[:len(values)]
	for i, v := range values {
		dst[i] = Ramp(v, gain)
	}
	return dst
}
