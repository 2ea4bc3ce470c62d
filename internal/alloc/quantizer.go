// Package alloc implements the uniform mid-tread quantizer and the
// perceptual bit-allocation loop that decides how many bits each
// wavelet subband gets (spec §4.3, §4.4).
package alloc

import "math"

const halfQuant = 0.5

// Sgn returns -1, 0, or 1 according to the sign of v.
func Sgn(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// UniformQuant quantizes in[start:start+length] into out[start:start+length]
// with a mid-tread quantizer of step size max/2^bits, saturating at
// +/-(max - one step).
func UniformQuant(in, out []float64, start, length int, max float64, bits int) {
	delta := max / float64(int(1)<<bits)
	maxQ := delta * float64((int(1)<<bits)-1)
	for i := start; i < start+length; i++ {
		out[i] = quantizeOne(in[i], delta, maxQ)
	}
}

// UniformQuantScalar quantizes a single value with the same mid-tread
// rule as UniformQuant.
func UniformQuantScalar(in, max float64, bits int) float64 {
	delta := max / float64(int(1)<<bits)
	maxQ := delta * float64((int(1)<<bits)-1)
	return quantizeOne(in, delta, maxQ)
}

func quantizeOne(v, delta, maxQ float64) float64 {
	sign := Sgn(v)
	q := sign * delta * math.Floor(math.Abs(v)/delta+halfQuant)
	if math.Abs(q) > maxQ {
		return sign * maxQ
	}
	return q
}

// MaxQuant quantizes in with an adaptive fixed-point representation of
// b1 integer bits and b2 fraction bits, rounding up to the next
// representable step and saturating at the representable maximum
// rather than wrapping.
func MaxQuant(in float64, b1, b2 int) float64 {
	max := (float64(int(1)<<(b1+b2)) - 1) / float64(int(1)<<b2)

	q := in
	if q >= max {
		q = Sgn(q) * max * 0.999
	}
	delta := math.Pow(2, float64(-b2))
	return math.Ceil(math.Abs(q)/delta) * delta
}
