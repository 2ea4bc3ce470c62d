// Package wavelet implements the lifting-scheme wavelet transform used
// to decompose each vibrotactile block into a low-pass approximation
// band and a pyramid of high-pass detail bands (spec §4.1).
//
// The filter is a biorthogonal 9/7-like wavelet built from four
// lifting steps, each a two-tap FIR applied with a one-sided boundary
// extension: filterAdd mirrors the left edge (so the first sample's
// contribution lands twice at index 0), filterShiftAdd mirrors the
// right edge (so the last sample's contribution lands twice at the
// final index). Both read one band and accumulate into the other in
// place, exactly like the reference wavelet's lifting steps.
//
// As in JPEG 2000's lifting DWT, repeated forward/inverse calls over
// many blocks would otherwise churn the allocator on every call; the
// buffer pool below follows the same sync.Pool pattern the JPEG 2000
// teacher code uses for its lifting scratch space.
package wavelet

import "sync"

const (
	h1 = -1.5861343420693648
	h2 = -0.0529801185718856
	h3 = 0.8829110755411875
	h4 = 0.4435068520511142

	scaleFactor = 1.1496043988602418
)

var bufPool = sync.Pool{
	New: func() interface{} {
		buf := make([]float64, 512)
		return &buf
	},
}

func getBuf(n int) []float64 {
	bp := bufPool.Get().(*[]float64)
	buf := *bp
	if cap(buf) < n {
		buf = make([]float64, n)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

func putBuf(buf []float64) {
	bp := &buf
	bufPool.Put(bp)
}

// filterAdd accumulates h*(in[j]+in[j-1]) into out[j] for j>=1, mirroring
// the left edge so out[0] receives 2*h*in[0].
func filterAdd(in, out []float64, h float64) {
	n := len(in)
	out[0] += 2 * h * in[0]
	for j := 1; j < n; j++ {
		out[j] += h * (in[j] + in[j-1])
	}
}

// filterShiftAdd accumulates h*(in[j]+in[j+1]) into out[j] for j<n-1,
// mirroring the right edge so out[n-1] receives 2*h*in[n-1].
func filterShiftAdd(in, out []float64, h float64) {
	n := len(in)
	for j := 0; j < n-1; j++ {
		out[j] += h * (in[j] + in[j+1])
	}
	out[n-1] += 2 * h * in[n-1]
}

// Forward applies levels successive stages of the forward transform to
// data in place. After the call, data[0:len(data)>>levels] holds the
// coarsest approximation band, followed by the detail bands from
// coarsest to finest, the usual pyramidal DWT layout. len(data) must be
// divisible by 1<<levels.
func Forward(data []float64, levels int) {
	n := len(data)
	for k := 0; k < levels; k++ {
		nHalf := n / 2
		x0 := getBuf(nHalf)
		x1 := getBuf(nHalf)
		for i := 0; i < nHalf; i++ {
			x0[i] = data[2*i]
			x1[i] = data[2*i+1]
		}

		filterShiftAdd(x0, x1, h1)
		filterAdd(x1, x0, h2)
		filterShiftAdd(x0, x1, h3)
		filterAdd(x1, x0, h4)

		for i := 0; i < nHalf; i++ {
			data[i] = x0[i] * scaleFactor
			data[nHalf+i] = -x1[i] / scaleFactor
		}

		putBuf(x0)
		putBuf(x1)
		n = nHalf
	}
}

// Inverse undoes levels successive stages of Forward, restoring data
// to the time domain in place.
func Inverse(data []float64, levels int) {
	n := len(data) >> uint(levels-1)
	for k := 0; k < levels; k++ {
		nHalf := n / 2
		x0 := getBuf(nHalf)
		x1 := getBuf(nHalf)
		for i := 0; i < nHalf; i++ {
			x0[i] = data[i] / scaleFactor
			x1[i] = -data[nHalf+i] * scaleFactor
		}

		filterAdd(x1, x0, -h4)
		filterShiftAdd(x0, x1, -h3)
		filterAdd(x1, x0, -h2)
		filterShiftAdd(x0, x1, -h1)

		for i := 0; i < nHalf; i++ {
			data[2*i] = x0[i]
			data[2*i+1] = x1[i]
		}

		putBuf(x0)
		putBuf(x1)
		n *= 2
	}
}
