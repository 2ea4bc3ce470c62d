package psychohaptic

import "math"

// MaxBits is the per-subband bit cap the allocation loop in package
// alloc enforces; it belongs conceptually to the perceptual model
// because it is the point at which a subband's SMR stops being able
// to influence allocation at all.
const MaxBits = 15

const (
	minPeakProminence = 12
	minHeightDiff     = 45

	thrA = 62
	thrC = 1.0 / 550.0
	thrB = 1 - 250*thrC
	thrE = 77

	peakA = 5.0
	peakB = 1400.0
	peakC = 30.0

	baseLog   = 10
	factorLog = 10
)

// Model holds the per-block-length, per-sample-rate state the
// perceptual analysis needs: the subband book describing how DCT bins
// map onto wavelet subbands, the frequency vector those bins
// correspond to, and the signal-independent perceptual threshold
// curve derived from that frequency vector.
type Model struct {
	blockLength int
	sampleRate  int

	book           []int
	bookCumulative []int
	numBands       int

	freqs     []float64
	percThres []float64
}

// NewModel builds a Model for the given wavelet block length and
// sample rate. blockLength must be a power of two large enough to
// carry at least one level of wavelet decomposition.
func NewModel(blockLength, sampleRate int) *Model {
	m := &Model{blockLength: blockLength, sampleRate: sampleRate}

	dwtLevel := int(math.Log2(float64(blockLength))) - 2
	m.numBands = dwtLevel + 1

	m.book = make([]int, m.numBands)
	m.bookCumulative = make([]int, m.numBands+1)
	m.book[0] = blockLength >> dwtLevel
	m.book[1] = m.book[0]
	m.bookCumulative[1] = m.book[0]
	m.bookCumulative[2] = m.book[1] << 1
	for i := 2; i < m.numBands; i++ {
		m.book[i] = m.book[i-1] << 1
		m.bookCumulative[i+1] = m.bookCumulative[i] << 1
	}

	m.setFreqVector()
	m.buildPerceptualThreshold()
	return m
}

// NumBands is the number of wavelet subbands Analyze reports over.
func (m *Model) NumBands() int { return m.numBands }

// Book returns the size, in DCT bins, of each wavelet subband.
func (m *Model) Book() []int { return m.book }

// BookCumulative returns the cumulative subband boundaries: subband b
// spans DCT bins [BookCumulative()[b], BookCumulative()[b+1]).
func (m *Model) BookCumulative() []int { return m.bookCumulative }

func (m *Model) setFreqVector() {
	m.freqs = make([]float64, m.blockLength)
	step := float64(m.sampleRate) / float64(2*m.blockLength-1)
	freq := 0.0
	for i := range m.freqs {
		m.freqs[i] = freq
		freq += step
	}
}

// buildPerceptualThreshold precomputes the signal-independent
// threshold-in-quiet curve: a fletcher-munson-shaped dip that rises
// and flattens to 1 (full masking immunity) above some frequency,
// then holds flat for the rest of the block.
func (m *Model) buildPerceptualThreshold() {
	m.percThres = make([]float64, m.blockLength)
	temp := thrA / math.Pow(math.Log10(thrB), 2)

	curve := func(f float64) float64 {
		v := temp * math.Pow(math.Log10(thrC*f+thrB), 2)
		return math.Pow(baseLog, (math.Abs(v)-thrE)/factorLog)
	}

	m.percThres[0] = curve(m.freqs[0])
	i := 1
	for {
		m.percThres[i] = curve(m.freqs[i])
		if m.percThres[i] >= 1 {
			m.percThres[i] = 1
			break
		}
		i++
		if i >= m.blockLength-1 {
			break
		}
	}
	i++
	for ; i < m.blockLength; i++ {
		m.percThres[i] = m.percThres[i-1]
	}
}

// DCT returns the dB-scaled type-II discrete cosine transform of
// data, the spectral estimate Analyze and globalMaskingThreshold
// operate on.
func DCT(data []float64) []float64 {
	n := len(data)
	raw := make([]float64, n)
	for k := 0; k < n; k++ {
		var sum float64
		for j := 0; j < n; j++ {
			sum += data[j] * math.Cos(math.Pi/float64(n)*(float64(j)+0.5)*float64(k))
		}
		raw[k] = 2 * sum
	}

	spect := make([]float64, n)
	spect[0] = 20 * math.Log10(math.Abs(raw[0]/(2*math.Sqrt(float64(n)))))
	temp := 1 / math.Sqrt(2*float64(n))
	for i := 1; i < n; i++ {
		spect[i] = 20 * math.Log10(math.Abs(temp*raw[i]))
	}
	return spect
}

// peakMask builds a masking curve from a set of detected peaks: at
// every frequency bin, the maximum over all peaks of a parabolic (in
// dB) spreading function centered on that peak. Returns nil if there are
// no peaks.
func (m *Model) peakMask(peaks []Peak) []float64 {
	if len(peaks) == 0 {
		return nil
	}
	mask := make([]float64, m.blockLength)
	for pi, p := range peaks {
		f := m.freqs[p.Location]
		sum1 := p.Height - peakA + (peakA/peakB)*f
		factor1 := -peakC / (f * f)
		for i := 0; i < m.blockLength; i++ {
			d := m.freqs[i] - f
			val := d*d*factor1 + sum1
			if pi == 0 || val > mask[i] {
				mask[i] = val
			}
		}
	}
	return mask
}

// globalMaskingThreshold combines the perceptual threshold curve with
// the masking contribution of any detected spectral peaks.
func (m *Model) globalMaskingThreshold(spect []float64) []float64 {
	minHeight := findMax(spect) - minHeightDiff
	peaks := FindPeaks(spect, minPeakProminence, minHeight)
	mask := m.peakMask(peaks)

	global := make([]float64, m.blockLength)
	if mask == nil {
		copy(global, m.percThres)
		return global
	}
	for i := range global {
		global[i] = math.Pow(baseLog, mask[i]/factorLog) + m.percThres[i]
	}
	return global
}

// Analyze runs the perceptual model on one signal block, returning
// the per-subband signal-to-mask ratio (in dB) and the per-subband
// linear-domain band energy. Both slices have length NumBands().
func (m *Model) Analyze(block []float64) (smr, bandEnergy []float64) {
	spect := DCT(block)
	global := m.globalMaskingThreshold(spect)

	smr = make([]float64, m.numBands)
	bandEnergy = make([]float64, m.numBands)
	maskEnergy := make([]float64, m.numBands)

	i := 0
	for b := 0; b < m.numBands; b++ {
		for ; i < m.bookCumulative[b+1]; i++ {
			bandEnergy[b] += math.Pow(baseLog, spect[i]/factorLog)
			maskEnergy[b] += global[i]
		}
		smr[b] = factorLog * math.Log10(bandEnergy[b]/maskEnergy[b])
	}
	return smr, bandEnergy
}

func findMax(x []float64) float64 {
	m := x[0]
	for _, v := range x[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
