package psychohaptic

import (
	"math"
	"testing"
)

func TestNewModelBookSizes(t *testing.T) {
	m := NewModel(512, 4000)
	// dwtlevel = log2(512)-2 = 7, numBands = 8
	if m.NumBands() != 8 {
		t.Fatalf("NumBands() = %d, want 8", m.NumBands())
	}
	total := 0
	for _, b := range m.book {
		total += b
	}
	if total != 512 {
		t.Errorf("book sizes sum to %d, want %d", total, m.blockLength)
	}
	if m.bookCumulative[m.numBands] != 512 {
		t.Errorf("bookCumulative[last] = %d, want 512", m.bookCumulative[m.numBands])
	}
}

func TestPerceptualThresholdCapsAtOne(t *testing.T) {
	m := NewModel(256, 4000)
	for i := 1; i < len(m.percThres); i++ {
		if m.percThres[i] > 1 {
			t.Fatalf("percThres[%d] = %v, exceeds cap of 1", i, m.percThres[i])
		}
	}
	if m.percThres[len(m.percThres)-1] != 1 {
		t.Errorf("percThres should flatten to 1 at high frequencies, got %v", m.percThres[len(m.percThres)-1])
	}
}

func TestDCTDCComponentForConstantSignal(t *testing.T) {
	data := make([]float64, 64)
	for i := range data {
		data[i] = 1.0
	}
	spect := DCT(data)
	if len(spect) != 64 {
		t.Fatalf("DCT returned %d bins, want 64", len(spect))
	}
	// A constant signal should concentrate nearly all energy in bin 0.
	for i := 1; i < len(spect); i++ {
		if spect[i] > spect[0] {
			t.Errorf("bin %d (%v dB) exceeds DC bin (%v dB) for a constant input", i, spect[i], spect[0])
		}
	}
}

func TestPeakMaskMatchesFormulaAtPeakFrequency(t *testing.T) {
	m := NewModel(256, 4000)
	loc := 10
	height := 40.0
	fp := m.freqs[loc]

	mask := m.peakMask([]Peak{{Location: loc, Height: height}})

	// At f == fp the (pc/fp^2)*(f-fp)^2 term vanishes, leaving
	// hp - pa + (pa/pb)*fp exactly (spec's peak-masking formula).
	want := height - peakA + (peakA/peakB)*fp
	if math.Abs(mask[loc]-want) > 1e-9 {
		t.Errorf("peakMask at peak frequency = %v, want %v", mask[loc], want)
	}

	// peakA/peakB must be a genuine fraction, not an integer-truncated
	// zero, or this whole assertion would pass trivially.
	if peakA/peakB == 0 {
		t.Fatalf("peakA/peakB truncated to 0, want a nonzero fraction")
	}
}

func TestAnalyzeReturnsPerBandValues(t *testing.T) {
	m := NewModel(256, 4000)
	block := make([]float64, 256)
	for i := range block {
		block[i] = math.Sin(float64(i) * 0.3)
	}
	smr, bandEnergy := m.Analyze(block)
	if len(smr) != m.NumBands() || len(bandEnergy) != m.NumBands() {
		t.Fatalf("Analyze returned %d/%d values, want %d", len(smr), len(bandEnergy), m.NumBands())
	}
	for b, e := range bandEnergy {
		if e < 0 {
			t.Errorf("bandEnergy[%d] = %v, want >= 0", b, e)
		}
	}
}
