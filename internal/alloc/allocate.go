package alloc

import (
	"math"

	"github.com/vc-pwq/vcpwq/internal/psychohaptic"
)

// Adaptive fixed-point formats for the per-block maximum wavelet
// coefficient: mode 0 covers |max| < 1 with no integer bits, mode 1
// covers |max| >= 1 with a 3-bit integer part. Both modes plus their
// 1-bit mode flag pack into WavMaxBits bits.
const (
	IntegerBits0  = 0
	FractionBits0 = 7
	IntegerBits1  = 3
	FractionBits1 = 4

	// WavMaxBits is the total header width (1 mode bit + the wider of
	// the two payload widths) that carries the block's maximum
	// wavelet coefficient.
	WavMaxBits = 8
)

// MaxCoefficient describes the quantized maximum wavelet coefficient
// of a block, in the format the bitstream header carries it in.
type MaxCoefficient struct {
	QWavMax       float64
	Mode          int
	IntegerBits   int
	FractionBits  int
	FractionValue int
}

// ComputeMaxCoefficient finds the largest-magnitude coefficient in
// sig and quantizes it into one of the two adaptive fixed-point
// formats.
func ComputeMaxCoefficient(sig []float64) MaxCoefficient {
	wavmax := findMaxAbs(sig)

	integerPart := 0
	integerBits := IntegerBits0
	fractionBits := FractionBits0
	mode := 0
	if wavmax >= 1 {
		integerPart = 1
		integerBits = IntegerBits1
		fractionBits = FractionBits1
		mode = 1
	}

	qwavmax := MaxQuant(wavmax-float64(integerPart), integerBits, fractionBits) + float64(integerPart)
	fractionValue := int((qwavmax - float64(integerPart)) * math.Pow(2, float64(fractionBits)))

	return MaxCoefficient{
		QWavMax:       qwavmax,
		Mode:          mode,
		IntegerBits:   integerBits,
		FractionBits:  fractionBits,
		FractionValue: fractionValue,
	}
}

// DecodeMaxCoefficient reverses ComputeMaxCoefficient's encoding given
// the mode bit and the raw fixed-point value read back off the wire.
func DecodeMaxCoefficient(mode, fractionValue int) float64 {
	if mode == 0 {
		return float64(fractionValue) * math.Pow(2, -float64(FractionBits0))
	}
	return float64(fractionValue)*math.Pow(2, -float64(FractionBits1)) + 1
}

// Allocate runs the greedy mask-to-noise-ratio bit allocation loop
// over one wavelet-transformed block, handing out bits one at a time
// to whichever subband currently has the worst MNR until bitBudget
// bits have been spent. It returns the quantized block and the final
// per-subband bit allocation.
//
// The lowest subband (index len(book)-1, the finest detail band) is
// clamped once every other subband has used its full MaxBits
// allowance, so the remaining budget lands there directly instead of
// trickling in one bit at a time.
func Allocate(blockDWT, smr, bandEnergy []float64, book, bookCumulative []int, qwavmax float64, bitBudget, dwtLevel int) (quant []float64, bitAlloc []int) {
	lBook := len(book)
	quant = make([]float64, len(blockDWT))
	bitAlloc = make([]int, lBook)
	noiseEnergy := make([]float64, lBook)
	snr := make([]float64, lBook)
	mnr := make([]float64, lBook)

	i := 0
	for b := 0; b < lBook; b++ {
		for ; i < bookCumulative[b+1]; i++ {
			d := blockDWT[i] - quant[i]
			noiseEnergy[b] += d * d
		}
	}

	bitAllocSum := 0
	for bitAllocSum < bitBudget {
		updateNoise(bandEnergy, noiseEnergy, snr, mnr, smr)
		for b := 0; b < lBook; b++ {
			if bitAlloc[b] >= psychohaptic.MaxBits {
				mnr[b] = math.Inf(1)
			}
		}
		index := findMinInd(mnr)

		if bitAllocSum-bitAlloc[lBook-1] >= psychohaptic.MaxBits*dwtLevel {
			prev := bitAlloc[lBook-1]
			bitAlloc[lBook-1] = bitBudget - psychohaptic.MaxBits*dwtLevel
			bitAllocSum += bitAlloc[lBook-1] - prev
		} else {
			bitAlloc[index]++
			bitAllocSum++
		}

		UniformQuant(blockDWT, quant, bookCumulative[index], book[index], qwavmax, bitAlloc[index])

		noiseEnergy[index] = 0
		for i := bookCumulative[index]; i < bookCumulative[index+1]; i++ {
			d := blockDWT[i] - quant[i]
			noiseEnergy[index] += d * d
		}
	}
	return quant, bitAlloc
}

// updateNoise recomputes the signal-to-noise and mask-to-noise ratios
// for every subband from its current quantization noise energy.
func updateNoise(bandEnergy, noiseEnergy, snr, mnr, smr []float64) {
	for i := range snr {
		snr[i] = 10 * math.Log10(bandEnergy[i]/noiseEnergy[i])
		mnr[i] = snr[i] - smr[i]
	}
}

func findMinInd(data []float64) int {
	min := data[0]
	index := 0
	for i, v := range data {
		if v < min {
			min = v
			index = i
		}
	}
	return index
}

func findMaxAbs(data []float64) float64 {
	max := 0.0
	for _, v := range data {
		if a := math.Abs(v); a > max {
			max = a
		}
	}
	return max
}
