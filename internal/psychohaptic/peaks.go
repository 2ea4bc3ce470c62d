// Package psychohaptic implements the perceptual analysis stage that
// drives bit allocation: a DCT-based spectral estimate, a
// signal-independent perceptual threshold curve, and a peak-driven
// masking curve combined into a per-subband signal-to-mask ratio
// (spec §4.2).
package psychohaptic

import "math"

// Peak is a single detected spectral peak: Location is the bin index,
// Height is either the spectrum value at that bin or, once peaks have
// been through PeakProminence, the peak's prominence above its
// surrounding valleys.
type Peak struct {
	Location int
	Height   float64
}

const peakHugeVal = math.MaxFloat64

// FindAllPeakLocations returns every local maximum in x: one or more
// samples of equal height with a strictly smaller sample on each
// side. A plateau is reported at the index of its first sample,
// mirroring MATLAB's findpeaks on a run of equal values. Neither the
// first nor the last sample can be a peak.
func FindAllPeakLocations(x []float64) []Peak {
	var peaks []Peak
	n := len(x)
	if n < 3 {
		return peaks
	}
	i := 1
	iMax := n - 1
	for i < iMax {
		if x[i-1] < x[i] {
			switch {
			case x[i+1] < x[i]:
				peaks = append(peaks, Peak{Location: i, Height: x[i]})
			case x[i+1] == x[i]:
				iPlateau := i + 1
				for iPlateau < iMax && x[iPlateau+1] == x[i] {
					iPlateau++
				}
				if iPlateau < iMax && x[iPlateau+1] < x[i] {
					peaks = append(peaks, Peak{Location: i, Height: x[i]})
					i = iPlateau
				} else {
					i = iPlateau
				}
			}
		}
		i++
	}
	return peaks
}

// PeakProminence replaces each peak's height with its topographic
// prominence: the drop to the higher of its two flanking valleys,
// where a valley is the lowest sample between the peak and the
// nearest taller peak in peaks, or the edge of the spectrum when no
// taller peak lies on that side. A peak on the first or last sample
// has nothing to search on that side, and that side's valley counts
// as negative infinity rather than a real valley height.
func PeakProminence(spectrum []float64, peaks []Peak) []Peak {
	n := len(peaks)
	prominences := make([]Peak, n)
	for i, p := range peaks {
		prominences[i] = Peak{Location: p.Location, Height: 0}
	}

	for i := 0; i < n; i++ {
		var leftHeight, rightHeight float64

		if peaks[i].Location == 0 {
			leftHeight = -peakHugeVal
		} else {
			jMin := 0
			for k := i - 1; k >= 0; k-- {
				if peaks[k].Height > peaks[i].Height {
					jMin = peaks[k].Location
					break
				}
			}
			jMax := peaks[i].Location - 1
			minVal := peaks[i].Height
			valley := jMax
			for j := jMax; j >= jMin; j-- {
				if spectrum[j] <= minVal {
					minVal = spectrum[j]
					valley = j
				}
			}
			leftHeight = spectrum[valley]
		}

		jMax := len(spectrum) - 1
		for k := i + 1; k < n; k++ {
			if peaks[k].Height > peaks[i].Height {
				jMax = peaks[k].Location
				break
			}
		}
		jMin := peaks[i].Location + 1
		if jMin > jMax {
			rightHeight = -peakHugeVal
		} else {
			minVal := peaks[i].Height
			valley := jMin
			for j := jMin; j <= jMax; j++ {
				if spectrum[j] <= minVal {
					minVal = spectrum[j]
					valley = j
				}
			}
			rightHeight = spectrum[valley]
		}

		prominences[i].Height = peaks[i].Height - math.Max(leftHeight, rightHeight)
	}
	return prominences
}

// FilterPeakCriterion keeps only the peaks whose Height is at least
// minVal.
func FilterPeakCriterion(peaks []Peak, minVal float64) []Peak {
	var out []Peak
	for _, p := range peaks {
		if p.Height >= minVal {
			out = append(out, p)
		}
	}
	return out
}

// FindPeaks detects every local maximum in spectrum, discards those
// below minHeight, measures the survivors' prominence, discards those
// below minProminence, and returns the remainder with their original
// spectrum heights restored (not their prominence values).
func FindPeaks(spectrum []float64, minProminence, minHeight float64) []Peak {
	all := FindAllPeakLocations(spectrum)
	if len(all) == 0 {
		return all
	}
	byHeight := FilterPeakCriterion(all, minHeight)
	if len(byHeight) == 0 {
		return byHeight
	}
	prominences := PeakProminence(spectrum, byHeight)
	byProminence := FilterPeakCriterion(prominences, minProminence)

	out := make([]Peak, len(byProminence))
	for i, p := range byProminence {
		out[i] = Peak{Location: p.Location, Height: spectrum[p.Location]}
	}
	return out
}
