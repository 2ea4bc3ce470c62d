package psychohaptic

import (
	"reflect"
	"testing"
)

func TestFindAllPeakLocationsSingleSamplePeak(t *testing.T) {
	x := []float64{0, 1, 3, 1, 0}
	got := FindAllPeakLocations(x)
	want := []Peak{{Location: 2, Height: 3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindAllPeakLocations(%v) = %v, want %v", x, got, want)
	}
}

func TestFindAllPeakLocationsPlateauReportsFirstIndex(t *testing.T) {
	x := []float64{0, 1, 5, 5, 5, 1, 0}
	got := FindAllPeakLocations(x)
	want := []Peak{{Location: 2, Height: 5}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindAllPeakLocations(%v) = %v, want %v", x, got, want)
	}
}

func TestFindAllPeakLocationsNoFirstOrLastPeak(t *testing.T) {
	x := []float64{5, 1, 1, 1, 5}
	got := FindAllPeakLocations(x)
	if len(got) != 0 {
		t.Fatalf("FindAllPeakLocations(%v) = %v, want no peaks", x, got)
	}
}

func TestPeakProminenceValleySearchRunsToSpectrumEdge(t *testing.T) {
	x := []float64{10, 2, 6, 2, 10}
	peaks := []Peak{{Location: 2, Height: 6}}
	got := PeakProminence(x, peaks)
	if len(got) != 1 {
		t.Fatalf("PeakProminence returned %d peaks, want 1", len(got))
	}
	want := 4.0 // 6 - max(valley_left=2, valley_right=2)
	if got[0].Height != want {
		t.Errorf("PeakProminence height = %v, want %v", got[0].Height, want)
	}
}

func TestFilterPeakCriterion(t *testing.T) {
	peaks := []Peak{{Location: 0, Height: 5}, {Location: 1, Height: 15}, {Location: 2, Height: 9}}
	got := FilterPeakCriterion(peaks, 10)
	want := []Peak{{Location: 1, Height: 15}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FilterPeakCriterion = %v, want %v", got, want)
	}
}

func TestFindPeaksEmptySpectrumHasNoPeaks(t *testing.T) {
	x := make([]float64, 512)
	got := FindPeaks(x, 12, -1000)
	if len(got) != 0 {
		t.Fatalf("FindPeaks(flat) = %v, want no peaks", got)
	}
}

func TestFindPeaksDetectsDominantTone(t *testing.T) {
	x := make([]float64, 512)
	for i := range x {
		x[i] = -80
	}
	x[64] = -10
	got := FindPeaks(x, 12, -60)
	if len(got) != 1 || got[0].Location != 64 {
		t.Fatalf("FindPeaks = %v, want single peak at 64", got)
	}
	if got[0].Height != -10 {
		t.Errorf("FindPeaks height = %v, want -10 (original spectrum height, not prominence)", got[0].Height)
	}
}
