package wavelet

import (
	"math"
	"testing"
)

func TestForwardInverseRoundtrip(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		levels int
	}{
		{"level1-len128", 128, 1},
		{"level2-len128", 128, 2},
		{"level3-len256", 256, 3},
		{"level4-len512", 512, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := make([]float64, tt.n)
			for i := range original {
				original[i] = math.Sin(float64(i)*0.13) + 0.2*float64(i%7)
			}
			data := append([]float64(nil), original...)

			Forward(data, tt.levels)
			Inverse(data, tt.levels)

			for i := range data {
				if diff := math.Abs(data[i] - original[i]); diff > 1e-9 {
					t.Fatalf("sample %d: roundtrip diff %g (got %g, want %g)", i, diff, data[i], original[i])
				}
			}
		})
	}
}

func TestForwardProducesDistinctBands(t *testing.T) {
	data := make([]float64, 64)
	for i := range data {
		data[i] = float64(i)
	}
	Forward(data, 1)

	var lowEnergy, highEnergy float64
	for i := 0; i < 32; i++ {
		lowEnergy += data[i] * data[i]
	}
	for i := 32; i < 64; i++ {
		highEnergy += data[i] * data[i]
	}
	if lowEnergy <= highEnergy {
		t.Errorf("expected low-pass band to carry more energy than high-pass for a smooth ramp: low=%g high=%g", lowEnergy, highEnergy)
	}
}

func TestForwardZeroInputStaysZero(t *testing.T) {
	data := make([]float64, 256)
	Forward(data, 3)
	for i, v := range data {
		if v != 0 {
			t.Fatalf("sample %d: got %g, want 0", i, v)
		}
	}
}
