// Package vcpwq implements the VC-PWQ vibrotactile waveform codec: a
// lossy codec built from a lifting-scheme wavelet transform, a
// psychohaptic perceptual model, a greedy bit allocator, SPIHT
// bit-plane coding, and a context-adaptive binary arithmetic coder.
//
// Basic usage for encoding:
//
//	enc, err := vcpwq.NewEncoder(vcpwq.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	bits, err := enc.Encode1D(samples, 120)
//
// Basic usage for decoding:
//
//	dec := vcpwq.NewDecoder(vcpwq.DefaultOptions())
//	samples, err := dec.Decode1D(bits)
package vcpwq

import (
	"fmt"
	"math"

	"github.com/vc-pwq/vcpwq/internal/framing"
	"github.com/vc-pwq/vcpwq/internal/psychohaptic"
	"github.com/vc-pwq/vcpwq/internal/wlog"
)

// Options holds the configuration shared by Encoder and Decoder:
// the block length and sampling rate the wavelet/psychohaptic stages
// are tuned for, and the channel-count field width both sides of the
// bitstream must agree on.
type Options struct {
	// BlockLength is the number of samples per coded block. Must be
	// one of framing.BL0..BL4.
	BlockLength int

	// SampleRate is the signal's sampling rate in Hz, used to tune the
	// psychohaptic model's frequency mapping. Encoded as one of
	// framing.FS0..FS2, or the reserved "unknown" code for any other
	// value.
	SampleRate int

	// MaxChannels bounds the width of the bitstream's channel-count
	// field. Must match between the Encoder and Decoder reading its
	// output.
	MaxChannels int

	// Logger receives warn-and-continue diagnostics (oversized bit
	// budgets, clamped header fields). A nil Logger discards them.
	// Truncation of an oversized SPIHT payload is not reported.
	Logger wlog.Logger
}

// DefaultOptions returns the configuration this package exercises
// most: a mid-sized 64-sample block at a typical vibrotactile
// sampling rate, with channel framing sized for up to 8 channels.
func DefaultOptions() *Options {
	return &Options{
		BlockLength: framing.BL1,
		SampleRate:  framing.FS1,
		MaxChannels: framing.DefaultMaxChannels,
	}
}

// MaxBitBudget returns the largest bit budget a block of the given
// length can usefully spend: MaxBits per subband, across every
// subband the wavelet decomposition produces.
func MaxBitBudget(blockLength int) int {
	lBook := framing.DWTLevel(blockLength) + 1
	return psychohaptic.MaxBits * lBook
}

func validateBlockLength(bl int) error {
	for _, v := range framing.BlockLengths() {
		if bl == v {
			return nil
		}
	}
	return fmt.Errorf("vcpwq: unsupported block length %d", bl)
}

// checkZeros reports whether every wavelet coefficient in block is
// within floating-point noise of zero, the all-zero-block short
// circuit that lets a silent block skip bit allocation and SPIHT
// entirely.
func checkZeros(block []float64) bool {
	for _, v := range block {
		if math.Abs(v) > 1e-10 {
			return false
		}
	}
	return true
}

func maxInt(s []int) int {
	m := s[0]
	for _, v := range s[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
