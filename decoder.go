package vcpwq

import (
	"github.com/vc-pwq/vcpwq/internal/arith"
	"github.com/vc-pwq/vcpwq/internal/bitio"
	"github.com/vc-pwq/vcpwq/internal/framing"
	"github.com/vc-pwq/vcpwq/internal/spiht"
	"github.com/vc-pwq/vcpwq/internal/wavelet"
	"github.com/vc-pwq/vcpwq/internal/wlog"
)

// Decoder reverses what an Encoder produces. Unlike the Encoder, a
// Decoder discovers its block length and sampling rate from the
// bitstream itself (every block re-frames its own block-length code,
// spec §6); only the channel-count field width has to be agreed with
// the Encoder ahead of time, via MaxChannels.
type Decoder struct {
	maxChannels int
	model       *arith.Model
	logger      wlog.Logger

	fs int
}

// NewDecoder builds a Decoder from opts, or from DefaultOptions if
// opts is nil. Only opts.MaxChannels and opts.Logger are used.
func NewDecoder(opts *Options) *Decoder {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Decoder{
		maxChannels: opts.MaxChannels,
		model:       arith.NewModel(),
		logger:      opts.Logger,
	}
}

// SampleRate returns the sampling rate recovered from the most
// recently decoded stream.
func (d *Decoder) SampleRate() int { return d.fs }

// Decode1D decodes a single-channel bitstream produced by Encode1D.
func (d *Decoder) Decode1D(bits bitio.Bits) ([]float64, error) {
	d.model.Reset()

	fs, rest := framing.FSDecode(bits)
	d.fs = fs

	var sig []float64
	for len(rest) > framing.MinTrailingBits {
		bl, lengthBits, dwtLevel, next := framing.HeaderDecoding(rest)
		rest = next

		block, afterBlock := d.decodeBlock(rest, bl, lengthBits, dwtLevel)
		rest = afterBlock
		sig = append(sig, block...)
	}
	return sig, nil
}

// DecodeMD decodes a multichannel bitstream produced by EncodeMD.
func (d *Decoder) DecodeMD(bits bitio.Bits) ([][]float64, error) {
	d.model.Reset()

	channels, rest := framing.DecodeChannels(bits, d.maxChannels)
	fs, rest2 := framing.FSDecode(rest)
	rest = rest2
	d.fs = fs

	sig := make([][]float64, channels)
	for len(rest) > framing.MinTrailingBits {
		for c := 0; c < channels; c++ {
			bl, lengthBits, dwtLevel, next := framing.HeaderDecoding(rest)
			rest = next

			block, afterBlock := d.decodeBlock(rest, bl, lengthBits, dwtLevel)
			rest = afterBlock
			sig[c] = append(sig[c], block...)
		}
	}
	return sig, nil
}

// decodeBlock reads one block's length-prefixed payload off the
// front of rest and reconstructs its bl time-domain samples,
// returning them along with whatever of rest remains unconsumed.
func (d *Decoder) decodeBlock(rest bitio.Bits, bl, lengthBits, dwtLevel int) (samples []float64, remaining bitio.Bits) {
	segmentLength, next := framing.LengthDecoding(rest, lengthBits)
	rest = next

	if segmentLength == 0 {
		return make([]float64, bl), rest
	}

	payload := rest[:segmentLength]
	rest = rest[segmentLength:]

	dec := arith.NewDecoder(d.model, payload)
	intData, wavmax, maxAllocBits := spiht.Decode(dec, bl, dwtLevel)

	multiplicator := wavmax / float64(int(1)<<maxAllocBits)
	blockDWT := make([]float64, bl)
	for i, v := range intData {
		blockDWT[i] = float64(v) * multiplicator
	}
	wavelet.Inverse(blockDWT, dwtLevel)
	return blockDWT, rest
}
