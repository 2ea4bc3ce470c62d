// Package framing assembles and parses the parts of the VC-PWQ
// bitstream that sit outside a block's coded coefficients: the
// stream-level sample-rate and channel-count fields, and the
// per-block block-length and length-prefix fields.
//
// Every field is a fixed-width or short prefix code read and written
// LSB-first through bitio.Bits, the same unpacked representation the
// reference codec threads through its encoder and decoder. Where the
// reference advances by erasing consumed bytes off the front of a
// std::vector, these functions just reslice: consuming n bits is
// b[n:], an O(1) pointer bump instead of an O(len) shift.
package framing

import (
	"fmt"
	"math"

	"github.com/vc-pwq/vcpwq/internal/bitio"
)

// Supported sampling rates.
const (
	FS0 = 8000
	FS1 = 2800
	FS2 = 2500
)

// Supported block lengths.
const (
	BL0 = 32
	BL1 = 64
	BL2 = 128
	BL3 = 256
	BL4 = 512
)

// Length-prefix field widths, one per block length.
const (
	LengthBits0 = 10
	LengthBits1 = 11
	LengthBits2 = 12
	LengthBits3 = 13
	LengthBits4 = 14
)

// MaxBL is the largest supported block length.
const MaxBL = 512

// DefaultMaxChannels bounds the channel-count field width when a
// caller doesn't specify one.
const DefaultMaxChannels = 8

// MinTrailingBits is the smallest remaining stream size that can
// still hold a block header; a decoder stops once no more bits than
// this remain, treating the tail as padding rather than a truncated
// block.
const MinTrailingBits = 8

// BlockLengths lists every block length headerEncoding/headerDecoding
// know how to frame, in ascending order.
func BlockLengths() []int {
	return []int{BL0, BL1, BL2, BL3, BL4}
}

// DWTLevel returns the number of wavelet decomposition stages used
// for a block of length bl.
func DWTLevel(bl int) int {
	return int(math.Log2(float64(bl))) - 2
}

// LengthBitsFor returns the length-prefix field width for a block of
// length bl, defaulting to the widest field for any unrecognized bl
// (mirroring the reference encoder's constructor, which falls back to
// LengthBits4 rather than rejecting the value).
func LengthBitsFor(bl int) int {
	switch bl {
	case BL0:
		return LengthBits0
	case BL1:
		return LengthBits1
	case BL2:
		return LengthBits2
	case BL3:
		return LengthBits3
	default:
		return LengthBits4
	}
}

// ChannelBits returns the width of the channel-count field needed to
// represent up to maxChannels channels.
func ChannelBits(maxChannels int) int {
	return int(math.Ceil(math.Log2(float64(maxChannels + 1))))
}

// FSEncode returns the 2-bit code for a supported sampling rate. Any
// rate other than FS0/FS1/FS2 encodes as the reserved code 11, the
// same fallback the reference encoder uses.
func FSEncode(fs int) bitio.Bits {
	switch fs {
	case FS0:
		return bitio.Bits{0, 0}
	case FS1:
		return bitio.Bits{0, 1}
	case FS2:
		return bitio.Bits{1, 0}
	default:
		return bitio.Bits{1, 1}
	}
}

// FSDecode reads the 2-bit sampling-rate code at the front of b and
// returns the rate along with the remaining stream. The reserved code
// 11 decodes to 0, since no rate is assigned to it.
func FSDecode(b bitio.Bits) (fs int, rest bitio.Bits) {
	if b[0] == 0 {
		if b[1] == 0 {
			fs = FS0
		} else {
			fs = FS1
		}
	} else {
		if b[1] == 0 {
			fs = FS2
		} else {
			fs = 0
		}
	}
	return fs, b[2:]
}

// EncodeChannels encodes a channel count into a fixed-width field
// sized for maxChannels. It errors if channels exceeds what that
// field width can represent.
func EncodeChannels(channels, maxChannels int) (bitio.Bits, error) {
	bits := ChannelBits(maxChannels)
	if channels > (1<<bits)-1 {
		return nil, fmt.Errorf("framing: %d channels exceeds maxChannels %d", channels, maxChannels)
	}
	return bitio.AppendUint(nil, uint32(channels), bits), nil
}

// DecodeChannels reads a channel count from the front of b, sized for
// maxChannels, and returns it with the remaining stream.
func DecodeChannels(b bitio.Bits, maxChannels int) (channels int, rest bitio.Bits) {
	bits := ChannelBits(maxChannels)
	return int(bitio.Uint(b, 0, bits)), b[bits:]
}

// HeaderEncoding returns the block-length prefix code for bl: a run
// of zero bits terminated by a 1 for BL0..BL2, and a fixed 4-bit code
// for BL3/BL4 since a third zero no longer disambiguates them.
func HeaderEncoding(bl int) bitio.Bits {
	switch bl {
	case BL0:
		return bitio.Bits{1}
	case BL1:
		return bitio.Bits{0, 1}
	case BL2:
		return bitio.Bits{0, 0, 1}
	case BL3:
		return bitio.Bits{0, 0, 0, 0}
	case BL4:
		return bitio.Bits{0, 0, 0, 1}
	default:
		return nil
	}
}

// HeaderDecoding reads a block-length prefix code from the front of
// b and returns the block length, its matching length-prefix field
// width, the wavelet level it implies, and the remaining stream.
func HeaderDecoding(b bitio.Bits) (bl, lengthBits, dwtLevel int, rest bitio.Bits) {
	lengthBits = LengthBits4
	start := 0
	switch {
	case b[start] == 1:
		bl = BL0
		start++
		lengthBits = LengthBits0
	case b[start+1] == 1:
		bl = BL1
		start += 2
		lengthBits = LengthBits1
	case b[start+2] == 1:
		bl = BL2
		start += 3
		lengthBits = LengthBits2
	case b[start+3] == 0:
		bl = BL3
		start += 4
		lengthBits = LengthBits3
	default:
		bl = BL4
		start += 4
	}
	return bl, lengthBits, DWTLevel(bl), b[start:]
}

// LengthEncoding builds the length-prefix field for blockstream,
// sized to lengthBits. A block that doesn't fit is truncated to the
// largest representable length, matching the reference encoder's
// clamp.
func LengthEncoding(blockstream bitio.Bits, lengthBits int) (prefix, payload bitio.Bits) {
	maxSize := (1 << lengthBits) - 1
	segmentLength := len(blockstream)
	if segmentLength > maxSize {
		blockstream = blockstream[:maxSize]
		segmentLength = maxSize
	}
	prefix = bitio.AppendUint(nil, uint32(segmentLength), lengthBits)
	return prefix, blockstream
}

// LengthDecoding reads a length-prefix field from the front of b,
// sized to lengthBits, and returns the segment length it names along
// with the remaining stream.
func LengthDecoding(b bitio.Bits, lengthBits int) (segmentLength int, rest bitio.Bits) {
	segmentLength = int(bitio.Uint(b, 0, lengthBits))
	return segmentLength, b[lengthBits:]
}
