// Package arith implements the context-adaptive binary range coder
// that drives SPIHT's bit-plane output (spec §4.6).
//
// The coder is a classic Witten-Neal-Cleary style binary arithmetic
// coder over a fixed 10-bit range, adapted per-context rather than
// per-symbol. It is structurally similar to the range coders present
// elsewhere in the retrieval pack — compare the Prob/Encoder/Decoder
// split in github.com/ulikunitz/xz's rc package and the per-context
// state table in go-jpeg2000's internal/entropy MQ coder — but the
// probability model itself (a raw zeros/total counter pair, rescaled
// once per block rather than driven by a state machine) follows the
// reference VC-PWQ ArithEnc/ArithDec exactly, because bit-exactness
// between encoder and decoder is the entire point of this package.
package arith

import (
	"math"

	"github.com/vc-pwq/vcpwq/internal/bitio"
)

// Context names the seven adaptive probability contexts SPIHT drives.
type Context int

const (
	CtxSide   Context = iota // stream/block side information (header fields)
	CtxSign                  // sign of a newly-significant coefficient
	CtxSig0                  // LIP significance test
	CtxSig1                  // LIS type-A significance test
	CtxSig2                  // child significance test under a type-A set
	CtxSig3                  // LIS type-B significance test
	CtxRefine                // refinement-pass bit
	numContexts
)

// Range coder constants (spec §4.6).
const (
	RangeMax = 1024
	Half     = 512
	FirstQtr = 256
	ThirdQtr = 768

	reset  = 16
	resize = 32
)

// Model holds the seven per-context adaptive counters. A Model
// persists for the lifetime of one encode/decode stream: Reset is
// called once at stream start, Rescale once after every block (spec
// §4.5, §5).
type Model struct {
	counter [numContexts]int
	total   [numContexts]int
}

// NewModel returns a Model with its counters freshly reset.
func NewModel() *Model {
	m := &Model{}
	m.Reset()
	return m
}

// Reset restores every context to its initial zero-probability
// estimate (counter=RESET/2, total=RESET). Called once at stream
// start on both the encoder and the decoder.
func (m *Model) Reset() {
	for i := range m.counter {
		m.counter[i] = reset / 2
		m.total[i] = reset
	}
}

// Rescale shrinks every context's counters toward a RESIZE total,
// giving new data within the next block more influence on the
// probability estimate. Called once at the end of every block, after
// all of that block's bits have been coded.
func (m *Model) Rescale() {
	for i := range m.counter {
		c := int(math.Round(float64(resize) * float64(m.counter[i]) / float64(m.total[i])))
		if c < 1 {
			c = 1
		}
		m.counter[i] = c
		m.total[i] = resize
	}
}

// probability returns p, the zero-probability estimate for context c
// scaled to [0, RangeMax], rounded identically on the encode and
// decode side so both sides derive the same split point.
func probability(m *Model, c Context) int {
	return int(math.Round(float64(m.counter[c]) / float64(m.total[c]) * RangeMax))
}

// clampAdd keeps the split point strictly inside (lower, upper) so
// neither branch of the binary split ever collapses to an empty
// range.
func clampAdd(add, diff int) int {
	if add == 0 {
		return 1
	}
	if add == diff {
		return diff - 1
	}
	return add
}

// Encoder performs range coding for a single block. Its range state
// is scoped to one block; the Model it shares with every other block
// and channel in the stream is not.
type Encoder struct {
	model        *Model
	lower, upper int
	bitsToFollow int
	out          bitio.Bits
}

// NewEncoder returns an Encoder over model, ready to encode one
// block's worth of bits.
func NewEncoder(model *Model) *Encoder {
	return &Encoder{model: model, lower: 0, upper: RangeMax}
}

// Model returns the adaptive counter state this Encoder is driving,
// so a caller can Rescale it once the block is finished.
func (e *Encoder) Model() *Model { return e.model }

// EncodeBit encodes bit (0 or 1) under context c, updating c's
// adaptive counters afterward.
func (e *Encoder) EncodeBit(c Context, bit int) {
	diff := e.upper - e.lower
	p := probability(e.model, c)
	add := clampAdd((diff*p)/RangeMax, diff)

	if bit == 0 {
		e.upper = e.lower + add
	} else {
		e.lower = e.lower + add
	}

	for {
		switch {
		case e.upper <= Half:
			e.emit(0)
		case e.lower >= Half:
			e.emit(1)
			e.lower -= Half
			e.upper -= Half
		case e.lower >= FirstQtr && e.upper <= ThirdQtr:
			e.bitsToFollow++
			e.lower -= FirstQtr
			e.upper -= FirstQtr
		default:
			goto renormalized
		}
		e.lower <<= 1
		e.upper <<= 1
	}
renormalized:

	if bit == 0 {
		e.model.counter[c]++
	}
	e.model.total[c]++
}

// emit appends bit, then bitsToFollow complementary bits queued up by
// the E3 (underflow) renormalization case, and resets the queue.
func (e *Encoder) emit(bit byte) {
	e.out = append(e.out, bit)
	other := byte(1 - bit)
	for i := 0; i < e.bitsToFollow; i++ {
		e.out = append(e.out, other)
	}
	e.bitsToFollow = 0
}

// Finish flushes the remaining range state to the output and strips
// trailing zero bits, returning the complete coded bit vector for
// this block.
func (e *Encoder) Finish() bitio.Bits {
	if e.bitsToFollow > 0 {
		e.out = append(e.out, 1)
	} else {
		val := Half
		for e.lower > 0 {
			if val < e.upper {
				e.out = append(e.out, 1)
				e.lower -= val
				e.upper -= val
			} else {
				e.out = append(e.out, 0)
			}
			val >>= 1
		}
	}
	for len(e.out) > 0 && e.out[len(e.out)-1] == 0 {
		e.out = e.out[:len(e.out)-1]
	}
	return e.out
}

// digitsStart is the number of leading bits seeded into the decoder
// before the first DecodeBit call (spec §4.6).
const digitsStart = 10

// Decoder performs range decoding for a single block's payload bits.
type Decoder struct {
	model *Model

	in       bitio.Bits
	inIndex  int
	maxIndex int

	diff, lower, upper int
	leading            int
}

// NewDecoder seeds a Decoder over the block payload in, sharing
// model's adaptive counters with the stream's other blocks.
func NewDecoder(model *Model, in bitio.Bits) *Decoder {
	d := &Decoder{model: model, in: in, maxIndex: len(in) - 1}

	shift := digitsStart - 1
	for i := 0; i < digitsStart && i < len(in); i++ {
		d.leading += int(in[d.inIndex]) << shift
		d.inIndex++
		shift--
	}
	d.diff = RangeMax
	d.lower = 0
	d.upper = RangeMax
	return d
}

// Model returns the adaptive counter state this Decoder is driving,
// so a caller can Rescale it once the block is finished.
func (d *Decoder) Model() *Model { return d.model }

// nextInputBit returns the next payload bit, or 0 once the block's
// payload is exhausted (the decoder keeps renormalizing past the end
// of the actual bits, matching the encoder's trailing-zero trim).
func (d *Decoder) nextInputBit() int {
	if d.inIndex <= d.maxIndex {
		b := int(d.in[d.inIndex])
		d.inIndex++
		return b
	}
	return 0
}

// DecodeBit decodes and returns the next bit under context c, driving
// c's adaptive counters with the exact same update rule the encoder
// used so both sides stay in lockstep.
func (d *Decoder) DecodeBit(c Context) int {
	p := probability(d.model, c)
	compare := clampAdd((d.diff*p)/RangeMax, d.diff)

	value := d.leading - d.lower

	var s int
	if value < compare {
		s = 0
		d.upper = d.lower + compare
	} else {
		s = 1
		d.lower = d.lower + compare
	}

	for {
		switch {
		case d.upper <= Half:
			d.lower <<= 1
			d.upper <<= 1
			d.leading = (d.leading << 1) + d.nextInputBit()
		case d.lower >= Half:
			d.lower = (d.lower - Half) << 1
			d.upper = (d.upper - Half) << 1
			d.leading = ((d.leading - Half) << 1) + d.nextInputBit()
		case d.lower >= FirstQtr && d.upper <= ThirdQtr:
			d.lower = (d.lower - FirstQtr) << 1
			d.upper = (d.upper - FirstQtr) << 1
			d.leading = ((d.leading - FirstQtr) << 1) + d.nextInputBit()
		default:
			goto renormalized
		}
	}
renormalized:
	d.diff = d.upper - d.lower

	if s == 0 {
		d.model.counter[c]++
	}
	d.model.total[c]++

	return s
}
