package vcpwq

import (
	"fmt"
	"math"

	"github.com/vc-pwq/vcpwq/internal/alloc"
	"github.com/vc-pwq/vcpwq/internal/arith"
	"github.com/vc-pwq/vcpwq/internal/bitio"
	"github.com/vc-pwq/vcpwq/internal/framing"
	"github.com/vc-pwq/vcpwq/internal/psychohaptic"
	"github.com/vc-pwq/vcpwq/internal/spiht"
	"github.com/vc-pwq/vcpwq/internal/wavelet"
	"github.com/vc-pwq/vcpwq/internal/wlog"
)

// Encoder holds everything that stays fixed across a whole encode
// run: the block geometry derived from BlockLength, the psychohaptic
// model tuned to (BlockLength, SampleRate), and the arithmetic
// coder's adaptive counters, which are shared across every block and
// channel the Encoder produces (spec §3.1, §5).
type Encoder struct {
	bl          int
	fs          int
	maxChannels int
	dwtLevel    int
	lengthBits  int

	book           []int
	bookCumulative []int

	model  *arith.Model
	pm     *psychohaptic.Model
	logger wlog.Logger
}

// NewEncoder builds an Encoder from opts, or from DefaultOptions if
// opts is nil.
func NewEncoder(opts *Options) (*Encoder, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := validateBlockLength(opts.BlockLength); err != nil {
		return nil, err
	}

	e := &Encoder{
		bl:          opts.BlockLength,
		fs:          opts.SampleRate,
		maxChannels: opts.MaxChannels,
		dwtLevel:    framing.DWTLevel(opts.BlockLength),
		lengthBits:  framing.LengthBitsFor(opts.BlockLength),
		model:       arith.NewModel(),
		pm:          psychohaptic.NewModel(opts.BlockLength, opts.SampleRate),
		logger:      opts.Logger,
	}
	e.book = e.pm.Book()
	e.bookCumulative = e.pm.BookCumulative()
	return e, nil
}

// Encode1D encodes a single-channel signal at the given bit budget
// per block, padding the final block with zeros if sig isn't a whole
// number of blocks long.
func (e *Encoder) Encode1D(sig []float64, bitBudget int) (bitio.Bits, error) {
	bitBudget = e.clampBudget(bitBudget)
	e.model.Reset()

	padded := padToBlocks(sig, e.bl)
	numBlocks := len(padded) / e.bl

	out := framing.FSEncode(e.fs)
	for b := 0; b < numBlocks; b++ {
		block := padded[b*e.bl : (b+1)*e.bl]
		out = append(out, framing.HeaderEncoding(e.bl)...)
		out = append(out, e.encodeBlock(block, bitBudget)...)
	}
	return out, nil
}

// EncodeMD encodes a multichannel signal, striding block-by-block
// across every channel before advancing (spec §3.1): the shared
// arithmetic model carries its adaptive state from the last channel
// of one block into the first channel of the next, exactly as it
// would within a single channel.
func (e *Encoder) EncodeMD(channels [][]float64, bitBudget int) (bitio.Bits, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("vcpwq: EncodeMD requires at least one channel")
	}
	channelBits, err := framing.EncodeChannels(len(channels), e.maxChannels)
	if err != nil {
		return nil, fmt.Errorf("vcpwq: %w", err)
	}

	bitBudget = e.clampBudget(bitBudget)
	e.model.Reset()

	padded := make([][]float64, len(channels))
	for c, sig := range channels {
		padded[c] = padToBlocks(sig, e.bl)
	}
	numBlocks := len(padded[0]) / e.bl

	out := append(bitio.Bits{}, channelBits...)
	out = append(out, framing.FSEncode(e.fs)...)
	for b := 0; b < numBlocks; b++ {
		for c := range padded {
			block := padded[c][b*e.bl : (b+1)*e.bl]
			out = append(out, framing.HeaderEncoding(e.bl)...)
			out = append(out, e.encodeBlock(block, bitBudget)...)
		}
	}
	return out, nil
}

// clampBudget enforces the per-subband MaxBits ceiling on the whole
// block, warning and clamping rather than refusing, since an
// over-large budget is physically meaningless, not malformed input.
func (e *Encoder) clampBudget(bitBudget int) int {
	max := MaxBitBudget(e.bl)
	if bitBudget > max {
		wlog.Warnf(e.logger, "vcpwq: bit budget %d exceeds maximum %d for block length %d, clamping", bitBudget, max, e.bl)
		return max
	}
	return bitBudget
}

// encodeBlock runs one block through the full chain: wavelet
// transform, psychohaptic analysis, bit allocation, fixed-point
// scaling, and SPIHT/arithmetic coding, framed with its own
// length-prefix field (spec §4, §6).
func (e *Encoder) encodeBlock(block []float64, bitBudget int) bitio.Bits {
	blockDWT := append([]float64(nil), block...)
	wavelet.Forward(blockDWT, e.dwtLevel)

	if checkZeros(blockDWT) {
		prefix, _ := framing.LengthEncoding(nil, e.lengthBits)
		return prefix
	}

	smr, bandEnergy := e.pm.Analyze(block)
	mc := alloc.ComputeMaxCoefficient(blockDWT)

	quant, bitAlloc := alloc.Allocate(blockDWT, smr, bandEnergy, e.book, e.bookCumulative, mc.QWavMax, bitBudget, e.dwtLevel)

	bitmax := maxInt(bitAlloc)
	multiplicator := float64(int(1)<<bitmax) / mc.QWavMax
	intQuant := make([]int, len(quant))
	for i, v := range quant {
		intQuant[i] = int(math.Round(v * multiplicator))
	}

	var header bitio.Bits
	header = append(header, byte(mc.Mode))
	header = bitio.AppendUint(header, uint32(mc.FractionValue), alloc.WavMaxBits-1)

	enc := arith.NewEncoder(e.model)
	spiht.Encode(enc, intQuant, e.dwtLevel, bitmax, header, e.logger)
	payload := enc.Finish()

	prefix, trimmed := framing.LengthEncoding(payload, e.lengthBits)
	return append(prefix, trimmed...)
}

// padToBlocks returns sig zero-padded to the next multiple of bl,
// copying rather than mutating the caller's slice.
func padToBlocks(sig []float64, bl int) []float64 {
	n := len(sig)
	numBlocks := (n + bl - 1) / bl
	padded := make([]float64, numBlocks*bl)
	copy(padded, sig)
	return padded
}
