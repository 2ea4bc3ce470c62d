package spiht

import (
	"github.com/vc-pwq/vcpwq/internal/arith"
	"github.com/vc-pwq/vcpwq/internal/bitio"
	"github.com/vc-pwq/vcpwq/internal/wlog"
)

// MaxAllocBitsSize is the width of the header field that carries the
// number of SPIHT bit-planes, and therefore the largest bit-plane
// count a block can declare.
const MaxAllocBitsSize = 4

const maxRepresentableAllocBits = (1 << MaxAllocBitsSize) - 1

// Encode runs SPIHT over one block of quantized wavelet coefficients,
// driving enc directly rather than building an intermediate bit
// array: every significance, sign, and refinement decision is coded
// under its context the moment it's made. header carries the
// already-encoded maximum wavelet coefficient field (MaxAllocBitsSize
// bits of maxAllocBits are written first, ahead of it).
//
// If maxAllocBits doesn't fit in the header field, it is clamped and
// a warning is logged: bit-planes above the clamped value are not
// coded, rather than corrupting the header.
func Encode(enc *arith.Encoder, data []int, level, maxAllocBits int, header bitio.Bits, logger wlog.Logger) {
	if maxAllocBits > maxRepresentableAllocBits {
		wlog.Warnf(logger, "spiht: maxAllocBits %d exceeds %d-bit header field, clamping to %d", maxAllocBits, MaxAllocBitsSize, maxRepresentableAllocBits)
		maxAllocBits = maxRepresentableAllocBits
	}

	var headerBits bitio.Bits
	headerBits = bitio.AppendUint(headerBits, uint32(maxAllocBits), MaxAllocBitsSize)
	headerBits = append(headerBits, header...)
	for _, b := range headerBits {
		enc.EncodeBit(arith.CtxSide, int(b))
	}

	t := newTree(bandSize(len(data), level))
	dm := computeDescendantMaxima(data)

	for n := maxAllocBits; n >= 0; n-- {
		compare := 1 << n
		lspBoundary := len(t.lsp)
		sortingPassEncode(enc, t, dm, compare, data)
		refinementPassEncode(enc, t, lspBoundary, data, n)
	}
	enc.Model().Rescale()
}

func sortingPassEncode(enc *arith.Encoder, t *tree, dm descendantMaxima, compare int, data []int) {
	var nextLIP []int
	for _, idx := range t.lip {
		if abs(data[idx]) >= compare {
			enc.EncodeBit(arith.CtxSig0, 1)
			enc.EncodeBit(arith.CtxSign, boolBit(data[idx] >= 0))
			t.lsp = append(t.lsp, idx)
		} else {
			enc.EncodeBit(arith.CtxSig0, 0)
			nextLIP = append(nextLIP, idx)
		}
	}
	t.lip = nextLIP

	lis := t.lis
	var nextLIS []lisEntry
	for i := 0; i < len(lis); i++ {
		e := lis[i]
		if e.typ == typeA {
			if dm.of(e) >= compare {
				enc.EncodeBit(arith.CtxSig1, 1)
				y := e.index
				for _, child := range [2]int{2 * y, 2*y + 1} {
					if abs(data[child]) >= compare {
						t.lsp = append(t.lsp, child)
						enc.EncodeBit(arith.CtxSig2, 1)
						enc.EncodeBit(arith.CtxSign, boolBit(data[child] >= 0))
					} else {
						enc.EncodeBit(arith.CtxSig2, 0)
						t.lip = append(t.lip, child)
					}
				}
				if 4*y+3 < len(data) {
					lis = append(lis, lisEntry{index: y, typ: typeB})
				}
			} else {
				enc.EncodeBit(arith.CtxSig1, 0)
				nextLIS = append(nextLIS, e)
			}
		} else {
			if dm.of(e) >= compare {
				enc.EncodeBit(arith.CtxSig3, 1)
				y := e.index
				lis = append(lis, lisEntry{index: 2 * y, typ: typeA}, lisEntry{index: 2*y + 1, typ: typeA})
			} else {
				enc.EncodeBit(arith.CtxSig3, 0)
				nextLIS = append(nextLIS, e)
			}
		}
	}
	t.lis = nextLIS
}

func refinementPassEncode(enc *arith.Encoder, t *tree, lspBoundary int, data []int, n int) {
	for i := 0; i < lspBoundary; i++ {
		idx := t.lsp[i]
		bit := bitAt(abs(data[idx]), n+1)
		enc.EncodeBit(arith.CtxRefine, bit)
	}
}

func boolBit(b bool) int {
	if b {
		return 1
	}
	return 0
}
