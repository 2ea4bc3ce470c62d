package spiht

import (
	"github.com/vc-pwq/vcpwq/internal/alloc"
	"github.com/vc-pwq/vcpwq/internal/arith"
)

// Decode mirrors Encode exactly, pulling decisions from dec on demand
// instead of replaying a precomputed stream, and reconstructing the
// header fields (maxAllocBits, the mode bit, and the quantized
// maximum wavelet coefficient) alongside the coefficient tree.
//
// origLength is the block length the original signal had before
// wavelet decomposition; level is the number of wavelet stages. The
// returned slice has length origLength. maxAllocBits is returned
// alongside wavmax because the caller needs both to undo the
// fixed-point scaling Encode's caller applied before quantizing.
func Decode(dec *arith.Decoder, origLength, level int) (data []int, wavmax float64, maxAllocBits int) {
	maxAllocBits = int(readBits(dec, arith.CtxSide, MaxAllocBitsSize))

	mode := dec.DecodeBit(arith.CtxSide)
	fractionValue := int(readBits(dec, arith.CtxSide, alloc.WavMaxBits-1))
	wavmax = alloc.DecodeMaxCoefficient(mode, fractionValue)

	data = make([]int, origLength)
	t := newTree(bandSize(origLength, level))

	for n := maxAllocBits; n >= 0; n-- {
		compare := 1 << n
		lspBoundary := len(t.lsp)
		sortingPassDecode(dec, t, compare, data)
		refinementPassDecode(dec, t, lspBoundary, data, compare)
	}
	dec.Model().Rescale()
	return data, wavmax, maxAllocBits
}

func readBits(dec *arith.Decoder, ctx arith.Context, n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		v |= uint32(dec.DecodeBit(ctx)) << i
	}
	return v
}

func sortingPassDecode(dec *arith.Decoder, t *tree, compare int, data []int) {
	var nextLIP []int
	for _, idx := range t.lip {
		if dec.DecodeBit(arith.CtxSig0) == 1 {
			if dec.DecodeBit(arith.CtxSign) == 1 {
				data[idx] = compare
			} else {
				data[idx] = -compare
			}
			t.lsp = append(t.lsp, idx)
		} else {
			nextLIP = append(nextLIP, idx)
		}
	}
	t.lip = nextLIP

	lis := t.lis
	var nextLIS []lisEntry
	for i := 0; i < len(lis); i++ {
		e := lis[i]
		if e.typ == typeA {
			if dec.DecodeBit(arith.CtxSig1) == 1 {
				y := e.index
				for _, child := range [2]int{2 * y, 2*y + 1} {
					if dec.DecodeBit(arith.CtxSig2) == 1 {
						t.lsp = append(t.lsp, child)
						if dec.DecodeBit(arith.CtxSign) == 1 {
							data[child] = compare
						} else {
							data[child] = -compare
						}
					} else {
						t.lip = append(t.lip, child)
					}
				}
				if 4*y+3 < len(data) {
					lis = append(lis, lisEntry{index: y, typ: typeB})
				}
			} else {
				nextLIS = append(nextLIS, e)
			}
		} else {
			if dec.DecodeBit(arith.CtxSig3) == 1 {
				y := e.index
				lis = append(lis, lisEntry{index: 2 * y, typ: typeA}, lisEntry{index: 2*y + 1, typ: typeA})
			} else {
				nextLIS = append(nextLIS, e)
			}
		}
	}
	t.lis = nextLIS
}

func refinementPassDecode(dec *arith.Decoder, t *tree, lspBoundary int, data []int, compare int) {
	for i := 0; i < lspBoundary; i++ {
		idx := t.lsp[i]
		if dec.DecodeBit(arith.CtxRefine) == 1 {
			data[idx] += sgn(data[idx]) * compare
		}
	}
}
