package arith

import "testing"

func TestEncodeDecodeRoundtrip(t *testing.T) {
	bits := []int{1, 0, 0, 1, 1, 1, 0, 0, 1, 0, 1, 1, 0, 0, 0, 1, 1, 0, 1, 0}
	ctxs := []Context{CtxSide, CtxSign, CtxSig0, CtxSig1, CtxSig2, CtxSig3, CtxRefine}

	encModel := NewModel()
	enc := NewEncoder(encModel)
	for i, b := range bits {
		enc.EncodeBit(ctxs[i%len(ctxs)], b)
	}
	payload := enc.Finish()
	encModel.Rescale()

	decModel := NewModel()
	dec := NewDecoder(decModel, payload)
	for i, want := range bits {
		got := dec.DecodeBit(ctxs[i%len(ctxs)])
		if got != want {
			t.Fatalf("bit %d: decoded %d, want %d", i, got, want)
		}
	}
	decModel.Rescale()

	if encModel.counter != decModel.counter || encModel.total != decModel.total {
		t.Errorf("encoder/decoder context state diverged after rescale: enc=%v/%v dec=%v/%v",
			encModel.counter, encModel.total, decModel.counter, decModel.total)
	}
}

func TestEncodeDecodeAllZeros(t *testing.T) {
	encModel := NewModel()
	enc := NewEncoder(encModel)
	for i := 0; i < 32; i++ {
		enc.EncodeBit(CtxSig0, 0)
	}
	payload := enc.Finish()

	decModel := NewModel()
	dec := NewDecoder(decModel, payload)
	for i := 0; i < 32; i++ {
		if got := dec.DecodeBit(CtxSig0); got != 0 {
			t.Fatalf("bit %d: decoded %d, want 0", i, got)
		}
	}
}

func TestEncodeDecodeAllOnes(t *testing.T) {
	encModel := NewModel()
	enc := NewEncoder(encModel)
	for i := 0; i < 32; i++ {
		enc.EncodeBit(CtxSign, 1)
	}
	payload := enc.Finish()

	decModel := NewModel()
	dec := NewDecoder(decModel, payload)
	for i := 0; i < 32; i++ {
		if got := dec.DecodeBit(CtxSign); got != 1 {
			t.Fatalf("bit %d: decoded %d, want 1", i, got)
		}
	}
}

func TestModelResetInitialProbability(t *testing.T) {
	m := NewModel()
	for c := Context(0); c < numContexts; c++ {
		if got := probability(m, c); got != Half {
			t.Errorf("context %d: initial probability = %d, want %d", c, got, Half)
		}
	}
}

func TestModelRescaleKeepsCounterPositive(t *testing.T) {
	m := NewModel()
	m.counter[CtxSig0] = 0
	m.total[CtxSig0] = 200
	m.Rescale()
	if m.counter[CtxSig0] < 1 {
		t.Errorf("Rescale produced counter %d, want >= 1", m.counter[CtxSig0])
	}
	if m.total[CtxSig0] != resize {
		t.Errorf("Rescale total = %d, want %d", m.total[CtxSig0], resize)
	}
}

func TestClampAddKeepsSplitInteriorToRange(t *testing.T) {
	if got := clampAdd(0, 100); got != 1 {
		t.Errorf("clampAdd(0, 100) = %d, want 1", got)
	}
	if got := clampAdd(100, 100); got != 99 {
		t.Errorf("clampAdd(100, 100) = %d, want 99", got)
	}
	if got := clampAdd(50, 100); got != 50 {
		t.Errorf("clampAdd(50, 100) = %d, want 50", got)
	}
}
