package bitio

import "testing"

func TestAppendUintUint(t *testing.T) {
	tests := []struct {
		val uint32
		n   int
	}{
		{0, 4},
		{1, 4},
		{5, 4},
		{15, 4},
		{255, 8},
		{1023, 10},
		{0, 14},
	}
	for _, tt := range tests {
		var b Bits
		b = AppendUint(b, tt.val, tt.n)
		if len(b) != tt.n {
			t.Fatalf("AppendUint(%d, %d): got %d bits, want %d", tt.val, tt.n, len(b), tt.n)
		}
		got := Uint(b, 0, tt.n)
		if got != tt.val {
			t.Errorf("AppendUint/Uint round-trip(%d, %d) = %d", tt.val, tt.n, got)
		}
	}
}

func TestAppendUintLSBFirst(t *testing.T) {
	var b Bits
	b = AppendUint(b, 0b1011, 4)
	want := Bits{1, 1, 0, 1}
	for i := range want {
		if b[i] != want[i] {
			t.Fatalf("AppendUint(0b1011, 4) = %v, want %v", b, want)
		}
	}
}

func TestPackUnpackRoundtrip(t *testing.T) {
	tests := [][]byte{
		{1, 0, 1, 1, 0, 0, 1, 0},
		{1},
		{0},
		{1, 1, 1, 1, 1, 1, 1, 1, 1},
		{},
	}
	for _, tt := range tests {
		b := Bits(tt)
		packed := Pack(b)
		back := Unpack(packed, len(b))
		for i := range b {
			if back[i] != b[i] {
				t.Fatalf("Pack/Unpack round-trip mismatch at bit %d for %v", i, tt)
			}
		}
	}
}

func TestPackLSBFirstWithinByte(t *testing.T) {
	// bit 0 of byte 0 is the stream's first bit.
	b := Bits{1, 0, 0, 0, 0, 0, 0, 0}
	packed := Pack(b)
	if packed[0] != 0x01 {
		t.Errorf("Pack(%v) = %#x, want 0x01", b, packed[0])
	}
}

func TestPackZeroPadsFinalByte(t *testing.T) {
	b := Bits{1, 1, 1}
	packed := Pack(b)
	if len(packed) != 1 {
		t.Fatalf("Pack(%v) produced %d bytes, want 1", b, len(packed))
	}
	if packed[0] != 0x07 {
		t.Errorf("Pack(%v) = %#x, want 0x07", b, packed[0])
	}
}
