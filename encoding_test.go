// Completion: 100% - Spot checks on mnemonic encodings
package main

import "testing"

func newOut() (*Out, *CodeBuffer) {
	buf := &CodeBuffer{}
	return NewOut(buf), buf
}

func TestPushRegEncoding(t *testing.T) {
	o, buf := newOut()
	o.PushReg("rax")
	if got := buf.Bytes(); len(got) != 1 || got[0] != 0x50 {
		t.Fatalf("PushReg(rax) = % x, want [50]", got)
	}

	o2, buf2 := newOut()
	o2.PushReg("r15")
	if got := buf2.Bytes(); len(got) != 2 || got[0] != (rexBase|rexB) || got[1] != 0x57 {
		t.Fatalf("PushReg(r15) = % x, want [41 57]", got)
	}
}

func TestMovImmToReg64Encoding(t *testing.T) {
	o, buf := newOut()
	o.MovImmToReg64("rax", 0x1122334455667788)
	got := buf.Bytes()
	if len(got) != 10 {
		t.Fatalf("MovImmToReg64 length = %d, want 10", len(got))
	}
	if got[0] != (rexBase|rexW) || got[1] != 0xB8 {
		t.Fatalf("MovImmToReg64 header = % x, want [48 b8]", got[:2])
	}
}

func TestAddRegToReg32Encoding(t *testing.T) {
	o, buf := newOut()
	o.AddRegToReg32("eax", "ecx")
	want := []byte{0x01, 0xC8}
	got := buf.Bytes()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("AddRegToReg32(eax,ecx) = % x, want % x", got, want)
	}
}

func TestCmpRegToImm32SmallFitsImm8Form(t *testing.T) {
	o, buf := newOut()
	o.CmpRegToImm32("rax", 0)
	got := buf.Bytes()
	if len(got) != 4 { // REX.W + 0x83 + modrm + imm8
		t.Fatalf("CmpRegToImm32 length = %d, want 4 (83 form)", len(got))
	}
	if got[1] != 0x83 {
		t.Fatalf("CmpRegToImm32 opcode = %x, want 83", got[1])
	}
}

func TestJmpPlaceholderAndPatch(t *testing.T) {
	o, buf := newOut()
	patch := o.Jmp()
	if buf.Len() != 5 {
		t.Fatalf("buffer length after Jmp = %d, want 5", buf.Len())
	}
	o.PatchRel32(patch, 100)
	rel := int32(buf.Bytes()[patch]) | int32(buf.Bytes()[patch+1])<<8 |
		int32(buf.Bytes()[patch+2])<<16 | int32(buf.Bytes()[patch+3])<<24
	if want := int32(100 - (patch + 4)); rel != want {
		t.Fatalf("patched rel32 = %d, want %d", rel, want)
	}
}

func TestLowerCallDeletesPrecedingPush(t *testing.T) {
	o, buf := newOut()
	o.PushImm32(7) // the lookback placeholder
	before := buf.Len()
	o.LowerCall(0xdeadbeefcafebabe)
	after := buf.Len()
	// push imm32 (5 bytes) removed, then movabs(10) + call r/m64(3) added.
	if after != before-5+10+3 {
		t.Fatalf("buffer length after LowerCall = %d, want %d", after, before-5+10+3)
	}
}
