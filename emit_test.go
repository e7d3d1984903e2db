// Completion: 100% - Code buffer tests complete
package main

import "testing"

func TestCodeBufferWriteAndPatch(t *testing.T) {
	b := &CodeBuffer{}
	b.Write8(0x90)
	off := b.Len()
	b.Write32(0)
	if b.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", b.Len())
	}
	b.PatchWrite32(off, 0xdeadbeef)
	got := b.Bytes()[off : off+4]
	want := []byte{0xef, 0xbe, 0xad, 0xde}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("PatchWrite32 bytes = % x, want % x", got, want)
		}
	}
}

func TestCodeBufferTruncate(t *testing.T) {
	b := &CodeBuffer{}
	b.Write8(0x68) // push imm32
	b.Write32(42)
	if b.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", b.Len())
	}
	b.Truncate(5)
	if b.Len() != 0 {
		t.Fatalf("Len() after Truncate(5) = %d, want 0", b.Len())
	}
}

func TestPatchWrite64(t *testing.T) {
	b := &CodeBuffer{}
	for i := 0; i < 8; i++ {
		b.Write8(0)
	}
	b.PatchWrite64(0, 0x0102030405060708)
	got := b.Bytes()
	want := []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("PatchWrite64 bytes = % x, want % x", got, want)
		}
	}
}
