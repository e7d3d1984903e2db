// Completion: 100% - Module complete
package main

import "encoding/binary"

// CodeBuffer is the growable byte buffer the encoder writes into.
// Adapted from the teacher's emit.go BufferWrapper, trimmed to what a
// single code region needs (no section-relocation bookkeeping — that
// lives in codegen.go/call.go, which record offsets into this buffer).
type CodeBuffer struct {
	bytes []byte
}

func (b *CodeBuffer) Len() int { return len(b.bytes) }

func (b *CodeBuffer) Bytes() []byte { return b.bytes }

// Write8 appends a single byte.
func (b *CodeBuffer) Write8(v uint8) {
	b.bytes = append(b.bytes, v)
}

// WriteBytes appends a raw byte sequence, for mnemonics not exposed by
// a dedicated emitter (fstsw, sahf, fcompp, the movabs patch slot).
func (b *CodeBuffer) WriteBytes(vs ...uint8) {
	b.bytes = append(b.bytes, vs...)
}

// Write32 appends a little-endian 32-bit value (immediates, rel32
// placeholders).
func (b *CodeBuffer) Write32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.bytes = append(b.bytes, tmp[:]...)
}

// Write64 appends a little-endian 64-bit value (the movabs imm64 slot,
// patched in later by the linker for inter-script calls).
func (b *CodeBuffer) Write64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.bytes = append(b.bytes, tmp[:]...)
}

// PatchWrite32 overwrites 4 bytes starting at offset — used to resolve
// jump fixups after the M map is complete.
func (b *CodeBuffer) PatchWrite32(offset int, v uint32) {
	binary.LittleEndian.PutUint32(b.bytes[offset:offset+4], v)
}

// PatchWrite64 overwrites 8 bytes starting at offset — used to resolve
// inter-script call relocations once every region has a base address.
func (b *CodeBuffer) PatchWrite64(offset int, v uint64) {
	binary.LittleEndian.PutUint64(b.bytes[offset:offset+8], v)
}

// Truncate removes the trailing n bytes — the "delete the preceding
// push" trick call lowering uses to rewind past a 5-byte push imm32
// (spec.md section 9).
func (b *CodeBuffer) Truncate(n int) {
	b.bytes = b.bytes[:len(b.bytes)-n]
}
