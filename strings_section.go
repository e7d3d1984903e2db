// Completion: 100% - String section complete
package main

import "unsafe"

// StringsSection is the linked program's concatenated, NUL-terminated
// string pool, laid out as one contiguous byte buffer so every string
// has a stable absolute address (spec.md section 3's "string section")
// once allocated. msc_printf's format-string argument and any
// PrintF/interned-string opcode reference a slot by index; codegen.go
// can't bake that address in directly the way it does for globals
// (the section doesn't exist yet when a script is compiled, since all
// scripts' strings must be known and concatenated first), so every
// reference becomes a StringRelocation patched in by linker.go once
// this section is built.
type StringsSection struct {
	buf     []byte
	offsets []int // buf offset of each string's first byte, by pool index
}

// BuildStringsSection concatenates every entry of pool into one
// NUL-terminated buffer and records each entry's offset.
func BuildStringsSection(pool *StringPool) *StringsSection {
	s := &StringsSection{offsets: make([]int, pool.Len())}
	for i := 0; i < pool.Len(); i++ {
		str, _ := pool.At(i)
		s.offsets[i] = len(s.buf)
		s.buf = append(s.buf, []byte(str)...)
		s.buf = append(s.buf, 0)
	}
	if len(s.buf) == 0 {
		s.buf = []byte{0}
	}
	return s
}

// AddrOf returns the absolute address of string i, valid once the
// section's backing buffer has stopped moving (BaseAddr, below, pins
// it by taking the address of element 0 after all strings are
// appended — callers must not call AddrOf before BuildStringsSection
// returns).
func (s *StringsSection) AddrOf(i int) (uint64, bool) {
	if i < 0 || i >= len(s.offsets) {
		return 0, false
	}
	return s.BaseAddr() + uint64(s.offsets[i]), true
}

// BaseAddr returns the section buffer's absolute address.
func (s *StringsSection) BaseAddr() uint64 {
	return uint64(uintptr(unsafe.Pointer(&s.buf[0])))
}

// Bytes exposes the raw concatenated buffer, e.g. for a debug dump.
func (s *StringsSection) Bytes() []byte { return s.buf }
