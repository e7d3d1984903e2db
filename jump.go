// Completion: 100% - Instruction implementation complete
package main

// JMP/Jcc rel32 emission. Adapted from the teacher's mov.go
// CallSymbol pattern of "emit opcode + placeholder rel32, return the
// patch offset" — this repo applies the same shape to branches instead
// of calls, feeding codegen.go's J side table (spec.md section 4.3:
// every branch target is forward- or backward-unresolved at emission
// time and gets its rel32 field patched once the target command's
// final buffer position is known).

// Jmp emits JMP rel32 (E9 id) with a zero placeholder and returns the
// buffer offset of the rel32 field.
func (o *Out) Jmp() (patchOffset int) {
	o.buf.Write8(0xE9)
	patchOffset = o.buf.Len()
	o.buf.Write32(0)
	return patchOffset
}

// Jcc emits a near conditional jump (0F 80+cc id) with a zero
// placeholder and returns the buffer offset of the rel32 field.
func (o *Out) Jcc(cc uint8) (patchOffset int) {
	o.buf.Write8(0x0F)
	o.buf.Write8(0x80 + cc)
	patchOffset = o.buf.Len()
	o.buf.Write32(0)
	return patchOffset
}

// PatchRel32 resolves a previously emitted Jmp/Jcc (or any other
// rel32-relative instruction) once targetPos, the absolute buffer
// position of the destination, is known. rel32 is relative to the
// byte immediately following the 4-byte field itself.
func (o *Out) PatchRel32(patchOffset, targetPos int) {
	rel := int32(targetPos - (patchOffset + 4))
	o.buf.PatchWrite32(patchOffset, uint32(rel))
}
