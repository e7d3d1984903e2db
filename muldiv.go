// Completion: 100% - Instruction implementation complete
package main

// IMUL/IDIV forms (spec.md section 4.3's "int mul/div/mod" row).
// Adapted from the teacher's div.go, which picks a two-operand
// IDIV-into-named-dst shape; division here uses the one-operand IDIV
// with EDX:EAX as the implicit wide accumulator, since codegen.go
// stages the two popped operands into RAX/RCX first. Multiplication
// (MulI and the multiply-assign ops) uses the two-operand
// IMulRegToReg32 below; the one-operand IMulReg32 is not used by
// codegen.go.

// IMulReg32 emits IMUL r/m32 (one-operand: EDX:EAX = EAX * src).
func (o *Out) IMulReg32(src string) { o.mulDivOneOperand(5, src) }

// IDivReg32 emits IDIV r/m32 (one-operand: EAX = EDX:EAX / src,
// EDX = EDX:EAX % src).
func (o *Out) IDivReg32(src string) { o.mulDivOneOperand(7, src) }

func (o *Out) mulDivOneOperand(regField uint8, src string) {
	s := mustReg(src)
	if s.Encoding >= 8 {
		o.buf.Write8(rexBase | rexB)
	}
	o.buf.Write8(0xF7)
	o.buf.Write8(modrmRegDirect(regField, s.Encoding))
}

// DivReg64 emits DIV r/m64 (one-operand unsigned divide: RDX:RAX / src
// -> quotient in RAX, remainder in RDX). Used only by the host
// runtime's hand-assembled itoa routine (hostruntime.go), which works
// with unsigned magnitudes after sign-handling the value itself.
func (o *Out) DivReg64(src string) {
	s := mustReg(src)
	o.buf.Write8(rex(true, Register{}, s))
	o.buf.Write8(0xF7)
	o.buf.Write8(modrmRegDirect(6, s.Encoding))
}

// IMulRegToReg32 emits the two-operand IMUL r32, r/m32 (0F AF /r),
// used by both MulI and the compound multiply-assign lowering, where
// the destination register already holds one operand.
func (o *Out) IMulRegToReg32(dst, src string) {
	d, s := mustReg(dst), mustReg(src)
	if needsREX(false, d, s) {
		o.buf.Write8(rex(false, d, s))
	}
	o.buf.Write8(0x0F)
	o.buf.Write8(0xAF)
	o.buf.Write8(modrmRegDirect(d.Encoding, s.Encoding))
}
