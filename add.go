// Completion: 100% - Instruction implementation complete
package main

// ADD/SUB on 32-bit registers and memory. Adapted from the teacher's
// add.go/sub.go, x86-64 only.

// AddRegToReg32 emits ADD dst32, src32.
func (o *Out) AddRegToReg32(dst, src string) {
	d, s := mustReg(dst), mustReg(src)
	if needsREX(false, d, s) {
		o.buf.Write8(rex(false, s, d))
	}
	o.buf.Write8(0x01)
	o.buf.Write8(modrmRegDirect(s.Encoding, d.Encoding))
}

// AddImmToReg64 emits ADD r/m64, imm32 (REX.W 81 /0 imm32), used for
// stack-pointer adjustments (overflow-argument cleanup, epilogue).
func (o *Out) AddImmToReg64(dst string, imm int32) {
	d := mustReg(dst)
	o.buf.Write8(rex(true, Register{}, d))
	if imm >= -128 && imm <= 127 {
		o.buf.Write8(0x83)
		o.buf.Write8(modrmRegDirect(0, d.Encoding))
		o.buf.Write8(uint8(int8(imm)))
	} else {
		o.buf.Write8(0x81)
		o.buf.Write8(modrmRegDirect(0, d.Encoding))
		o.buf.Write32(uint32(imm))
	}
}

// SubImmFromReg64 emits SUB r/m64, imm32, same encoding family as Add
// above with reg field /5.
func (o *Out) SubImmFromReg64(dst string, imm int32) {
	d := mustReg(dst)
	o.buf.Write8(rex(true, Register{}, d))
	if imm >= -128 && imm <= 127 {
		o.buf.Write8(0x83)
		o.buf.Write8(modrmRegDirect(5, d.Encoding))
		o.buf.Write8(uint8(int8(imm)))
	} else {
		o.buf.Write8(0x81)
		o.buf.Write8(modrmRegDirect(5, d.Encoding))
		o.buf.Write32(uint32(imm))
	}
}

// AddImm8ToReg8 emits ADD r/m8, imm8 (80 /0 ib, register-direct) — the
// host runtime's itoa subroutine uses this for the digit-to-ASCII
// adjustment ('0'+digit).
func (o *Out) AddImm8ToReg8(dst string, imm uint8) {
	d := mustReg(dst)
	if d.Encoding >= 8 {
		o.buf.Write8(rexBase | rexB)
	}
	o.buf.Write8(0x80)
	o.buf.Write8(modrmRegDirect(0, d.Encoding))
	o.buf.Write8(imm)
}

// SubRegFromReg32 emits SUB dst32, src32.
func (o *Out) SubRegFromReg32(dst, src string) {
	d, s := mustReg(dst), mustReg(src)
	if needsREX(false, d, s) {
		o.buf.Write8(rex(false, s, d))
	}
	o.buf.Write8(0x29)
	o.buf.Write8(modrmRegDirect(s.Encoding, d.Encoding))
}
