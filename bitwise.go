// Completion: 100% - Instruction implementation complete
package main

// AND/OR/XOR/shifts/unary bitwise on 32-bit registers. Adapted from
// the teacher's and.go/or.go/xor.go/shl.go/shr.go/not.go/neg.go,
// x86-64 only, collapsed into one file since each is a one-line
// variant of the same REX+opcode+ModRM shape.

func (o *Out) aluReg32(opcode uint8, dst, src string) {
	d, s := mustReg(dst), mustReg(src)
	if needsREX(false, d, s) {
		o.buf.Write8(rex(false, s, d))
	}
	o.buf.Write8(opcode)
	o.buf.Write8(modrmRegDirect(s.Encoding, d.Encoding))
}

func (o *Out) AndRegToReg32(dst, src string) { o.aluReg32(0x21, dst, src) }
func (o *Out) OrRegToReg32(dst, src string)  { o.aluReg32(0x09, dst, src) }
func (o *Out) XorRegToReg32(dst, src string) { o.aluReg32(0x31, dst, src) }

// XorRegToReg64 zeroes a 64-bit register (XOR dst, dst is the
// conventional zero-idiom; here both operands are named explicitly so
// it also serves general 64-bit XOR, e.g. xor r8, r8 in comparisons).
func (o *Out) XorRegToReg64(dst, src string) {
	d, s := mustReg(dst), mustReg(src)
	o.buf.Write8(rex(true, s, d))
	o.buf.Write8(0x31)
	o.buf.Write8(modrmRegDirect(s.Encoding, d.Encoding))
}

// ShlRegByCL emits SHL dst32, CL.
func (o *Out) ShlRegByCL(dst string) { o.shiftByCL(4, dst) }

// ShrRegByCL emits SAR dst32, CL (arithmetic shift right — the
// bytecode's integer values are signed).
func (o *Out) ShrRegByCL(dst string) { o.shiftByCL(7, dst) }

func (o *Out) shiftByCL(regField uint8, dst string) {
	d := mustReg(dst)
	if d.Encoding >= 8 {
		o.buf.Write8(rexBase | rexB)
	}
	o.buf.Write8(0xD3) // SHL/SAR r/m32, CL
	o.buf.Write8(modrmRegDirect(regField, d.Encoding))
}

// NegMem32 emits NEG dword [base+disp]. codegen.go does not use it:
// NegI pops the operand into a register, negates it there, and pushes
// the result.
func (o *Out) NegMem32(base string, disp int32) { o.unaryMem32(3, base, disp) }

// NotMem32 emits NOT dword [base+disp].
func (o *Out) NotMem32(base string, disp int32) { o.unaryMem32(2, base, disp) }

func (o *Out) unaryMem32(regField uint8, base string, disp int32) {
	b := mustReg(base)
	if b.Encoding >= 8 {
		o.buf.Write8(rexBase | rexB)
	}
	o.buf.Write8(0xF7) // NEG/NOT r/m32
	o.writeMemModRM(regField, b, disp)
}

// IncMem32 emits INC dword [base+disp].
func (o *Out) IncMem32(base string, disp int32) { o.incDecMem32(0, base, disp) }

// DecMem32 emits DEC dword [base+disp].
func (o *Out) DecMem32(base string, disp int32) { o.incDecMem32(1, base, disp) }

func (o *Out) incDecMem32(regField uint8, base string, disp int32) {
	b := mustReg(base)
	if b.Encoding >= 8 {
		o.buf.Write8(rexBase | rexB)
	}
	o.buf.Write8(0xFF) // INC/DEC r/m32
	o.writeMemModRM(regField, b, disp)
}

// NegReg32 emits NEG r32 (register-direct, mod=11): two's-complement
// negate in place.
func (o *Out) NegReg32(dst string) { o.unaryReg32(3, dst) }

// negReg64 emits NEG r64 (REX.W F7 /3, register-direct) — used only by
// the host runtime's itoa routine (hostruntime.go) to negate a signed
// magnitude before the unsigned divide loop.
func (o *Out) negReg64(dst string) {
	d := mustReg(dst)
	o.buf.Write8(rex(true, Register{}, d))
	o.buf.Write8(0xF7)
	o.buf.Write8(modrmRegDirect(3, d.Encoding))
}

// NotReg32 emits NOT r32 (register-direct, mod=11): one's-complement in place.
func (o *Out) NotReg32(dst string) { o.unaryReg32(2, dst) }

func (o *Out) unaryReg32(regField uint8, dst string) {
	d := mustReg(dst)
	if d.Encoding >= 8 {
		o.buf.Write8(rexBase | rexB)
	}
	o.buf.Write8(0xF7)
	o.buf.Write8(modrmRegDirect(regField, d.Encoding))
}

// IncReg32 emits INC r32 (register-direct form, used after loading a
// global into a scratch register for inc/dec-global).
func (o *Out) IncReg32(dst string) { o.incDecReg32(0, dst) }

// DecReg32 emits DEC r32.
func (o *Out) DecReg32(dst string) { o.incDecReg32(1, dst) }

func (o *Out) incDecReg32(regField uint8, dst string) {
	d := mustReg(dst)
	if d.Encoding >= 8 {
		o.buf.Write8(rexBase | rexB)
	}
	o.buf.Write8(0xFF)
	o.buf.Write8(modrmRegDirect(regField, d.Encoding))
}
