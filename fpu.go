// Completion: 100% - Instruction implementation complete
package main

// x87 FPU transfers and arithmetic (spec.md section 4.2's "FPU stage"
// and section 4.3's float ops/cast rows). None of the teacher's files
// touch x87 state (Vibe67 uses SSE2 xmm/addpd throughout); this file
// has no direct teacher analogue and is grounded purely on spec.md's
// own instruction-sequence prose plus
// original_source/src/jit/x86/asm_macro.rs's fixed-sequence-macro
// convention (hand-encode the exact sequence named, don't generalize).

func (o *Out) memPrefix(base Register) {
	if base.Encoding >= 8 {
		o.buf.Write8(rexBase | rexB)
	}
}

// FldDwordMem emits FLD dword [base+disp] (load single-precision float
// onto the x87 stack, widened to the 80-bit internal format).
func (o *Out) FldDwordMem(base string, disp int32) {
	b := mustReg(base)
	o.memPrefix(b)
	o.buf.Write8(0xD9)
	o.writeMemModRM(0, b, disp)
}

// FstpDwordMem emits FSTP dword [base+disp] (store top-of-stack as
// single-precision float and pop).
func (o *Out) FstpDwordMem(base string, disp int32) {
	b := mustReg(base)
	o.memPrefix(b)
	o.buf.Write8(0xD9)
	o.writeMemModRM(3, b, disp)
}

// FildDwordMem emits FILD dword [base+disp] (load a 32-bit integer,
// converting to float, onto the x87 stack — the i->f half of the cast
// opcode).
func (o *Out) FildDwordMem(base string, disp int32) {
	b := mustReg(base)
	o.memPrefix(b)
	o.buf.Write8(0xDB)
	o.writeMemModRM(0, b, disp)
}

// FistpDwordMem emits FISTP dword [base+disp] (convert top-of-stack to
// a 32-bit integer per the current rounding control, store, and pop —
// the f->i half of the cast opcode, after codegen.go's
// floatToIntTruncating has configured RC=truncate).
func (o *Out) FistpDwordMem(base string, disp int32) {
	b := mustReg(base)
	o.memPrefix(b)
	o.buf.Write8(0xDB)
	o.writeMemModRM(3, b, disp)
}

// FiaddDwordMem emits FIADD dword [base+disp] (add a 32-bit integer
// operand to ST(0)). Float inc/dec does not use it; codegen.go's
// lowerIncDec loads 1.0 with FLD1 and uses FADDP/FSUBP instead.
func (o *Out) FiaddDwordMem(base string, disp int32) {
	b := mustReg(base)
	o.memPrefix(b)
	o.buf.Write8(0xDA)
	o.writeMemModRM(0, b, disp)
}

// FaddSTST1 emits FADD ST(0), ST(1) (no pop).
func (o *Out) FaddSTST1() { o.buf.WriteBytes(0xD8, 0xC1) }

// FsubSTST1 emits FSUB ST(0), ST(1) (no pop).
func (o *Out) FsubSTST1() { o.buf.WriteBytes(0xD8, 0xE1) }

// FmulSTST1 emits FMUL ST(0), ST(1) (no pop).
func (o *Out) FmulSTST1() { o.buf.WriteBytes(0xD8, 0xC9) }

// FdivSTST1 emits FDIV ST(0), ST(1) (no pop).
func (o *Out) FdivSTST1() { o.buf.WriteBytes(0xD8, 0xF1) }

// FaddpPop emits FADDP ST(1), ST(0): ST(1) += ST(0), then pop — the
// commutative add-and-consume-both-operands form codegen.go uses for
// AddF so only the single summed result remains on the FPU stack.
func (o *Out) FaddpPop() { o.buf.WriteBytes(0xDE, 0xC1) }

// FsubpPop emits FSUBP ST(1), ST(0): ST(1) = ST(1) - ST(0), then pop.
func (o *Out) FsubpPop() { o.buf.WriteBytes(0xDE, 0xE9) }

// FmulpPop emits FMULP ST(1), ST(0): ST(1) *= ST(0), then pop.
func (o *Out) FmulpPop() { o.buf.WriteBytes(0xDE, 0xC9) }

// FdivpPop emits FDIVP ST(1), ST(0): ST(1) = ST(1) / ST(0), then pop.
func (o *Out) FdivpPop() { o.buf.WriteBytes(0xDE, 0xF9) }

// FldST0 emits FLD ST(0) (D9 C0): duplicate the top of the FPU stack.
// The host runtime's float-to-decimal conversion uses this to take a
// disposable copy before a destructive FISTP truncation, keeping the
// original value live underneath for the next stage of the pipeline.
func (o *Out) FldST0() { o.buf.WriteBytes(0xD9, 0xC0) }

// Fld1 emits FLD1 (push the constant 1.0 onto the FPU stack) — the
// IncVar/DecVar float lowering's addend, since x87 has no
// add-immediate form.
func (o *Out) Fld1() { o.buf.WriteBytes(0xD9, 0xE8) }

// Fchs emits FCHS (negate ST(0) in place).
func (o *Out) Fchs() { o.buf.WriteBytes(0xD9, 0xE0) }

// Fcompp emits FCOMPP (compare ST(0), ST(1); pop both; result in the
// FPU status word).
func (o *Out) Fcompp() { o.buf.WriteBytes(0xDE, 0xD9) }

// FstswAX emits FSTSW AX (store the FPU status word into AX — raw
// bytes, per spec.md section 4.2, since this mnemonic has no
// general-purpose-register ModR/M form).
func (o *Out) FstswAX() { o.buf.WriteBytes(0x9B, 0xDF, 0xE0) }

// Fwait emits FWAIT, required before reading the status word FSTSW
// just wrote to guarantee the comparison has retired.
func (o *Out) Fwait() { o.buf.Write8(0x9B) }

// Sahf emits SAHF (load AH into the low byte of EFLAGS, making the
// FPU's C0/C2/C3 condition bits — copied into AH by FSTSW — visible to
// CMOVcc).
func (o *Out) Sahf() { o.buf.Write8(0x9E) }

// FstcwMem emits FSTCW [base+disp] (store the 16-bit FPU control word).
func (o *Out) FstcwMem(base string, disp int32) {
	b := mustReg(base)
	o.memPrefix(b)
	o.buf.Write8(0xD9)
	o.writeMemModRM(7, b, disp)
}

// FldcwMem emits FLDCW [base+disp] (load the 16-bit FPU control word).
func (o *Out) FldcwMem(base string, disp int32) {
	b := mustReg(base)
	o.memPrefix(b)
	o.buf.Write8(0xD9)
	o.writeMemModRM(5, b, disp)
}
