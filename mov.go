// Completion: 100% - Instruction implementation complete
package main

import "fmt"

// MOV family. Adapted from the teacher's mov.go, narrowed to the
// x86-64 shapes this compiler's lowering table actually emits: 64-bit
// register moves, 32/64-bit immediate loads, and dword/qword
// memory loads/stores at [base+disp32] (locals at RBP+4i, globals at
// a materialized absolute base+4i).

// MovRegToReg emits MOV dst, src (64-bit register-to-register).
func (o *Out) MovRegToReg(dst, src string) {
	dstReg, srcReg := mustReg(dst), mustReg(src)
	o.buf.Write8(rex(true, srcReg, dstReg))
	o.buf.Write8(0x89) // MOV r/m64, r64
	o.buf.Write8(modrmRegDirect(srcReg.Encoding, dstReg.Encoding))
}

// MovImmToReg64 emits a 10-byte MOV reg, imm64 (REX.W + 0xB8+reg + imm64).
// This is also the shape of the deliberately clobberable call-target
// patch slot (spec.md section 4.2).
func (o *Out) MovImmToReg64(dst string, imm uint64) {
	dstReg := mustReg(dst)
	b := uint8(rexBase | rexW)
	if dstReg.Encoding >= 8 {
		b |= rexB
	}
	o.buf.Write8(b)
	o.buf.Write8(0xB8 + (dstReg.Encoding & 7))
	o.buf.Write64(imm)
}

// MovImm32ToReg emits MOV r/m64, imm32 (sign-extended): REX.W C7 /0 imm32.
func (o *Out) MovImm32ToReg(dst string, imm int32) {
	dstReg := mustReg(dst)
	o.buf.Write8(rex(true, Register{}, dstReg))
	o.buf.Write8(0xC7)
	o.buf.Write8(modrmRegDirect(0, dstReg.Encoding))
	o.buf.Write32(uint32(imm))
}

// MovDwordMemToReg emits MOV r32, [base+disp32] — the 4-byte-slot load
// used for both local and global variable reads.
func (o *Out) MovDwordMemToReg(dstReg32, base string, disp int32) {
	dst := mustReg(dstReg32)
	b := mustReg(base)
	if (dst.Encoding >= 8) || (b.Encoding >= 8) {
		o.buf.Write8(rex(false, dst, b))
	}
	o.buf.Write8(0x8B) // MOV r32, r/m32
	o.writeMemModRM(dst.Encoding, b, disp)
}

// MovDwordRegToMem emits MOV [base+disp32], r32.
func (o *Out) MovDwordRegToMem(base string, disp int32, srcReg32 string) {
	src := mustReg(srcReg32)
	b := mustReg(base)
	if (src.Encoding >= 8) || (b.Encoding >= 8) {
		o.buf.Write8(rex(false, src, b))
	}
	o.buf.Write8(0x89) // MOV r/m32, r32
	o.writeMemModRM(src.Encoding, b, disp)
}

// MovQwordMemToReg emits MOV r64, [base+disp32].
func (o *Out) MovQwordMemToReg(dstReg64, base string, disp int32) {
	dst := mustReg(dstReg64)
	b := mustReg(base)
	o.buf.Write8(rex(true, dst, b))
	o.buf.Write8(0x8B)
	o.writeMemModRM(dst.Encoding, b, disp)
}

// MovQwordRegToMem emits MOV [base+disp32], r64.
func (o *Out) MovQwordRegToMem(base string, disp int32, srcReg64 string) {
	src := mustReg(srcReg64)
	b := mustReg(base)
	o.buf.Write8(rex(true, src, b))
	o.buf.Write8(0x89)
	o.writeMemModRM(src.Encoding, b, disp)
}

// MovZxByteMemToReg32 emits MOVZX r32, byte [base] (0F B6 /r, disp0) —
// the host runtime's format-string/argument byte reads, which always
// address through a pure cursor register with no displacement.
func (o *Out) MovZxByteMemToReg32(dstReg32, base string) {
	dst := mustReg(dstReg32)
	b := mustReg(base)
	if needsREX(false, dst, b) {
		o.buf.Write8(rex(false, dst, b))
	}
	o.buf.WriteBytes(0x0F, 0xB6)
	o.writeMemModRM(dst.Encoding, b, 0)
}

// MovByteMemToReg emits MOV r8, byte [base] (8A /r, disp0).
func (o *Out) MovByteMemToReg(dstReg8, base string) {
	dst := mustReg(dstReg8)
	b := mustReg(base)
	if needsREX(false, dst, b) {
		o.buf.Write8(rex(false, dst, b))
	}
	o.buf.Write8(0x8A)
	o.writeMemModRM(dst.Encoding, b, 0)
}

// MovByteRegToMem emits MOV byte [base], r8 (88 /r, disp0).
func (o *Out) MovByteRegToMem(base, srcReg8 string) {
	src := mustReg(srcReg8)
	b := mustReg(base)
	if needsREX(false, src, b) {
		o.buf.Write8(rex(false, src, b))
	}
	o.buf.Write8(0x88)
	o.writeMemModRM(src.Encoding, b, 0)
}

// MovImmByteToMem emits MOV byte [base], imm8 (C6 /0 ib, disp0).
func (o *Out) MovImmByteToMem(base string, imm uint8) {
	b := mustReg(base)
	if b.Encoding >= 8 {
		o.buf.Write8(rexBase | rexB)
	}
	o.buf.Write8(0xC6)
	o.writeMemModRM(0, b, 0)
	o.buf.Write8(imm)
}

// writeMemModRM picks disp8 vs disp32 encoding for [base+disp], taking
// care of RSP/R12's required SIB byte (their ModR/M.rm encoding (4)
// doubles as the SIB escape).
func (o *Out) writeMemModRM(regField uint8, base Register, disp int32) {
	needsSIB := (base.Encoding & 7) == 4 // RSP or R12
	switch {
	case disp == 0 && (base.Encoding&7) != 5: // RBP/R13 can't use mod=00 (it means RIP-relative/disp32-only)
		o.buf.Write8(0x00 | ((regField & 7) << 3) | (base.Encoding & 7))
		if needsSIB {
			o.buf.Write8(0x24) // SIB: scale=0, index=none, base=RSP/R12
		}
	case fitsInt8(disp):
		o.buf.Write8(modrmDisp8(regField, base.Encoding))
		if needsSIB {
			o.buf.Write8(0x24)
		}
		o.buf.Write8(uint8(int8(disp)))
	default:
		o.buf.Write8(modrmDisp32(regField, base.Encoding))
		if needsSIB {
			o.buf.Write8(0x24)
		}
		o.buf.Write32(uint32(disp))
	}
}

// MovOperand is the polymorphic "into-operand" entry point spec.md
// section 4.2 describes: dst is always a register; src may be a
// register, an immediate, or a memory location, and flows into the
// right concrete emitter above uniformly.
func (o *Out) MovOperand(dst string, src Operand) {
	switch s := src.(type) {
	case RegOperand:
		o.MovRegToReg(dst, s.Name)
	case ImmOperand:
		if s.Bits > 32 {
			o.MovImmToReg64(dst, uint64(s.Value))
		} else {
			o.MovImm32ToReg(dst, int32(s.Value))
		}
	case MemOperand:
		if s.SizeInBytes == 8 {
			o.MovQwordMemToReg(dst, s.Base, s.Disp)
		} else {
			o.MovDwordMemToReg(dst, s.Base, s.Disp)
		}
	default:
		panic(fmt.Sprintf("jitc: unhandled operand %T", src))
	}
}
