// Completion: 100% - Instruction implementation complete
package main

// CMP and CMOVcc — the flag-setting/flag-consuming pair spec.md
// section 4.3's "int cmp"/"float cmp"/"not" rows build their
// branch-free selection on: xor r8,r8; mov edx,1; cmp …; one cmov of
// edx into the pre-zeroed r8; push result. Adapted from the teacher's cmp.go (CmpRegToReg), x86-64
// only, plus the CMOVcc family the teacher never needed.

// Condition codes used by this compiler's comparison lowering (Intel
// SDM Table: CMOVcc/Jcc tttn field).
const (
	ccE  = 0x4 // equal / zero
	ccNE = 0x5 // not equal / not zero
	ccL  = 0xC // less (signed)
	ccGE = 0xD // greater-or-equal (signed)
	ccLE = 0xE // less-or-equal (signed)
	ccG  = 0xF // greater (signed)

	// Unsigned/CF-based forms, used after FCOMPP+SAHF since x87 compares
	// only ever set CF/PF/ZF (never SF/OF), unlike an integer CMP.
	ccB  = 0x2 // below (CF=1)
	ccAE = 0x3 // above-or-equal (CF=0)
	ccBE = 0x6 // below-or-equal (CF=1 or ZF=1)
	ccA  = 0x7 // above (CF=0 and ZF=0)
	ccS  = 0x8 // sign set
	ccNS = 0x9 // sign clear
)

// CmpRegToReg32 emits CMP r1, r2 (computes r1 - r2, sets flags).
func (o *Out) CmpRegToReg32(r1, r2 string) {
	a, b := mustReg(r1), mustReg(r2)
	if needsREX(false, a, b) {
		o.buf.Write8(rex(false, b, a))
	}
	o.buf.Write8(0x39)
	o.buf.Write8(modrmRegDirect(b.Encoding, a.Encoding))
}

// CmpRegToImm32 emits CMP r/m64, imm32 (REX.W 83/81 /7), used for the
// "cmp RAX, 0" zero-test in if/if-not lowering.
func (o *Out) CmpRegToImm32(reg string, imm int32) {
	r := mustReg(reg)
	o.buf.Write8(rex(true, Register{}, r))
	if imm >= -128 && imm <= 127 {
		o.buf.Write8(0x83)
		o.buf.Write8(modrmRegDirect(7, r.Encoding))
		o.buf.Write8(uint8(int8(imm)))
	} else {
		o.buf.Write8(0x81)
		o.buf.Write8(modrmRegDirect(7, r.Encoding))
		o.buf.Write32(uint32(imm))
	}
}

// CmovCC32 emits CMOVcc dst32, src32 (0F 40+cc /r).
func (o *Out) CmovCC32(cc uint8, dst, src string) {
	d, s := mustReg(dst), mustReg(src)
	if needsREX(false, d, s) {
		o.buf.Write8(rex(false, d, s))
	}
	o.buf.Write8(0x0F)
	o.buf.Write8(0x40 + cc)
	o.buf.Write8(modrmRegDirect(d.Encoding, s.Encoding))
}

// TestRegReg64 emits TEST r64, r64 (used by logical-not: test rax,rax).
func (o *Out) TestRegReg64(r1, r2 string) {
	a, b := mustReg(r1), mustReg(r2)
	o.buf.Write8(rex(true, b, a))
	o.buf.Write8(0x85)
	o.buf.Write8(modrmRegDirect(b.Encoding, a.Encoding))
}
