// Completion: 100% - Instruction implementation complete
package main

// Call lowering, including spec.md section 9's "delete the preceding
// push" trick. codegen.go's lowerCall takes the callee from the call
// command's own Imm and, inside AlignStackForCall, emits it as a 5-byte
// push imm32 placeholder immediately before calling LowerCall, so that
// push is always the tail of the buffer. It is never wanted as a stack
// value, so LowerCall erases it and emits the real sequence in its
// place instead of leaving it and adding a pop.

// scratchCallReg is clobbered by every call lowered through this file;
// it is never relied on to survive a call site (spec.md section 6).
const scratchCallReg = "r11"

// CallReg emits CALL r/m64 (FF /2), register-indirect.
func (o *Out) CallReg(reg string) {
	r := mustReg(reg)
	if r.Encoding >= 8 {
		o.buf.Write8(rexBase | rexB)
	}
	o.buf.Write8(0xFF)
	o.buf.Write8(modrmRegDirect(2, r.Encoding))
}

// DeletePrecedingPushImm32 rewinds the buffer past the 5-byte
// push-imm32 codegen.go staged as the call's callee operand.
func (o *Out) DeletePrecedingPushImm32() { o.buf.Truncate(5) }

// LowerCall erases the preceding push-imm32 placeholder and emits the
// resolved call: a 10-byte movabs loading target into the scratch
// register, followed by CALL r11. target is a final native address
// when the callee's region is already placed, or 0 when it is not yet
// known (another script, or a forward reference within the same
// linking pass) — the returned offset is where linker.go patches in
// the real address once every script's region has a base.
func (o *Out) LowerCall(target uint64) (patchOffset int) {
	o.DeletePrecedingPushImm32()
	o.MovImmToReg64(scratchCallReg, target)
	patchOffset = o.pos() - 8
	o.CallReg(scratchCallReg)
	return patchOffset
}

// andRegImm8 emits AND r/m64, imm8 (REX.W 83 /4 ib).
func (o *Out) andRegImm8(dst string, imm8 uint8) {
	d := mustReg(dst)
	o.buf.Write8(rex(true, Register{}, d))
	o.buf.Write8(0x83)
	o.buf.Write8(modrmRegDirect(4, d.Encoding))
	o.buf.Write8(imm8)
}

// addReg64 emits ADD dst64, src64 (REX.W 01 /r).
func (o *Out) addReg64(dst, src string) {
	d, s := mustReg(dst), mustReg(src)
	o.buf.Write8(rex(true, s, d))
	o.buf.Write8(0x01)
	o.buf.Write8(modrmRegDirect(s.Encoding, d.Encoding))
}

// subReg64 emits SUB dst64, src64 (REX.W 29 /r).
func (o *Out) subReg64(dst, src string) {
	d, s := mustReg(dst), mustReg(src)
	o.buf.Write8(rex(true, s, d))
	o.buf.Write8(0x29)
	o.buf.Write8(modrmRegDirect(s.Encoding, d.Encoding))
}

// CallRel32 emits CALL rel32 (E8 id) with a zero placeholder, for a
// direct call to another offset within the same code buffer — the
// host runtime's msc_printf thunk uses this to call its own
// itoa/itoa_hex/ftoa_append subroutines, as opposed to LowerCall's
// cross-region indirect-through-a-register form.
func (o *Out) CallRel32() (patchOffset int) {
	o.buf.Write8(0xE8)
	patchOffset = o.buf.Len()
	o.buf.Write32(0)
	return patchOffset
}

// Ret emits RET (single-byte near return).
func (o *Out) Ret() { o.buf.Write8(0xC3) }

// AlignStackForCall wraps body (which must itself emit exactly one
// CALL) in spec.md section 9's explicit alignment dance:
//
//	push r15; mov r15, rsp; and r15, 8; sub rsp, r15
//	<body: the call>
//	add rsp, r15; pop r15
//
// The virtual stack's 8-byte slots can leave RSP at either an 8- or
// 16-byte boundary at any given call site; System V requires 16-byte
// alignment at the CALL instruction itself (after the return address
// push, RSP must be 16-aligned at the callee's entry), so r15 carries
// either 0 or 8 extra bytes of padding to correct for whichever parity
// the virtual stack happened to leave.
func (o *Out) AlignStackForCall(body func()) {
	o.PushReg("r15")
	o.MovRegToReg("r15", "rsp")
	o.andRegImm8("r15", 8)
	o.subReg64("rsp", "r15")
	body()
	o.addReg64("rsp", "r15")
	o.PopReg("r15")
}
