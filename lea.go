// Completion: 100% - Instruction implementation complete
package main

// Absolute-address materialization. The teacher's lea.go computes a
// symbol's address at static-link time via LEA reg, [rip+disp32] since
// Vibe67 emits relocatable ELF/PE text sections; this JIT has no
// relocatable object format to resolve against at link time. The
// globals array's address is already a concrete host pointer when
// codegen.go asks for it; string pointers and callee code addresses
// are emitted as movabs slots that linker.go patches once the regions
// are placed. LoadAbsoluteAddress
// keeps the teacher's "get this address into a register" intent but
// realizes it the way a JIT must: baking the pointer value straight
// into a movabs, the same shape MovImmToReg64 already emits for
// integer constants.

// LoadAbsoluteAddress emits MOV reg, imm64 where imm64 is a live host
// pointer (the materialized globals base spec.md section 3's
// global-access rows require).
func (o *Out) LoadAbsoluteAddress(dst string, addr uint64) {
	o.MovImmToReg64(dst, addr)
}
