// Completion: 100% - Per-script code generator complete
package main

// Per-script code generator: a single forward pass over a Script's
// Commands, lowering each into native x86-64 bytes via the emitters in
// mov.go/push.go/add.go/bitwise.go/muldiv.go/cmp.go/fpu.go/jump.go/
// call.go/frame.go. Grounded on original_source/src/jit/x86/mod.rs's
// Compilable::compile match-on-opcode driver, adapted from a per-Cmd
// Rust match arm into a per-Opcode Go switch, and on the teacher's
// "one emitter call per IR node" shape in backend.go/default.go (the
// only other pack member with a single-pass lowering loop).
//
// The virtual stack lives on the native stack, one 8-byte slot per
// pushed value (spec.md section 3's invariant); locals and globals are
// 4 bytes per slot, addressed RBP-relative or through a materialized
// absolute base respectively.
//
// Two side tables drive resolution after the forward pass finishes:
//
//	M (nativeOffsetOf)  bytecode Position -> native buffer offset,
//	                    recorded for every command as it's reached
//	J (pendingJumps)    rel32 patch offsets awaiting M, resolved once
//	                    the whole script has been walked
//
// A third table, trySet (spec.md section 4.3's "T"), holds bytecode
// positions that must receive an injected "push rax" the instant
// they're reached: Try(target, π) inserts target into T when its
// push-bit is set. End always just emits the epilogue — there is no
// nesting relationship between Try and End; a script can End without
// ever executing a Try.
//
// Calls (to other scripts, or to the host runtime's msc_printf) can
// never be resolved here — their targets' addresses don't exist until
// linker.go has placed every script's region — so each is recorded as
// a CallRelocation and left as a zeroed movabs for the linker to patch.

const calleeHostPrintF = -1

// CallRelocation is one call site whose absolute target must be
// patched in once the callee's final address is known.
type CallRelocation struct {
	PatchOffset  int // offset of the movabs imm64 field, within this script's code
	CalleeScript int // >=0: script index; calleeHostPrintF: the generated msc_printf thunk
}

// StringRelocation is one site where a pointer into the linked string
// section must be patched in once that section has been placed.
type StringRelocation struct {
	PatchOffset int
	StringIndex int
}

type pendingJump struct {
	patchOffset int
	targetPos   int // bytecode Position of the destination command
}

type scriptCodegen struct {
	out         *Out
	buf         *CodeBuffer
	script      *Script
	scriptIndex int
	globalsBase uint64

	nativeOffsetOf map[int]int
	pendingJumps   []pendingJump
	relocations    []CallRelocation
	stringRelocs   []StringRelocation
	trySet         map[int]bool
}

// CompileScript lowers one Script into native code. globalsBase is the
// already-allocated globals array's absolute address (spec.md section
// 3: a fixed 256-slot int32 array materialized before any script
// compiles, so every GetVar/SetVar on ScopeGlobal can bake its address
// in directly instead of relocating it).
func CompileScript(scriptIndex int, s *Script, globalsBase uint64) (*CodeBuffer, []CallRelocation, []StringRelocation, error) {
	buf := &CodeBuffer{}
	g := &scriptCodegen{
		out:            NewOut(buf),
		buf:            buf,
		script:         s,
		scriptIndex:    scriptIndex,
		globalsBase:    globalsBase,
		nativeOffsetOf: make(map[int]int, len(s.Commands)),
	}
	if err := g.run(); err != nil {
		return nil, nil, nil, err
	}
	return buf, g.relocations, g.stringRelocs, nil
}

func (g *scriptCodegen) run() error {
	for i, cmd := range g.script.Commands {
		g.nativeOffsetOf[cmd.Position] = g.buf.Len()

		if i == 0 && cmd.Opcode != OpBegin {
			return structuralViolation(g.scriptIndex, cmd, "script does not start with Begin")
		}
		if i != 0 && cmd.Opcode == OpBegin {
			return structuralViolation(g.scriptIndex, cmd, "duplicate Begin")
		}

		if g.trySet[cmd.Position] {
			g.out.PushReg("rax")
		}

		if err := g.lower(cmd); err != nil {
			return err
		}
	}
	return g.resolveJumps()
}

func (g *scriptCodegen) resolveJumps() error {
	for _, j := range g.pendingJumps {
		target, ok := g.nativeOffsetOf[j.targetPos]
		if !ok {
			return &CompileError{Err: ErrStructuralViolation, Script: g.scriptIndex, Position: j.targetPos, Opcode: OpJump}
		}
		g.out.PatchRel32(j.patchOffset, target)
	}
	return nil
}

func (g *scriptCodegen) lower(cmd Command) error {
	o := g.out
	switch cmd.Opcode {
	case OpNop:
		g.buf.Write8(0x90)

	case OpBegin:
		o.EmitPrologue(g.script.LocalCount)
		o.SpillIncomingArgs(g.script.ArgCount, g.script.LocalCount)

	case OpPushShort:
		o.PushImm32(int32(uint16(cmd.Imm)))
	case OpPushInt:
		o.PushImm32(int32(cmd.Imm))

	// Dup duplicates only with its push-bit set and Pop discards only
	// with its push-bit clear; Dup+¬π and Pop+π emit nothing.
	case OpDup:
		if cmd.Push {
			o.MovQwordMemToReg("rax", "rsp", 0)
			o.PushReg("rax")
		}
	case OpPop:
		if !cmd.Push {
			o.PopReg("rax")
		}

	case OpGetVar:
		g.loadVar(cmd, "eax")
		if cmd.Push {
			o.PushReg("rax")
		}
	case OpSetVar:
		o.PopReg("rax")
		g.storeVar(cmd, "eax")

	case OpIncVar, OpDecVar:
		return g.lowerIncDec(cmd)

	case OpAddAssign, OpSubAssign, OpMulAssign, OpDivAssign:
		return g.lowerCompoundAssign(cmd)
	case OpModAssign, OpAndAssign, OpOrAssign, OpXorAssign:
		return g.lowerCompoundAssignIntOnly(cmd)

	case OpAddI:
		g.binaryInt(func(d, s string) { o.AddRegToReg32(d, s) })
	case OpSubI:
		g.binaryInt(func(d, s string) { o.SubRegFromReg32(d, s) })
	case OpMulI:
		g.binaryInt(func(d, s string) { o.IMulRegToReg32(d, s) })
	case OpAndI:
		g.binaryInt(func(d, s string) { o.AndRegToReg32(d, s) })
	case OpOrI:
		g.binaryInt(func(d, s string) { o.OrRegToReg32(d, s) })
	case OpXorI:
		g.binaryInt(func(d, s string) { o.XorRegToReg32(d, s) })

	case OpDivI, OpModI:
		o.PopReg("rcx")
		o.PopReg("rax")
		o.XorRegToReg32("edx", "edx")
		o.IDivReg32("ecx")
		if cmd.Opcode == OpDivI {
			o.PushReg("rax")
		} else {
			o.PushReg("rdx")
		}

	case OpShl:
		o.PopReg("rcx")
		o.PopReg("rax")
		o.ShlRegByCL("eax")
		o.PushReg("rax")
	case OpShr:
		o.PopReg("rcx")
		o.PopReg("rax")
		o.ShrRegByCL("eax")
		o.PushReg("rax")

	case OpNegI:
		o.PopReg("rax")
		o.NegReg32("eax")
		o.PushReg("rax")
	case OpNotI:
		o.PopReg("rax")
		o.NotReg32("eax")
		o.PushReg("rax")
	case OpNotL:
		o.PopReg("rax")
		o.XorRegToReg32("r8", "r8")
		o.MovImm32ToReg("edx", 1)
		o.TestRegReg64("rax", "rax")
		o.CmovCC32(ccE, "r8", "edx")
		o.PushReg("r8")

	case OpAddF:
		g.binaryFloat(func() { o.FaddpPop() })
	case OpSubF:
		g.binaryFloat(func() { o.FsubpPop() })
	case OpMulF:
		g.binaryFloat(func() { o.FmulpPop() })
	case OpDivF:
		g.binaryFloat(func() { o.FdivpPop() })
	case OpNegF:
		o.PopReg("rax")
		g.spillDwordAndFld("eax")
		o.Fchs()
		g.fstpAndReload("eax")
		o.PushReg("rax")

	case OpEqualsI, OpNotEqualsI, OpLessI, OpLessEqualI, OpGreaterI, OpGreaterEqualI:
		g.compareInt(cmd.Opcode)
	case OpEqualsF, OpNotEqualsF, OpLessF, OpLessEqualF, OpGreaterF, OpGreaterEqualF:
		g.compareFloat(cmd.Opcode)

	case OpIntToFloat:
		if cmd.Index != 0 {
			return structuralViolation(g.scriptIndex, cmd, "cast slot must be zero")
		}
		o.PopReg("rax")
		o.SubImmFromReg64("rsp", 8)
		o.MovDwordRegToMem("rsp", 0, "eax")
		o.FildDwordMem("rsp", 0)
		o.FstpDwordMem("rsp", 0)
		o.MovDwordMemToReg("eax", "rsp", 0)
		o.AddImmToReg64("rsp", 8)
		o.PushReg("rax")
	case OpFloatToInt:
		if cmd.Index != 0 {
			return structuralViolation(g.scriptIndex, cmd, "cast slot must be zero")
		}
		o.PopReg("rax")
		g.floatToIntTruncating("eax")
		o.PushReg("rax")

	case OpJump, OpJumpElse:
		patch := o.Jmp()
		g.pendingJumps = append(g.pendingJumps, pendingJump{patch, int(cmd.Imm)})
	case OpIfZero, OpIfNotZero:
		o.PopReg("rax")
		o.CmpRegToImm32("rax", 0)
		cc := uint8(ccNE)
		if cmd.Opcode == OpIfZero {
			cc = ccE
		}
		patch := o.Jcc(cc)
		g.pendingJumps = append(g.pendingJumps, pendingJump{patch, int(cmd.Imm)})

	case OpTry:
		if cmd.Push {
			if g.trySet == nil {
				g.trySet = make(map[int]bool)
			}
			g.trySet[int(cmd.Imm)] = true
		}
	case OpEnd:
		o.EmitEpilogue(g.script.LocalCount)

	case OpReturnValue:
		o.PopReg("rax")
		o.EmitEpilogue(g.script.LocalCount)
	case OpReturnVoid:
		o.EmitEpilogue(g.script.LocalCount)

	case OpCall0, OpCall1, OpCall2:
		return g.lowerCall(cmd)

	case OpPrintF:
		return g.lowerPrintF(cmd)
	case OpSyscall:
		return g.lowerSyscall(cmd)
	case OpExit:
		o.PopReg("rdi")
		o.MovImm32ToReg("eax", 60) // SYS_exit
		g.buf.WriteBytes(0x0F, 0x05)

	default:
		return unsupportedOpcode(g.scriptIndex, cmd)
	}
	return nil
}

// loadVar reads a variable (local or global) into a named 32-bit
// register.
func (g *scriptCodegen) loadVar(cmd Command, dst32 string) {
	o := g.out
	if cmd.Scope == ScopeLocal {
		o.MovDwordMemToReg(dst32, "rbp", localSlotDisp(cmd.Index))
		return
	}
	o.LoadAbsoluteAddress("r10", g.globalsBase+uint64(4*cmd.Index))
	o.MovDwordMemToReg(dst32, "r10", 0)
}

// storeVar writes a 32-bit register back into a variable's slot.
func (g *scriptCodegen) storeVar(cmd Command, src32 string) {
	o := g.out
	if cmd.Scope == ScopeLocal {
		o.MovDwordRegToMem("rbp", localSlotDisp(cmd.Index), src32)
		return
	}
	o.LoadAbsoluteAddress("r10", g.globalsBase+uint64(4*cmd.Index))
	o.MovDwordRegToMem("r10", 0, src32)
}

// varAddr returns the (base register, displacement) pair for a
// variable's address, loading the global base into r10 first when
// needed — used by the FPU-based IncVar/DecVar and compound-assign
// lowerings, which address memory directly rather than round-tripping
// through a GP register.
func (g *scriptCodegen) varAddr(cmd Command) (base string, disp int32) {
	if cmd.Scope == ScopeLocal {
		return "rbp", localSlotDisp(cmd.Index)
	}
	g.out.LoadAbsoluteAddress("r10", g.globalsBase+uint64(4*cmd.Index))
	return "r10", 0
}

func (g *scriptCodegen) binaryInt(op func(dst, src string)) {
	o := g.out
	o.PopReg("rcx")
	o.PopReg("rax")
	op("eax", "ecx")
	o.PushReg("rax")
}

// spillDwordAndFld stores a 32-bit register to a transient native
// stack slot and loads it onto the FPU stack, then releases the slot —
// the bridge every float opcode needs since x87 FLD only ever reads
// from memory, never a general-purpose register.
func (g *scriptCodegen) spillDwordAndFld(reg32 string) {
	o := g.out
	o.SubImmFromReg64("rsp", 8)
	o.MovDwordRegToMem("rsp", 0, reg32)
	o.FldDwordMem("rsp", 0)
	o.AddImmToReg64("rsp", 8)
}

// fstpAndReload stores ST(0) to a transient native stack slot (popping
// it off the FPU stack) and reloads it into a general-purpose register.
func (g *scriptCodegen) fstpAndReload(reg32 string) {
	o := g.out
	o.SubImmFromReg64("rsp", 8)
	o.FstpDwordMem("rsp", 0)
	o.MovDwordMemToReg(reg32, "rsp", 0)
	o.AddImmToReg64("rsp", 8)
}

// binaryFloat pops two 8-byte virtual-stack slots (float32 bit
// patterns in their low dword), loads left then right onto the FPU
// stack (ST(1)=left, ST(0)=right), applies combine — one of the *pPop
// forms, which consumes both and leaves a single result — and pushes
// the result back.
func (g *scriptCodegen) binaryFloat(combine func()) {
	o := g.out
	o.PopReg("rcx") // right
	o.PopReg("rax") // left
	g.spillDwordAndFld("eax")
	g.spillDwordAndFld("ecx")
	combine()
	g.fstpAndReload("eax")
	o.PushReg("rax")
}

func (g *scriptCodegen) compareInt(op Opcode) {
	o := g.out
	o.PopReg("rcx") // right
	o.PopReg("rax") // left
	o.XorRegToReg32("r8", "r8")
	o.MovImm32ToReg("edx", 1)
	o.CmpRegToReg32("eax", "ecx")
	cc := map[Opcode]uint8{
		OpEqualsI: ccE, OpNotEqualsI: ccNE,
		OpLessI: ccL, OpLessEqualI: ccLE,
		OpGreaterI: ccG, OpGreaterEqualI: ccGE,
	}[op]
	o.CmovCC32(cc, "r8", "edx")
	o.PushReg("r8")
}

// compareFloat compares left against right via FCOMPP, which always
// compares ST(0) against ST(1); since this lowering loads left then
// right (ST(0)=right, ST(1)=left), the flags describe "right vs left",
// so the condition codes below are each other's mirror image of the
// integer table in compareInt.
func (g *scriptCodegen) compareFloat(op Opcode) {
	o := g.out
	o.PopReg("rcx") // right
	o.PopReg("rax") // left
	g.spillDwordAndFld("eax") // ST(0) = left
	g.spillDwordAndFld("ecx") // ST(0) = right, ST(1) = left
	o.XorRegToReg32("r8", "r8")
	o.MovImm32ToReg("edx", 1)
	o.Fcompp()
	o.Fwait()
	o.FstswAX()
	o.Sahf()
	cc := map[Opcode]uint8{
		OpEqualsF: ccE, OpNotEqualsF: ccNE,
		OpLessF: ccA, OpLessEqualF: ccAE,
		OpGreaterF: ccB, OpGreaterEqualF: ccBE,
	}[op]
	o.CmovCC32(cc, "r8", "edx")
	o.PushReg("r8")
}

// floatToIntTruncating converts the float32 bits in reg32 to a
// truncated int32 in reg32, temporarily patching the FPU control
// word's rounding-control bits to truncate-toward-zero (the C cast's
// semantics) and restoring it afterward.
func (g *scriptCodegen) floatToIntTruncating(reg32 string) {
	o := g.out
	o.SubImmFromReg64("rsp", 16) // [rsp+0]=orig cw, [rsp+4]=patched cw, [rsp+8]=value scratch
	o.MovDwordRegToMem("rsp", 8, reg32) // saved before eax/ecx are reused below
	o.FstcwMem("rsp", 0)
	o.MovDwordMemToReg("eax", "rsp", 0)
	o.MovImm32ToReg("ecx", 0x0C00) // RC = truncate-toward-zero
	o.OrRegToReg32("eax", "ecx")
	o.MovDwordRegToMem("rsp", 4, "eax")
	o.FldcwMem("rsp", 4)
	o.FldDwordMem("rsp", 8)
	o.FistpDwordMem("rsp", 8)
	o.MovDwordMemToReg(reg32, "rsp", 8)
	o.FldcwMem("rsp", 0)
	o.AddImmToReg64("rsp", 16)
}

func (g *scriptCodegen) lowerIncDec(cmd Command) error {
	o := g.out
	base, disp := g.varAddr(cmd)
	if cmd.Kind == KindInt {
		if cmd.Scope == ScopeLocal {
			// spec.md section 4.3: "inc/dec int local" lowers straight to
			// a memory-direct inc/dec, no register round-trip.
			if cmd.Opcode == OpIncVar {
				o.IncMem32(base, disp)
			} else {
				o.DecMem32(base, disp)
			}
			return nil
		}
		// "inc/dec int global": load, inc/dec ECX, store — the global's
		// address was already materialized into r10 by varAddr, and the
		// value makes a round trip through ECX (unlike the memory-direct
		// local path above).
		o.MovDwordMemToReg("ecx", base, disp)
		if cmd.Opcode == OpIncVar {
			o.IncReg32("ecx")
		} else {
			o.DecReg32("ecx")
		}
		o.MovDwordRegToMem(base, disp, "ecx")
		return nil
	}
	o.FldDwordMem(base, disp)
	o.Fld1()
	if cmd.Opcode == OpIncVar {
		o.FaddpPop()
	} else {
		o.FsubpPop()
	}
	o.FstpDwordMem(base, disp)
	return nil
}

func (g *scriptCodegen) lowerCompoundAssign(cmd Command) error {
	o := g.out
	base, disp := g.varAddr(cmd)
	if cmd.Kind == KindInt {
		o.PopReg("rcx")
		o.MovDwordMemToReg("eax", base, disp)
		switch cmd.Opcode {
		case OpAddAssign:
			o.AddRegToReg32("eax", "ecx")
		case OpSubAssign:
			o.SubRegFromReg32("eax", "ecx")
		case OpMulAssign:
			o.IMulRegToReg32("eax", "ecx")
		case OpDivAssign:
			o.XorRegToReg32("edx", "edx")
			o.IDivReg32("ecx")
		}
		o.MovDwordRegToMem(base, disp, "eax")
		return nil
	}
	// Load order is var first, then rvalue, giving ST(1)=var, ST(0)=rvalue —
	// the same convention binaryFloat uses, so FSUBP/FDIVP (ST(1) op ST(0))
	// naturally compute var-rvalue / var/rvalue.
	o.PopReg("rcx")
	o.FldDwordMem(base, disp) // ST(0) = var
	g.spillDwordAndFld("ecx") // ST(0) = rvalue, ST(1) = var
	switch cmd.Opcode {
	case OpAddAssign:
		o.FaddpPop()
	case OpSubAssign:
		o.FsubpPop()
	case OpMulAssign:
		o.FmulpPop()
	case OpDivAssign:
		o.FdivpPop()
	}
	o.FstpDwordMem(base, disp)
	return nil
}

func (g *scriptCodegen) lowerCompoundAssignIntOnly(cmd Command) error {
	o := g.out
	base, disp := g.varAddr(cmd)
	o.PopReg("rcx")
	o.MovDwordMemToReg("eax", base, disp)
	switch cmd.Opcode {
	case OpModAssign:
		o.XorRegToReg32("edx", "edx")
		o.IDivReg32("ecx")
		o.MovDwordRegToMem(base, disp, "edx")
		return nil
	case OpAndAssign:
		o.AndRegToReg32("eax", "ecx")
	case OpOrAssign:
		o.OrRegToReg32("eax", "ecx")
	case OpXorAssign:
		o.XorRegToReg32("eax", "ecx")
	}
	o.MovDwordRegToMem(base, disp, "eax")
	return nil
}

// lowerCall lowers Call0/Call1/Call2: pop N arguments into the System
// V integer argument registers, then, inside the stack-alignment dance,
// stage the callee (the command's own Imm) as a push-immediate
// placeholder that LowerCall immediately replaces with the call.
func (g *scriptCodegen) lowerCall(cmd Command) error {
	o := g.out
	n, ok := callArity(cmd.Opcode)
	if !ok {
		return unsupportedOpcode(g.scriptIndex, cmd)
	}
	for i := n - 1; i >= 0; i-- {
		o.PopReg(sysVIntArgRegs[i])
	}
	var patch int
	o.AlignStackForCall(func() {
		o.PushImm32(int32(cmd.Imm)) // placeholder, deleted by LowerCall
		patch = o.LowerCall(0)
	})
	g.relocations = append(g.relocations, CallRelocation{PatchOffset: patch, CalleeScript: int(cmd.Imm)})
	if cmd.Push {
		o.PushReg("rax")
	}
	return nil
}

// lowerPrintF builds an argv array of N 8-byte virtual-stack slots on
// the native stack and calls the host runtime's msc_printf(fmt, argv,
// argc) (spec.md section 4.5), recording relocations for both the
// format-string pointer and the thunk's own address.
func (g *scriptCodegen) lowerPrintF(cmd Command) error {
	o := g.out
	n := cmd.Arity
	if n > 0 {
		// argv[i] is the i-th value pushed; after reserving the array,
		// it sits at rsp+8n+8(n-1-i).
		o.SubImmFromReg64("rsp", int32(8*n))
		for i := 0; i < n; i++ {
			o.MovQwordMemToReg("rax", "rsp", int32(8*n+8*(n-1-i)))
			o.MovQwordRegToMem("rsp", int32(8*i), "rax")
		}
	}
	o.MovRegToReg("rsi", "rsp")
	o.MovImm32ToReg("edx", int32(n))
	fmtPatch := o.pos() + 2 // REX+opcode precede the imm64 field MovImmToReg64 writes
	o.MovImmToReg64("rdi", 0)
	g.stringRelocs = append(g.stringRelocs, StringRelocation{PatchOffset: fmtPatch, StringIndex: cmd.Index})

	var callPatch int
	o.AlignStackForCall(func() {
		o.PushImm32(0) // placeholder, deleted by LowerCall
		callPatch = o.LowerCall(0)
	})
	g.relocations = append(g.relocations, CallRelocation{PatchOffset: callPatch, CalleeScript: calleeHostPrintF})

	if n > 0 {
		o.AddImmToReg64("rsp", int32(16*n)) // the argv copy plus the N consumed values
	}
	if cmd.Push {
		o.PushReg("rax")
	}
	return nil
}

// lowerSyscall pops cmd.Arity arguments into the Linux syscall
// argument registers (rdi, rsi, rdx, r10, r8, r9 — note r10 replaces
// rcx, which the SYSCALL instruction itself clobbers), sets eax to the
// syscall number, and emits the raw two-byte SYSCALL instruction.
func (g *scriptCodegen) lowerSyscall(cmd Command) error {
	o := g.out
	syscallArgRegs := []string{"rdi", "rsi", "rdx", "r10", "r8", "r9"}
	n := cmd.Arity
	if n > len(syscallArgRegs) {
		return structuralViolation(g.scriptIndex, cmd, "too many syscall arguments")
	}
	for i := n - 1; i >= 0; i-- {
		o.PopReg(syscallArgRegs[i])
	}
	o.MovImm32ToReg("eax", int32(cmd.Imm))
	g.buf.WriteBytes(0x0F, 0x05)
	if cmd.Push {
		o.PushReg("rax")
	}
	return nil
}
