// Completion: 100% - Host runtime generator complete
package main

import "fmt"

// The host runtime: msc_printf and the syscall dispatch table, both
// generated as native machine code by this repository's own emitters
// rather than bridged in through cgo or a Go-callback trampoline.
// Grounded on original_source/src/jit/x86/printf.rs (the format-string
// walker this is a direct translation of, opcode-for-opcode intent
// rather than byte-for-byte) and spec.md section 4.5/section 6. No
// pack repo hand-assembles a Go-callable C runtime function this way —
// this file is new, built the way codegen.go is built, from the same
// mnemonic emitters.
//
// asmBuilder is a minimal symbolic-label layer over Out, used only by
// this file: the generated printf routine has enough internal control
// flow (format-string loop, six conversion arms for d/x/p/f/c/%
// with e/g sharing f's, three subroutines)
// that manually computed byte offsets would be unreadable and
// error-prone, so labels are resolved the same way codegen.go resolves
// jump targets — forward references recorded as fixups, patched once
// every label's position is known.
type asmBuilder struct {
	out    *Out
	labels map[string]int
	fixups []struct {
		offset int
		label  string
	}
}

func newAsmBuilder(out *Out) *asmBuilder {
	return &asmBuilder{out: out, labels: make(map[string]int)}
}

func (a *asmBuilder) label(name string) {
	if _, exists := a.labels[name]; exists {
		panic("jitc: duplicate label " + name)
	}
	a.labels[name] = a.out.pos()
}

func (a *asmBuilder) jmp(label string) {
	p := a.out.Jmp()
	a.fixups = append(a.fixups, struct {
		offset int
		label  string
	}{p, label})
}

func (a *asmBuilder) jcc(cc uint8, label string) {
	p := a.out.Jcc(cc)
	a.fixups = append(a.fixups, struct {
		offset int
		label  string
	}{p, label})
}

func (a *asmBuilder) call(label string) {
	p := a.out.CallRel32()
	a.fixups = append(a.fixups, struct {
		offset int
		label  string
	}{p, label})
}

func (a *asmBuilder) resolve() error {
	for _, f := range a.fixups {
		target, ok := a.labels[f.label]
		if !ok {
			return fmt.Errorf("%w: undefined label %q in host runtime", ErrEncodingFailure, f.label)
		}
		a.out.PatchRel32(f.offset, target)
	}
	return nil
}

// outputBufferBytes is the scratch space reserved for the formatted
// output line; floatScratchBytes is a second, fixed-offset-addressed
// region the %f/%e/%g conversion uses for FPU control-word and
// truncated-integer staging, kept separate from the growing output
// cursor so a CALL's pushed return address never shifts it.
const outputBufferBytes = 256
const floatScratchBytes = 32
const printfScratchBytes = outputBufferBytes + floatScratchBytes

// BuildMscPrintf assembles msc_printf(fmt *byte, argv *int64, argc
// int64) int64, matching codegen.go's lowerPrintF call site: rdi=fmt,
// rsi=argv, rdx=argc (argc is accepted for ABI symmetry with the
// bytecode's PrintF operand but this walker is driven off fmt's own
// NUL terminator and each %-conversion's consumed argv slot, not a
// counted loop). Supports %d (signed decimal), %x (unsigned hex),
// %p (pointer, hex with a 0x prefix), %c (single byte from the low
// byte of an 8-byte slot), %f/%e/%g (float32 reinterpreted from the
// slot's low 32 bits, widened and rendered as a fixed 6-decimal-place
// value — this hand-written routine doesn't attempt scientific
// notation or shortest round-trip formatting for %e/%g, just %f's
// rendering under all three names), and %%; any other conversion
// character is copied to the output as-is, and the '%' that preceded
// it is not.
//
// rbx/r12/r13/r14/r15 are used as long-lived cursors across the
// embedded CALLs to itoa/itoa_hex/ftoa_append, so they are saved and
// restored like any other callee-saved registers a compiled function
// uses — required here since call.go's AlignStackForCall keeps r15
// live across a CALL and every other caller of this routine expects
// the same non-volatile contract.
func BuildMscPrintf() ([]byte, error) {
	buf := &CodeBuffer{}
	o := NewOut(buf)
	a := newAsmBuilder(o)

	o.PushReg("rbx")
	o.PushReg("r12")
	o.PushReg("r13")
	o.PushReg("r14")
	o.PushReg("r15")
	o.SubImmFromReg64("rsp", printfScratchBytes)
	o.MovRegToReg("r12", "rdi") // fmt cursor
	o.MovRegToReg("r13", "rsi") // argv cursor
	o.MovRegToReg("r15", "rsp") // float-conversion scratch base (stable across CALLs)
	o.MovRegToReg("r14", "rsp")
	o.AddImmToReg64("r14", floatScratchBytes) // output cursor
	o.MovRegToReg("rbx", "r14")                // output buffer base

	a.label("loop")
	o.MovZxByteMemToReg32("eax", "r12")
	o.TestRegReg64("rax", "rax")
	a.jcc(ccE, "done")
	o.CmpRegToImm32("rax", '%')
	a.jcc(ccNE, "literal")
	o.AddImmToReg64("r12", 1)
	o.MovZxByteMemToReg32("eax", "r12")
	o.CmpRegToImm32("rax", 'd')
	a.jcc(ccE, "conv_d")
	o.CmpRegToImm32("rax", 'x')
	a.jcc(ccE, "conv_x")
	o.CmpRegToImm32("rax", 'p')
	a.jcc(ccE, "conv_p")
	o.CmpRegToImm32("rax", 'c')
	a.jcc(ccE, "conv_c")
	o.CmpRegToImm32("rax", 'f')
	a.jcc(ccE, "conv_f")
	o.CmpRegToImm32("rax", 'e')
	a.jcc(ccE, "conv_f")
	o.CmpRegToImm32("rax", 'g')
	a.jcc(ccE, "conv_f")
	o.CmpRegToImm32("rax", '%')
	a.jcc(ccE, "conv_pct")
	a.jmp("literal")

	a.label("conv_d")
	o.MovQwordMemToReg("rax", "r13", 0)
	o.AddImmToReg64("r13", 8)
	a.call("itoa")
	o.AddImmToReg64("r12", 1)
	a.jmp("loop")

	a.label("conv_x")
	o.MovQwordMemToReg("rax", "r13", 0)
	o.AddImmToReg64("r13", 8)
	a.call("itoa_hex")
	o.AddImmToReg64("r12", 1)
	a.jmp("loop")

	a.label("conv_p")
	o.MovImmByteToMem("r14", '0')
	o.AddImmToReg64("r14", 1)
	o.MovImmByteToMem("r14", 'x')
	o.AddImmToReg64("r14", 1)
	o.MovQwordMemToReg("rax", "r13", 0)
	o.AddImmToReg64("r13", 8)
	a.call("itoa_hex")
	o.AddImmToReg64("r12", 1)
	a.jmp("loop")

	a.label("conv_f")
	o.FldDwordMem("r13", 0)
	o.AddImmToReg64("r13", 8)
	a.call("ftoa_append")
	o.AddImmToReg64("r12", 1)
	a.jmp("loop")

	a.label("conv_c")
	o.MovByteMemToReg("al", "r13")
	o.AddImmToReg64("r13", 8)
	o.MovByteRegToMem("r14", "al")
	o.AddImmToReg64("r14", 1)
	o.AddImmToReg64("r12", 1)
	a.jmp("loop")

	a.label("conv_pct")
	o.MovImmByteToMem("r14", '%')
	o.AddImmToReg64("r14", 1)
	o.AddImmToReg64("r12", 1)
	a.jmp("loop")

	a.label("literal")
	o.MovByteRegToMem("r14", "al")
	o.AddImmToReg64("r14", 1)
	o.AddImmToReg64("r12", 1)
	a.jmp("loop")

	a.label("done")
	o.MovRegToReg("rax", "r14")
	o.subReg64("rax", "rbx")
	o.MovRegToReg("rdx", "rax") // length
	o.MovRegToReg("rsi", "rbx") // buffer
	o.MovImm32ToReg("edi", 1)   // fd = stdout
	o.MovImm32ToReg("eax", 1)   // SYS_write
	buf.WriteBytes(0x0F, 0x05)
	o.AddImmToReg64("rsp", printfScratchBytes)
	o.PopReg("r15")
	o.PopReg("r14")
	o.PopReg("r13")
	o.PopReg("r12")
	o.PopReg("rbx")
	o.MovImm32ToReg("eax", 0)
	o.Ret()

	// itoa: rax = signed value, appends decimal ASCII to [r14],
	// advancing r14. Sign-handles once, then divides the unsigned
	// magnitude by 10 repeatedly, staging digits on the native stack
	// (most-significant digit computed last) and popping them back off
	// in the order they must be written.
	a.label("itoa")
	o.MovRegToReg("rcx", "rax")
	o.TestRegReg64("rcx", "rcx")
	a.jcc(ccNS, "itoa_nonneg")
	o.MovImmByteToMem("r14", '-')
	o.AddImmToReg64("r14", 1)
	o.negReg64("rcx")

	a.label("itoa_nonneg")
	o.TestRegReg64("rcx", "rcx")
	a.jcc(ccNE, "itoa_digits")
	o.MovImmByteToMem("r14", '0')
	o.AddImmToReg64("r14", 1)
	o.Ret()

	a.label("itoa_digits")
	o.XorRegToReg64("r8", "r8")
	a.label("itoa_loop")
	o.TestRegReg64("rcx", "rcx")
	a.jcc(ccE, "itoa_emit")
	o.MovRegToReg("rax", "rcx")
	o.XorRegToReg64("rdx", "rdx")
	o.MovImm32ToReg("r9", 10)
	o.DivReg64("r9")
	o.AddImm8ToReg8("dl", '0')
	o.PushReg("rdx")
	o.AddImmToReg64("r8", 1)
	o.MovRegToReg("rcx", "rax")
	a.jmp("itoa_loop")

	a.label("itoa_emit")
	o.TestRegReg64("r8", "r8")
	a.jcc(ccE, "itoa_done")
	o.PopReg("rax")
	o.MovByteRegToMem("r14", "al")
	o.AddImmToReg64("r14", 1)
	o.SubImmFromReg64("r8", 1)
	a.jmp("itoa_emit")

	a.label("itoa_done")
	o.Ret()

	// itoa_hex: rax = unsigned value, appends lowercase hex digits (no
	// leading zeros, "0" for a zero value) to [r14], advancing r14.
	// Same digit-stage-then-emit shape as itoa, unsigned throughout
	// (%x/%p have no sign).
	a.label("itoa_hex")
	o.MovRegToReg("rcx", "rax")
	o.TestRegReg64("rcx", "rcx")
	a.jcc(ccNE, "itoa_hex_digits")
	o.MovImmByteToMem("r14", '0')
	o.AddImmToReg64("r14", 1)
	o.Ret()

	a.label("itoa_hex_digits")
	o.XorRegToReg64("r8", "r8")
	a.label("itoa_hex_loop")
	o.TestRegReg64("rcx", "rcx")
	a.jcc(ccE, "itoa_hex_emit")
	o.MovRegToReg("rax", "rcx")
	o.XorRegToReg64("rdx", "rdx")
	o.MovImm32ToReg("r9", 16)
	o.DivReg64("r9")
	o.CmpRegToImm32("rdx", 9)
	a.jcc(ccLE, "itoa_hex_decimal_digit")
	o.AddImm8ToReg8("dl", 'a'-10)
	a.jmp("itoa_hex_push")
	a.label("itoa_hex_decimal_digit")
	o.AddImm8ToReg8("dl", '0')
	a.label("itoa_hex_push")
	o.PushReg("rdx")
	o.AddImmToReg64("r8", 1)
	o.MovRegToReg("rcx", "rax")
	a.jmp("itoa_hex_loop")

	a.label("itoa_hex_emit")
	o.TestRegReg64("r8", "r8")
	a.jcc(ccE, "itoa_hex_done")
	o.PopReg("rax")
	o.MovByteRegToMem("r14", "al")
	o.AddImmToReg64("r14", 1)
	o.SubImmFromReg64("r8", 1)
	a.jmp("itoa_hex_emit")

	a.label("itoa_hex_done")
	o.Ret()

	// ftoa_append: ST(0) = a float32 widened onto the FPU stack by the
	// caller, consumed here. Renders sign, integer part (via the
	// existing itoa, after truncating and zero-extending into rax —
	// safe without an extra widening step since Fchs has already made
	// the magnitude nonnegative), a decimal point, and a fixed six
	// fractional digits, each obtained by multiplying the running
	// remainder by ten and truncating again. Uses r15's fixed
	// float-scratch slots (r15+0 original control word, r15+8 patched
	// control word, r15+16 truncated-integer scratch) so the repeated
	// FSTCW/FLDCW dance survives the CALLs this routine itself makes.
	a.label("ftoa_append")
	o.FldST0() // ST0=dup, ST1=value (depth 2)
	o.MovImm32ToReg("eax", 0)
	o.MovDwordRegToMem("r15", 16, "eax")
	o.FildDwordMem("r15", 16) // ST0=0.0, ST1=dup, ST2=value (depth 3)
	o.Fcompp()                // compares 0 vs dup, pops both -> ST0=value (depth 1)
	o.Fwait()
	o.FstswAX()
	o.Sahf()
	a.jcc(ccA, "ftoa_negative") // ccA: right(0) > left(dup) i.e. value < 0
	a.jmp("ftoa_after_sign")

	a.label("ftoa_negative")
	o.MovImmByteToMem("r14", '-')
	o.AddImmToReg64("r14", 1)
	o.Fchs() // ST0 = -value = abs(value)

	a.label("ftoa_after_sign")
	// ST0 = abs(value), depth 1 either way.
	o.FldST0() // ST0=dup, ST1=abs(value) (depth 2)
	o.FstcwMem("r15", 0)
	o.MovDwordMemToReg("eax", "r15", 0)
	o.MovImm32ToReg("ecx", 0x0C00) // RC = truncate-toward-zero
	o.OrRegToReg32("eax", "ecx")
	o.MovDwordRegToMem("r15", 8, "eax")
	o.FldcwMem("r15", 8)
	o.FistpDwordMem("r15", 16) // pops dup -> ST0=abs(value) (depth 1)
	o.FldcwMem("r15", 0)

	o.MovDwordMemToReg("eax", "r15", 16) // int part, guaranteed nonnegative
	a.call("itoa")

	o.MovImmByteToMem("r14", '.')
	o.AddImmToReg64("r14", 1)

	// frac = abs(value) - int_part.
	o.FildDwordMem("r15", 16) // ST0=int_part(float), ST1=abs(value) (depth 2)
	o.FsubpPop()              // ST1-ST0, pop -> ST0=frac (depth 1)

	for i := 0; i < 6; i++ {
		o.MovImm32ToReg("eax", 10)
		o.MovDwordRegToMem("r15", 16, "eax")
		o.FildDwordMem("r15", 16) // ST0=10.0, ST1=frac
		o.FmulpPop()              // ST0=frac*10

		o.FldST0()
		o.FstcwMem("r15", 0)
		o.MovDwordMemToReg("eax", "r15", 0)
		o.MovImm32ToReg("ecx", 0x0C00)
		o.OrRegToReg32("eax", "ecx")
		o.MovDwordRegToMem("r15", 8, "eax")
		o.FldcwMem("r15", 8)
		o.FistpDwordMem("r15", 16)
		o.FldcwMem("r15", 0)

		o.MovDwordMemToReg("edx", "r15", 16)
		o.AddImm8ToReg8("dl", '0')
		o.MovByteRegToMem("r14", "dl")
		o.AddImmToReg64("r14", 1)

		o.FildDwordMem("r15", 16) // ST0=digit(float), ST1=scaled
		o.FsubpPop()              // ST0=scaled-digit=new frac
	}

	o.FstpDwordMem("r15", 16) // discard the final remainder, rebalance FPU stack
	o.Ret()

	if err := a.resolve(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SyscallThunk assembles a minimal native function that loads number
// into EAX, executes SYSCALL, and returns — exposed as a callable
// address for hosts that want to dispatch through a table of fixed
// syscall slots rather than (as codegen.go's OpSyscall lowering
// does by default) inlining "mov eax, imm32; syscall" directly at
// every call site. spec.md section 4.5 names a syscall dispatch table
// as part of the host runtime; this is its building block. The two
// paths are equivalent in effect — a thunk costs one extra CALL/RET
// per invocation versus inlining — so OpSyscall's direct inline
// lowering remains the default; SyscallThunk exists for callers that
// build their own dispatch table indexed by syscall number instead.
func SyscallThunk(number int64) ([]byte, error) {
	buf := &CodeBuffer{}
	o := NewOut(buf)
	o.MovImm32ToReg("eax", int32(number))
	buf.WriteBytes(0x0F, 0x05)
	o.Ret()
	return buf.Bytes(), nil
}
