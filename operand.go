// Completion: 100% - Operand coercion DSL complete
package main

// Operand is the typed "into-operand" coercion spec.md section 4.2
// asks for: registers, immediates, and memory-addressing tuples all
// flow into the encoder uniformly through this interface. Grounded on
// original_source/src/jit/x86/asm_helper/into_operand.rs's IntoOperand
// trait — that prototype coerces from a handful of overlapping Rust
// types; this repo keeps the same intent but with explicit constructors
// (Imm/Mem are never inferred from a bare literal, unlike the
// prototype's ambiguity between immediate and displacement).
type Operand interface {
	isOperand()
}

// RegOperand names a general-purpose register directly.
type RegOperand struct{ Name string }

func (RegOperand) isOperand() {}

// Reg is a convenience constructor for RegOperand.
func Reg(name string) RegOperand { return RegOperand{Name: name} }

// ImmOperand carries a sign-extended immediate value and its declared
// width in bits (16 for PushShort, 32 for PushInt/the rest).
type ImmOperand struct {
	Value int64
	Bits  int
}

func (ImmOperand) isOperand() {}

func Imm(value int64, bits int) ImmOperand { return ImmOperand{Value: value, Bits: bits} }

// MemOperand is a (base, scale-index, displacement, size) addressing
// tuple (spec.md section 4.2). Index/Scale are zero when unused — every
// memory access this compiler emits (locals at RBP+4i, globals at
// base+4i) is base+displacement only, but the tuple shape is kept in
// full so a future scaled-index access has somewhere to go without
// changing the Operand contract.
type MemOperand struct {
	Base        string
	Index       string // "" when unused
	Scale       int    // 1, 2, 4, or 8; 0 when Index is unused
	Disp        int32
	SizeInBytes int // 4 (dword) or 8 (qword)
}

func (MemOperand) isOperand() {}

// Mem is a convenience constructor for a base+displacement MemOperand.
func Mem(base string, disp int32, sizeInBytes int) MemOperand {
	return MemOperand{Base: base, Disp: disp, SizeInBytes: sizeInBytes}
}
