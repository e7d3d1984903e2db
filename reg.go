// Completion: 100% - Utility module complete
package main

// Register describes one x86-64 register: its encoding (used to build
// ModR/M and REX bytes) and its width in bits. Adapted from the
// teacher's multi-architecture reg.go, narrowed to x86-64 only (no
// architecture is a parameter here; this whole repository targets one).
type Register struct {
	Name     string
	Size     int
	Encoding uint8
}

var gpRegisters = map[string]Register{
	"rax": {"rax", 64, 0},
	"rcx": {"rcx", 64, 1},
	"rdx": {"rdx", 64, 2},
	"rbx": {"rbx", 64, 3},
	"rsp": {"rsp", 64, 4},
	"rbp": {"rbp", 64, 5},
	"rsi": {"rsi", 64, 6},
	"rdi": {"rdi", 64, 7},
	"r8":  {"r8", 64, 8},
	"r9":  {"r9", 64, 9},
	"r10": {"r10", 64, 10},
	"r11": {"r11", 64, 11},
	"r12": {"r12", 64, 12},
	"r13": {"r13", 64, 13},
	"r14": {"r14", 64, 14},
	"r15": {"r15", 64, 15},

	"eax": {"eax", 32, 0},
	"ecx": {"ecx", 32, 1},
	"edx": {"edx", 32, 2},
	"ebx": {"ebx", 32, 3},
	"esp": {"esp", 32, 4},
	"ebp": {"ebp", 32, 5},
	"esi": {"esi", 32, 6},
	"edi": {"edi", 32, 7},

	"cl": {"cl", 8, 1},
	"al": {"al", 8, 0},
	"dl": {"dl", 8, 2},
}

var xmmRegisters = map[string]Register{
	"xmm0": {"xmm0", 128, 0},
	"xmm1": {"xmm1", 128, 1},
	"xmm2": {"xmm2", 128, 2},
	"xmm3": {"xmm3", 128, 3},
	"xmm4": {"xmm4", 128, 4},
	"xmm5": {"xmm5", 128, 5},
	"xmm6": {"xmm6", 128, 6},
	"xmm7": {"xmm7", 128, 7},
}

// GetRegister looks up a general-purpose register by name.
func GetRegister(name string) (Register, bool) {
	r, ok := gpRegisters[name]
	return r, ok
}

// GetXMM looks up an SSE register by name.
func GetXMM(name string) (Register, bool) {
	r, ok := xmmRegisters[name]
	return r, ok
}

// IsRegister reports whether name is a known general-purpose register.
func IsRegister(name string) bool {
	_, ok := gpRegisters[name]
	return ok
}

// sysVIntArgRegs is the System V AMD64 integer argument register order
// (spec.md section 6).
var sysVIntArgRegs = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// calleeSaved are the non-volatile registers the prologue/epilogue
// discipline must preserve (spec.md section 6).
var calleeSaved = []string{"rbx", "rbp", "r12", "r13", "r14", "r15"}
