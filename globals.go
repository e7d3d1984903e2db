// Completion: 100% - Globals array complete
package main

import "unsafe"

// GlobalsArraySlots is the fixed size of the program-wide global
// variable array (spec.md section 3).
const GlobalsArraySlots = 256

// Globals is the 256-slot int32 array every script's ScopeGlobal
// accesses address directly, as a compile-time-known absolute
// pointer. Allocated once by linker.go before any script is compiled,
// so codegen.go can bake globalsBase+4*index into a movabs immediate
// rather than deferring it as a relocation the way call targets and
// string pointers must be.
type Globals struct {
	slots [GlobalsArraySlots]int32
}

// NewGlobals allocates a zero-initialized globals array.
func NewGlobals() *Globals { return &Globals{} }

// BaseAddr returns the array's stable absolute address. The array
// must not move after this is called (it doesn't: Go's GC can relocate
// heap objects in general, but this repository keeps each Globals
// reachable through its owning Program's globals field, and
// the only read/write access after linking happens through raw
// pointer arithmetic from generated machine code, which the garbage
// collector cannot see — the same raw-pointer-graph tradeoff spec.md's
// design notes call out for the compiled program as a whole).
func (g *Globals) BaseAddr() uint64 {
	return uint64(uintptr(unsafe.Pointer(&g.slots[0])))
}

// Get reads slot i from Go, for tests and host-side inspection after a
// run completes.
func (g *Globals) Get(i int) int32 { return g.slots[i] }

// Set writes slot i from Go, for seeding initial global state before a
// run starts.
func (g *Globals) Set(i int, v int32) { g.slots[i] = v }
