// Completion: 100% - Whole-program linker/driver complete
package main

import "fmt"

// Program is the whole-program driver spec.md section 4.4 describes:
// concatenate the string pool, code-generate every script into its own
// region, patch every jump (already done inside CompileScript) and
// every inter-script/host-runtime call relocation, then flip every
// region from writable to executable in one pass before anything runs.
// Grounded on original_source/src/jit/x86/mod.rs's CompiledProgram
// (mem + entrypoint_index) and its lock_all()/run() driver pair —
// adapted from a single combined memory blob into one Region per
// script (spec.md section 3: "one region per script"), since this
// repo's Region already owns its own W^X lifecycle independently.
type Program struct {
	container Container
	globals   *Globals
	strings   *StringsSection
	regions   []*Region
	printfRegion *Region
	entrypoint int
}

// Link compiles every script in c, places the host runtime, resolves
// every relocation, and locks all memory down to execute-only. The
// returned Program is ready for Run.
func Link(c Container) (*Program, error) {
	p := &Program{
		container: c,
		globals:   NewGlobals(),
		strings:   BuildStringsSection(c.Strings()),
		entrypoint: c.EntrypointIndex(),
	}

	printfCode, err := BuildMscPrintf()
	if err != nil {
		return nil, err
	}
	printfRegion, err := AllocateRegion(len(printfCode))
	if err != nil {
		return nil, err
	}
	if err := printfRegion.Write(printfCode); err != nil {
		return nil, err
	}
	p.printfRegion = printfRegion

	type compiled struct {
		code         *CodeBuffer
		relocations  []CallRelocation
		stringRelocs []StringRelocation
	}
	scripts := c.Scripts()
	compiledScripts := make([]compiled, len(scripts))
	for i, s := range scripts {
		code, relocs, strRelocs, err := CompileScript(i, s, p.globals.BaseAddr())
		if err != nil {
			return nil, err
		}
		compiledScripts[i] = compiled{code, relocs, strRelocs}
	}

	p.regions = make([]*Region, len(scripts))
	for i, cs := range compiledScripts {
		region, err := AllocateRegion(cs.code.Len())
		if err != nil {
			return nil, err
		}
		if err := region.Write(cs.code.Bytes()); err != nil {
			return nil, err
		}
		p.regions[i] = region
	}

	// Every region now has a final address; patch every call and
	// string-pointer relocation before any region is locked executable.
	for i, cs := range compiledScripts {
		for _, reloc := range cs.relocations {
			var target uint64
			if reloc.CalleeScript == calleeHostPrintF {
				target = uint64(p.printfRegion.Addr())
			} else {
				if reloc.CalleeScript < 0 || reloc.CalleeScript >= len(p.regions) {
					return nil, fmt.Errorf("%w: call to unknown script %d", ErrStructuralViolation, reloc.CalleeScript)
				}
				target = uint64(p.regions[reloc.CalleeScript].Addr())
			}
			if err := p.regions[i].PatchAt(reloc.PatchOffset, encodeU64(target)); err != nil {
				return nil, err
			}
		}
		for _, sr := range cs.stringRelocs {
			addr, ok := p.strings.AddrOf(sr.StringIndex)
			if !ok {
				return nil, fmt.Errorf("%w: printf references unknown string %d", ErrStructuralViolation, sr.StringIndex)
			}
			if err := p.regions[i].PatchAt(sr.PatchOffset, encodeU64(addr)); err != nil {
				return nil, err
			}
		}
	}

	return p, nil
}

func encodeU64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

// LockAll flips every script region (and the host-runtime region) to
// execute-only. Must be called exactly once, after Link, before Run.
func (p *Program) LockAll() error {
	if err := p.printfRegion.Lock(); err != nil {
		return err
	}
	for _, r := range p.regions {
		if err := r.Lock(); err != nil {
			return err
		}
	}
	return nil
}

// Run invokes the container's entrypoint script with no arguments and
// returns its native return value. Calling Run before LockAll is a
// StateViolation, surfaced by the region's own Invoke check.
func (p *Program) Run() (int64, error) {
	if p.entrypoint < 0 || p.entrypoint >= len(p.regions) {
		return 0, fmt.Errorf("%w: entrypoint script %d out of range", ErrStructuralViolation, p.entrypoint)
	}
	return p.regions[p.entrypoint].Invoke(0, 0, 0, 0, 0, 0)
}

// Globals exposes the program's global-variable array, e.g. for tests
// to seed or inspect state around a Run.
func (p *Program) Globals() *Globals { return p.globals }

// Free releases every region's memory.
func (p *Program) Free() error {
	if err := p.printfRegion.Free(); err != nil {
		return err
	}
	for _, r := range p.regions {
		if err := r.Free(); err != nil {
			return err
		}
	}
	return nil
}
