// Completion: 100% - Executable memory arena complete
package main

import "fmt"

// Region is a page-aligned block of memory holding one script's
// compiled code, taken through the W^X lifecycle spec.md section 4.1
// requires: writable while the encoder fills it, then flipped to
// read-execute before anything ever calls into it, never both at once.
// Grounded on the teacher's hotreload_unix.go CodePage (mmap'd
// PROT_READ|PROT_WRITE|PROT_EXEC buffer with a raw function-pointer
// invoke), adapted to a strict two-phase write-then-lock discipline
// instead of the teacher's always-executable hot-swappable page.
type Region struct {
	addr     uintptr
	size     int
	mem      []byte // addr reinterpreted as a Go byte slice while writable
	executable bool
}

// entrypoint is the C-ABI function signature every compiled script and
// host-runtime thunk shares: up to 6 integer/pointer arguments in, one
// int64 result out (spec.md section 6, System V AMD64).
type entrypoint func(a0, a1, a2, a3, a4, a5 int64) int64

// AllocateRegion reserves size bytes (rounded up to a whole number of
// pages) of anonymous, process-private memory, initially writable and
// non-executable, and fills it with the single-byte trap instruction
// 0xC3 (RET) — spec.md section 4.1's poison fill, so a stray jump past
// the end of generated code returns immediately instead of executing
// whatever garbage followed.
func AllocateRegion(size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: region size must be positive", ErrMemoryFailure)
	}
	pageSize := osPageSize()
	rounded := ((size + pageSize - 1) / pageSize) * pageSize
	mem, addr, err := mmapExecutableRegion(rounded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMemoryFailure, err)
	}
	for i := range mem {
		mem[i] = 0xC3
	}
	return &Region{addr: addr, size: rounded, mem: mem}, nil
}

// Write copies code into the region starting at byte offset 0. It must
// be called before Lock; writing to a locked (execute-only) region is
// a StateViolation.
func (r *Region) Write(code []byte) error {
	if r.executable {
		return fmt.Errorf("%w: cannot write to a locked region", ErrStateViolation)
	}
	if len(code) > len(r.mem) {
		return fmt.Errorf("%w: code larger than allocated region", ErrMemoryFailure)
	}
	copy(r.mem, code)
	return nil
}

// Lock flips the region from writable to executable (mprotect
// PROT_READ|PROT_EXEC), the W^X transition spec.md section 4.1
// requires happen exactly once, after all relocations have been
// patched in.
func (r *Region) Lock() error {
	if r.executable {
		return nil
	}
	if err := mprotectExecutable(r.addr, r.size); err != nil {
		return fmt.Errorf("%w: %v", ErrMemoryFailure, err)
	}
	r.executable = true
	r.mem = nil // the slice's backing memory is no longer writable; drop the view
	return nil
}

// Unlock flips the region back to writable (PROT_READ|PROT_WRITE),
// for the rare case a caller needs to patch a region after it was
// already locked (this compiler itself never does — all relocations
// complete before the first Lock — but spec.md section 4.1 names the
// operation as part of the arena's contract).
func (r *Region) Unlock() error {
	if !r.executable {
		return nil
	}
	mem, err := mprotectWritable(r.addr, r.size)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMemoryFailure, err)
	}
	r.mem = mem
	r.executable = false
	return nil
}

// PatchAt overwrites bytes at offset within a region that may already
// be locked, unlocking and relocking around the write — used by
// linker.go if a relocation target is only known after an earlier
// Lock (not the normal path, but keeps the invariant "never write to
// executable memory" airtight regardless of ordering).
func (r *Region) PatchAt(offset int, data []byte) error {
	wasExecutable := r.executable
	if wasExecutable {
		if err := r.Unlock(); err != nil {
			return err
		}
	}
	copy(r.mem[offset:], data)
	if wasExecutable {
		return r.Lock()
	}
	return nil
}

// Addr returns the region's base address as a plain integer, for
// relocation math (computing absolute call targets before any Region
// is itself invoked).
func (r *Region) Addr() uintptr { return r.addr }

// Invoke calls into the region as a compiled script entrypoint. The
// region must be locked first; calling into a writable region is a
// StateViolation (spec.md section 7).
func (r *Region) Invoke(a0, a1, a2, a3, a4, a5 int64) (int64, error) {
	if !r.executable {
		return 0, fmt.Errorf("%w: region is not executable", ErrStateViolation)
	}
	fn := regionEntrypoint(r.addr)
	return fn(a0, a1, a2, a3, a4, a5), nil
}

// Free releases the region's memory back to the OS. A Region must not
// be used after Free.
func (r *Region) Free() error {
	if err := munmapRegion(r.addr, r.size); err != nil {
		return fmt.Errorf("%w: %v", ErrMemoryFailure, err)
	}
	r.mem = nil
	return nil
}
