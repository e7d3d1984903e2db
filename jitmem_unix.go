//go:build linux

// Completion: 100% - Linux mmap/mprotect backend complete
package main

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// OS-specific half of the executable-memory arena. Grounded directly
// on the teacher's hotreload_unix.go (AllocateExecutablePage/FreePage),
// swapped from raw syscall.Syscall6/SYS_MMAP numbers to
// golang.org/x/sys/unix's typed Mmap/Mprotect/Munmap — the teacher
// already depends on x/sys (go.mod), but only ever exercises it from
// filewatcher_unix.go/filewatcher_darwin.go; this is its home in the
// JIT domain (see SPEC_FULL.md section 12).

func osPageSize() int { return unix.Getpagesize() }

// mmapExecutableRegion allocates an anonymous, private mapping,
// initially PROT_READ|PROT_WRITE so the encoder can fill it, and
// returns both the Go-visible byte slice and its base address.
func mmapExecutableRegion(size int) ([]byte, uintptr, error) {
	mem, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, 0, err
	}
	return mem, uintptr(unsafe.Pointer(&mem[0])), nil
}

func mprotectExecutable(addr uintptr, size int) error {
	mem := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	return unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC)
}

func mprotectWritable(addr uintptr, size int) ([]byte, error) {
	mem := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return nil, err
	}
	return mem, nil
}

func munmapRegion(addr uintptr, size int) error {
	mem := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	return unix.Munmap(mem)
}

// regionEntrypoint reinterprets a raw code address as a callable Go
// func value. This relies on the System V AMD64 calling convention
// matching Go's C-ABI-compatible call sequence for a func value backed
// directly by a code pointer rather than a Go closure — the same
// unsafe-pointer-to-function trick the teacher's
// hotreload_unix.go:UpdateFunctionPointer uses, applied here to invoke
// rather than to hot-swap.
func regionEntrypoint(addr uintptr) entrypoint {
	// A Go func value points at a word holding the code address, so
	// the func value is &addr, not addr itself.
	fn := &addr
	return *(*entrypoint)(unsafe.Pointer(&fn))
}
