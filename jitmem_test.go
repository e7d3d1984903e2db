// Completion: 100% - Executable memory arena tests complete
package main

import "testing"

func TestAllocateRegionFillsTrapBytes(t *testing.T) {
	r, err := AllocateRegion(64)
	if err != nil {
		t.Fatalf("AllocateRegion error: %v", err)
	}
	defer r.Free()

	for i, b := range r.mem {
		if b != 0xC3 {
			t.Fatalf("mem[%d] = %#x, want 0xc3 trap byte", i, b)
		}
	}
}

func TestRegionWriteLockInvokeRoundTrip(t *testing.T) {
	r, err := AllocateRegion(16)
	if err != nil {
		t.Fatalf("AllocateRegion error: %v", err)
	}
	defer r.Free()

	// mov eax, 42 ; ret
	code := []byte{0xB8, 42, 0, 0, 0, 0xC3}
	if err := r.Write(code); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := r.Lock(); err != nil {
		t.Fatalf("Lock error: %v", err)
	}

	got, err := r.Invoke(0, 0, 0, 0, 0, 0)
	if err != nil {
		t.Fatalf("Invoke error: %v", err)
	}
	if got != 42 {
		t.Fatalf("Invoke() = %d, want 42", got)
	}
}

func TestRegionWriteAfterLockIsStateViolation(t *testing.T) {
	r, err := AllocateRegion(16)
	if err != nil {
		t.Fatalf("AllocateRegion error: %v", err)
	}
	defer r.Free()

	if err := r.Write([]byte{0xC3}); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := r.Lock(); err != nil {
		t.Fatalf("Lock error: %v", err)
	}
	if err := r.Write([]byte{0xC3}); err == nil {
		t.Fatal("Write after Lock should fail")
	}
}

func TestRegionInvokeBeforeLockIsStateViolation(t *testing.T) {
	r, err := AllocateRegion(16)
	if err != nil {
		t.Fatalf("AllocateRegion error: %v", err)
	}
	defer r.Free()

	if _, err := r.Invoke(0, 0, 0, 0, 0, 0); err == nil {
		t.Fatal("Invoke before Lock should fail")
	}
}

func TestRegionPatchAtWorksAfterLock(t *testing.T) {
	r, err := AllocateRegion(16)
	if err != nil {
		t.Fatalf("AllocateRegion error: %v", err)
	}
	defer r.Free()

	code := []byte{0xB8, 0, 0, 0, 0, 0xC3} // mov eax, 0 ; ret
	if err := r.Write(code); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := r.Lock(); err != nil {
		t.Fatalf("Lock error: %v", err)
	}
	if err := r.PatchAt(1, []byte{7, 0, 0, 0}); err != nil {
		t.Fatalf("PatchAt error: %v", err)
	}

	got, err := r.Invoke(0, 0, 0, 0, 0, 0)
	if err != nil {
		t.Fatalf("Invoke error: %v", err)
	}
	if got != 7 {
		t.Fatalf("Invoke() after PatchAt = %d, want 7", got)
	}
}
