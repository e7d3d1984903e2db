// Completion: 100% - Whole-program linker tests complete
package main

import "testing"

// TestLinkResolvesInterScriptCall links two scripts where script 0 calls
// script 1 and returns its result, verifying the CallRelocation survives
// the full Link/LockAll/Run pipeline.
func TestLinkResolvesInterScriptCall(t *testing.T) {
	b := NewBuilder(nil)
	s0 := b.BeginScript(0, 0)
	b.Append(s0, Command{Opcode: OpBegin})
	b.Append(s0, Command{Opcode: OpCall0, Imm: 1, Push: true})
	b.Append(s0, Command{Opcode: OpReturnValue})
	b.EndScript(s0)

	s1 := b.BeginScript(0, 0)
	b.Append(s1, Command{Opcode: OpBegin})
	b.Append(s1, Command{Opcode: OpPushInt, Imm: 99, Push: true})
	b.Append(s1, Command{Opcode: OpReturnValue})
	b.EndScript(s1)

	b.SetEntrypoint(s0)
	c := b.Build()

	p, err := Link(c)
	if err != nil {
		t.Fatalf("Link error: %v", err)
	}
	defer p.Free()

	if err := p.LockAll(); err != nil {
		t.Fatalf("LockAll error: %v", err)
	}

	got, err := p.Run()
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got != 99 {
		t.Fatalf("Run() = %d, want 99", got)
	}
}

func TestLinkRejectsCallToUnknownScript(t *testing.T) {
	b := NewBuilder(nil)
	s0 := b.BeginScript(0, 0)
	b.Append(s0, Command{Opcode: OpBegin})
	b.Append(s0, Command{Opcode: OpCall0, Imm: 5, Push: true})
	b.Append(s0, Command{Opcode: OpReturnValue})
	b.EndScript(s0)
	b.SetEntrypoint(s0)
	c := b.Build()

	if _, err := Link(c); err == nil {
		t.Fatal("Link should fail for a call targeting a nonexistent script")
	}
}

// TestLinkTryReifiesDiscardedCallResult exercises spec.md section 4.3's
// T-set mechanism: script 0 calls script 1 with Push=false (its return
// value lands in rax but is never pushed onto the virtual stack), but a
// preceding Try names the position of the ReturnValue that follows as
// a target. Arriving at that position must inject "push rax" so
// ReturnValue's pop sees the callee's result rather than garbage.
func TestLinkTryReifiesDiscardedCallResult(t *testing.T) {
	b := NewBuilder(nil)
	s0 := b.BeginScript(0, 0)
	b.Append(s0, Command{Opcode: OpBegin})
	tryPos := b.cursor
	b.Append(s0, Command{Opcode: OpTry}) // Imm patched in below
	b.Append(s0, Command{Opcode: OpCall0, Imm: 1, Push: false})
	retPos := b.cursor
	b.Append(s0, Command{Opcode: OpReturnValue})
	b.EndScript(s0)

	s1 := b.BeginScript(0, 0)
	b.Append(s1, Command{Opcode: OpBegin})
	b.Append(s1, Command{Opcode: OpPushInt, Imm: 42, Push: true})
	b.Append(s1, Command{Opcode: OpReturnValue})
	b.EndScript(s1)

	b.SetEntrypoint(s0)
	c := b.Build()

	scr := c.Scripts()[0]
	for i := range scr.Commands {
		if scr.Commands[i].Position == tryPos {
			scr.Commands[i].Imm = int64(retPos)
			scr.Commands[i].Push = true
		}
	}

	p, err := Link(c)
	if err != nil {
		t.Fatalf("Link error: %v", err)
	}
	defer p.Free()

	if err := p.LockAll(); err != nil {
		t.Fatalf("LockAll error: %v", err)
	}

	got, err := p.Run()
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got != 42 {
		t.Fatalf("Run() = %d, want 42", got)
	}
}

func TestLinkSeedsAndExposesGlobals(t *testing.T) {
	b := NewBuilder(nil)
	s0 := b.BeginScript(0, 0)
	b.Append(s0, Command{Opcode: OpBegin})
	b.Append(s0, Command{Opcode: OpGetVar, Scope: ScopeGlobal, Index: 3, Push: true})
	b.Append(s0, Command{Opcode: OpReturnValue})
	b.EndScript(s0)
	b.SetEntrypoint(s0)
	c := b.Build()

	p, err := Link(c)
	if err != nil {
		t.Fatalf("Link error: %v", err)
	}
	defer p.Free()

	p.Globals().Set(3, 55)

	if err := p.LockAll(); err != nil {
		t.Fatalf("LockAll error: %v", err)
	}
	got, err := p.Run()
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got != 55 {
		t.Fatalf("Run() = %d, want 55", got)
	}
}
