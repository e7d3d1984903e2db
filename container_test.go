// Completion: 100% - Container/Builder tests complete
package main

import "testing"

func TestBuilderScriptContaining(t *testing.T) {
	b := NewBuilder([]string{"hi\n"})
	s0 := b.BeginScript(0, 0)
	b.Append(s0, Command{Opcode: OpBegin})
	b.Append(s0, Command{Opcode: OpReturnVoid})
	b.EndScript(s0)

	s1 := b.BeginScript(1, 0)
	b.Append(s1, Command{Opcode: OpBegin})
	b.Append(s1, Command{Opcode: OpReturnVoid})
	b.EndScript(s1)

	b.SetEntrypoint(s1)
	c := b.Build()

	if got := c.EntrypointIndex(); got != s1 {
		t.Errorf("EntrypointIndex() = %d, want %d", got, s1)
	}
	if len(c.Scripts()) != 2 {
		t.Fatalf("Scripts() len = %d, want 2", len(c.Scripts()))
	}

	script0 := c.Scripts()[0]
	idx, ok := c.ScriptContaining(script0.Start)
	if !ok || idx != 0 {
		t.Errorf("ScriptContaining(%d) = (%d, %v), want (0, true)", script0.Start, idx, ok)
	}

	script1 := c.Scripts()[1]
	idx, ok = c.ScriptContaining(script1.Start)
	if !ok || idx != 1 {
		t.Errorf("ScriptContaining(%d) = (%d, %v), want (1, true)", script1.Start, idx, ok)
	}

	if _, ok := c.ScriptContaining(1 << 30); ok {
		t.Errorf("ScriptContaining(out of range) should report ok=false")
	}
}
