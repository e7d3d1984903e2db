// Completion: 100% - Data model tests complete
package main

import "testing"

func TestOpcodeString(t *testing.T) {
	cases := []struct {
		op   Opcode
		want string
	}{
		{OpAddI, "AddI"},
		{OpReturnValue, "Return6"},
		{OpCall2, "Call2"},
		{Opcode(9999), "Opcode(9999)"},
	}
	for _, c := range cases {
		t.Run(c.want, func(t *testing.T) {
			if got := c.op.String(); got != c.want {
				t.Errorf("String() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestCallArity(t *testing.T) {
	cases := []struct {
		op       Opcode
		wantN    int
		wantCall bool
	}{
		{OpCall0, 0, true},
		{OpCall1, 1, true},
		{OpCall2, 2, true},
		{OpAddI, 0, false},
	}
	for _, c := range cases {
		n, ok := callArity(c.op)
		if n != c.wantN || ok != c.wantCall {
			t.Errorf("callArity(%v) = (%d, %v), want (%d, %v)", c.op, n, ok, c.wantN, c.wantCall)
		}
	}
}

func TestStringPool(t *testing.T) {
	p := NewStringPool([]string{"a", "bb", "ccc"})
	if p.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", p.Len())
	}
	if s, ok := p.At(1); !ok || s != "bb" {
		t.Errorf("At(1) = (%q, %v), want (\"bb\", true)", s, ok)
	}
	if _, ok := p.At(-1); ok {
		t.Errorf("At(-1) should report ok=false")
	}
	if _, ok := p.At(3); ok {
		t.Errorf("At(3) should report ok=false")
	}
}
