// Completion: 100% - Error taxonomy complete
package main

import (
	"errors"
	"fmt"
)

// Error taxonomy (spec.md section 7). All are compile-time except
// ErrMemoryFailure (surfaced by LockAll before any guest code runs)
// and ErrStateViolation (fatal, at invocation).
var (
	ErrUnsupportedOpcode   = errors.New("unsupported opcode")
	ErrStructuralViolation = errors.New("structural violation")
	ErrEncodingFailure     = errors.New("encoding failure")
	ErrMemoryFailure       = errors.New("memory failure")
	ErrStateViolation      = errors.New("region not executable")
)

// CompileError names the opcode and position a compile-time failure
// occurred at, per spec.md section 7's "user-visible behaviour"
// requirement. Wraps one of the sentinels above so callers can use
// errors.Is.
type CompileError struct {
	Err      error
	Script   int
	Position int
	Opcode   Opcode
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("script %d, position %d (%s): %v", e.Script, e.Position, e.Opcode, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

func newCompileError(err error, script int, cmd Command) *CompileError {
	return &CompileError{Err: err, Script: script, Position: cmd.Position, Opcode: cmd.Opcode}
}

// unsupportedOpcode reports an opcode family this compiler has no
// lowering for (reserved/error opcodes, or a dynamic-call path the
// bytecode model never emits).
func unsupportedOpcode(script int, cmd Command) error {
	return newCompileError(ErrUnsupportedOpcode, script, cmd)
}

// structuralViolation reports a misshapen script: missing/duplicated
// Begin, a non-zero cast slot, or too many syscall arguments. Calls take
// their callee from their own operand, so no preceding push is checked.
func structuralViolation(script int, cmd Command, why string) error {
	return newCompileError(fmt.Errorf("%w: %s", ErrStructuralViolation, why), script, cmd)
}
