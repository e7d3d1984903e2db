// Completion: 100% - External collaborator contract complete
package main

// Container is the opaque input bytecode model, consumed through
// exactly the three accessors spec.md section 6 names: iterate scripts,
// iterate a script's commands (with position and push-bit already
// attached to each Command), and resolve "which script's byte range
// contains offset X". Link does not use ScriptContaining: a call
// command's Imm already names the callee by script index, and byte
// offsets are not resolved to scripts during relocation. Parsing a
// container file into this shape is out of scope (spec.md section 1);
// Builder below is a minimal in-memory reference implementation used
// by this repository's own tests and demo CLI.
type Container interface {
	Scripts() []*Script
	Strings() *StringPool
	EntrypointIndex() int
	ScriptContaining(offset int) (int, bool)
}

// Builder assembles an in-memory Container by hand, assigning byte
// positions to commands as they're appended. It exists so the compiler
// is testable without a real container-file parser.
type Builder struct {
	scripts    []*Script
	strings    *StringPool
	entrypoint int
	cursor     int // next free byte offset, monotonically increasing across scripts
}

func NewBuilder(strings []string) *Builder {
	return &Builder{strings: NewStringPool(strings)}
}

// BeginScript opens a new script at the current cursor and returns its
// index. The caller must append an OpBegin command first via Append.
func (b *Builder) BeginScript(localCount, argCount int) int {
	s := &Script{Start: b.cursor, LocalCount: localCount, ArgCount: argCount}
	b.scripts = append(b.scripts, s)
	return len(b.scripts) - 1
}

// Append adds a command to the most recently opened script, stamping
// its Position from the builder's monotonic cursor. Each command is
// assigned a fixed 1-byte "slot" in this synthetic address space —
// real container encodings vary command size, but callers of
// ScriptContaining only need offsets to be monotonic and unique within
// a script, which this preserves.
func (b *Builder) Append(scriptIdx int, cmd Command) {
	s := b.scripts[scriptIdx]
	cmd.Position = b.cursor
	s.Commands = append(s.Commands, cmd)
	b.cursor++
}

// EndScript closes the script at its current cursor.
func (b *Builder) EndScript(scriptIdx int) {
	b.scripts[scriptIdx].End = b.cursor
}

func (b *Builder) SetEntrypoint(idx int) { b.entrypoint = idx }

func (b *Builder) Build() Container {
	return &builtContainer{scripts: b.scripts, strings: b.strings, entrypoint: b.entrypoint}
}

type builtContainer struct {
	scripts    []*Script
	strings    *StringPool
	entrypoint int
}

func (c *builtContainer) Scripts() []*Script    { return c.scripts }
func (c *builtContainer) Strings() *StringPool  { return c.strings }
func (c *builtContainer) EntrypointIndex() int  { return c.entrypoint }

func (c *builtContainer) ScriptContaining(offset int) (int, bool) {
	for i, s := range c.scripts {
		if offset >= s.Start && offset < s.End {
			return i, true
		}
	}
	return 0, false
}
