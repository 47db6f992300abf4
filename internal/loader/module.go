// Package loader implements the binary module format described in
// spec.md §4.9: the file/constant loader that supplies functions,
// classes, and constants to internal/vm. Loading is a narrow interface
// the core depends on but never implements inline, matching spec.md §1's
// list of collaborators accessed through interfaces.
package loader

import "github.com/coreware/vmcore/internal/value"

// Function is a module-local function record (spec.md §4.9: "name:
// std_string, local_count: u16, byte_size: u32, bytecode bytes").
type Function struct {
	Name       string
	LocalCount int
	Code       []byte
}

// Import is a reference into another module's export table, resolved by
// the caller-supplied Resolver at load time.
type Import struct {
	Module string
	Export string
}

// Module is a loaded, immutable unit: name, constant pool, function table,
// class table, export table (spec.md §3.5).
type Module struct {
	Name      string
	Constants []value.Value
	Functions []*Function
	Classes   []*value.Class
	Exports   map[string]int
	Imports   []Import

	// ClassBodyIndex maps each loaded class to its body entries' function
	// indices (keyed "op:<tag-name>", "sop:<tag-name>", "m:<name>",
	// "sm:<name>", "p:<name>"), so internal/vm can rebind the
	// bytecodeBodyPlaceholder Callables it finds in a class's tables to
	// real frame-pushing closures once it owns this Module.
	ClassBodyIndex map[*value.Class]map[string]int
}

// Resolver supplies the two things a module can reference but doesn't
// define itself: another module's exported constant (constant tag 4) and
// an embedder-registered native function or class (constant tag 5). Both
// are spec.md §1 "collaborators accessed through narrow interfaces".
type Resolver interface {
	ResolveImport(moduleName, exportName string) (value.Value, error)
	ResolveBuiltin(index int) (value.Value, error)
}
