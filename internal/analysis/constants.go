// Package analysis extracts fuzzing dictionary entries from a lowered IR
// module. It classifies comparison and copy call sites, resolves their
// operands to compile-time byte sequences and reconciles explicit lengths.
package analysis

// Constants for dictionary extraction
const (
	// MinLen is the default shortest entry written to the dictionary.
	MinLen = 3

	// MaxLen is the default longest entry; longer content is truncated.
	MaxLen = 32

	// MemcpyIntrinsic is the fixed-size copy LLVM emits to initialize local
	// arrays from constant globals (typed pointers).
	MemcpyIntrinsic = "llvm.memcpy.p0i8.p0i8.i64"

	// MemcpyIntrinsicOpaque is the same intrinsic under opaque pointers.
	MemcpyIntrinsicOpaque = "llvm.memcpy.p0.p0.i64"
)
