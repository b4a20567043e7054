// Package ir defines the host-neutral program representation walked by the
// dictionary analysis. Front ends lower a host IR (such as textual LLVM IR)
// into these types; the analysis only ever reads them.
package ir

import (
	"strconv"
	"strings"
)

// ValueID is a stable handle for a host value. The host owns the value; the
// analysis only uses the handle as a lookup key.
type ValueID uint32

// NoValue is never assigned to a value.
const NoValue ValueID = 0

// TypeKind classifies a Type.
type TypeKind int

const (
	TypeOther TypeKind = iota
	TypeVoid
	TypeInt
	TypePointer
)

// Type is a simplified host type.
type Type struct {
	Kind TypeKind
	Bits int    // integer width, TypeInt only
	Elem *Type  // pointee, nil for opaque pointers
	Repr string // host spelling, e.g. "i8*" or "ptr"
}

// Equal reports whether t and u denote the same host type.
func (t Type) Equal(u Type) bool {
	return t.Kind == u.Kind && t.Bits == u.Bits && t.Repr == u.Repr
}

// IsInt reports whether t is an integer type.
func (t Type) IsInt() bool { return t.Kind == TypeInt }

// IsPointer reports whether t is a pointer type.
func (t Type) IsPointer() bool { return t.Kind == TypePointer }

// IsBytePointer reports whether t is a pointer to i8 or an opaque pointer.
func (t Type) IsBytePointer() bool {
	if t.Kind != TypePointer {
		return false
	}
	return t.Elem == nil || (t.Elem.Kind == TypeInt && t.Elem.Bits == 8)
}

func (t Type) String() string {
	if t.Repr != "" {
		return t.Repr
	}
	switch t.Kind {
	case TypeVoid:
		return "void"
	case TypeInt:
		return "i" + strconv.Itoa(t.Bits)
	case TypePointer:
		if t.Elem == nil {
			return "ptr"
		}
		return t.Elem.String() + "*"
	}
	return "?"
}

// Common types.
var (
	Void    = Type{Kind: TypeVoid, Repr: "void"}
	I1      = Int(1)
	I8      = Int(8)
	I32     = Int(32)
	I64     = Int(64)
	I8Ptr   = Pointer(I8)
	Ptr     = Type{Kind: TypePointer, Repr: "ptr"}
	Unknown = Type{Kind: TypeOther, Repr: "?"}
)

// Int returns the integer type of the given width.
func Int(bits int) Type {
	return Type{Kind: TypeInt, Bits: bits, Repr: "i" + strconv.Itoa(bits)}
}

// Pointer returns a typed pointer to elem.
func Pointer(elem Type) Type {
	e := elem
	return Type{Kind: TypePointer, Elem: &e, Repr: elem.String() + "*"}
}

// Signature is a declared function type.
type Signature struct {
	Params   []Type
	Result   Type
	Variadic bool
}

func (s Signature) String() string {
	parts := make([]string, 0, len(s.Params)+1)
	for _, p := range s.Params {
		parts = append(parts, p.String())
	}
	if s.Variadic {
		parts = append(parts, "...")
	}
	return s.Result.String() + " (" + strings.Join(parts, ", ") + ")"
}

// CallingConv is the calling convention of a call site.
type CallingConv int

const (
	CallConvDefault CallingConv = iota
	CallConvOther
)

// Global is a module-level data object.
type Global struct {
	Name string
	// Init holds the initializer bytes when the initializer is a constant
	// byte array; HasInit is false otherwise.
	Init    []byte
	HasInit bool
}

// Address describes a pointer computed from a global.
type Address struct {
	Global *Global
	// Static is true when every offset in the address computation is a
	// compile-time constant.
	Static bool
}

// Value is an operand as seen by the analysis.
type Value struct {
	ID   ValueID
	Name string

	// Literal is the host constant folder's byte buffer for this value.
	// IsLiteral distinguishes an empty literal from "not a constant".
	Literal   []byte
	IsLiteral bool

	// Addr is set when the value is an address rooted at a global.
	Addr *Address

	Int   uint64
	IsInt bool
}

func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	if v.Name != "" {
		return v.Name
	}
	return "v" + strconv.Itoa(int(v.ID))
}

// Call is a call instruction.
type Call struct {
	// Callee is nil when the target cannot be resolved statically.
	Callee *Function
	Conv   CallingConv
	Args   []*Value
	Text   string // host rendering, for tracing
}

// Arg returns the i-th argument or nil.
func (c *Call) Arg(i int) *Value {
	if i < 0 || i >= len(c.Args) {
		return nil
	}
	return c.Args[i]
}

// Inst is a single instruction. Only calls carry operands.
type Inst struct {
	Op   string
	Text string
	Call *Call
}

// Block is a basic block.
type Block struct {
	Name  string
	Insts []Inst
}

// Function is a defined or declared function.
type Function struct {
	Name   string
	Sig    Signature
	Blocks []*Block
	Decl   bool
}

// Module is a lowered compilation unit.
type Module struct {
	Name      string
	Source    string
	Functions []*Function
	Globals   []*Global
}

// Function returns the function with the given name, or nil.
func (m *Module) Function(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}
