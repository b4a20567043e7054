package ir

import "fmt"

// Builder allocates value handles and assembles modules. Front ends use it
// while lowering a host module; tests use it to describe programs directly.
type Builder struct {
	next    ValueID
	mod     *Module
	fn      *Function
	block   *Block
	globals map[string]*Global
}

// NewBuilder starts a new module.
func NewBuilder(name string) *Builder {
	return &Builder{
		mod:     &Module{Name: name},
		globals: make(map[string]*Global),
	}
}

// Module returns the module built so far.
func (b *Builder) Module() *Module { return b.mod }

// NewID returns a fresh value handle.
func (b *Builder) NewID() ValueID {
	b.next++
	return b.next
}

// Declare adds a function declaration, or returns the existing function of
// that name.
func (b *Builder) Declare(name string, sig Signature) *Function {
	if f := b.mod.Function(name); f != nil {
		return f
	}
	f := &Function{Name: name, Sig: sig, Decl: true}
	b.mod.Functions = append(b.mod.Functions, f)
	return f
}

// Define starts a function body and makes it the insertion point.
func (b *Builder) Define(name string, sig Signature) *Function {
	f := b.Declare(name, sig)
	f.Decl = false
	b.fn = f
	b.block = nil
	return f
}

// Block opens a new basic block in the current function.
func (b *Builder) Block(name string) *Block {
	if b.fn == nil {
		panic("ir: Block called outside a function")
	}
	blk := &Block{Name: name}
	b.fn.Blocks = append(b.fn.Blocks, blk)
	b.block = blk
	return blk
}

// Global adds a global. init is nil when the global has no constant byte
// array initializer.
func (b *Builder) Global(name string, init []byte) *Global {
	if g, ok := b.globals[name]; ok {
		return g
	}
	g := &Global{Name: name, Init: init, HasInit: init != nil}
	b.globals[name] = g
	b.mod.Globals = append(b.mod.Globals, g)
	return g
}

// Opaque returns a runtime value about which nothing is known statically.
func (b *Builder) Opaque(name string) *Value {
	return &Value{ID: b.NewID(), Name: name}
}

// Literal returns a constant byte buffer value.
func (b *Builder) Literal(s string) *Value {
	return &Value{
		ID:        b.NewID(),
		Name:      fmt.Sprintf("c%q", s),
		Literal:   []byte(s),
		IsLiteral: true,
	}
}

// GlobalAddr returns the address of g. static is false when the address
// computation involves a runtime offset.
func (b *Builder) GlobalAddr(g *Global, static bool) *Value {
	return &Value{
		ID:   b.NewID(),
		Name: "@" + g.Name,
		Addr: &Address{Global: g, Static: static},
	}
}

// Const returns an integer constant.
func (b *Builder) Const(n uint64) *Value {
	return &Value{ID: b.NewID(), Name: fmt.Sprintf("%d", n), Int: n, IsInt: true}
}

// Call appends a direct call to callee in the current block.
func (b *Builder) Call(callee *Function, args ...*Value) *Call {
	return b.CallConv(callee, CallConvDefault, args...)
}

// CallConv appends a direct call with an explicit calling convention.
func (b *Builder) CallConv(callee *Function, conv CallingConv, args ...*Value) *Call {
	name := "<indirect>"
	if callee != nil {
		name = callee.Name
	}
	c := &Call{Callee: callee, Conv: conv, Args: args, Text: callText(name, args)}
	b.Append(Inst{Op: "call", Text: c.Text, Call: c})
	return c
}

// Append adds an instruction to the current block.
func (b *Builder) Append(in Inst) {
	if b.block == nil {
		b.Block("entry")
	}
	b.block.Insts = append(b.block.Insts, in)
}

func callText(name string, args []*Value) string {
	s := "call @" + name + "("
	for i, a := range args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

// Libc prototypes of the recognized comparison functions and the fixed-size
// copy intrinsic, as typed-pointer LLVM declares them.
var (
	StrcmpSig  = Signature{Params: []Type{I8Ptr, I8Ptr}, Result: I32}
	StrncmpSig = Signature{Params: []Type{I8Ptr, I8Ptr, I64}, Result: I32}
	MemcmpSig  = Signature{Params: []Type{I8Ptr, I8Ptr, I64}, Result: I32}
	MemcpySig  = Signature{Params: []Type{I8Ptr, I8Ptr, I64, I1}, Result: Void}
)
