// Package llvmir lowers textual LLVM IR modules into the ir representation
// walked by the analysis.
//
// Value identity follows the LLVM value, with one exception: pointer
// bitcasts and all-zero getelementptr instructions share the handle of the
// pointer they are computed from, so a copy into an array and a later
// comparison against its decayed address refer to the same value.
package llvmir

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/llir/llvm/asm"
	llvm "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"dict2file/internal/ir"
)

// ParseFile reads and lowers the .ll file at path.
func ParseFile(path string) (*ir.Module, error) {
	m, err := asm.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return Lower(path, m), nil
}

// ParseString lowers the module in src. name is used in errors and as the
// module name.
func ParseString(name, src string) (*ir.Module, error) {
	m, err := asm.ParseString(name, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return Lower(name, m), nil
}

type lowerer struct {
	b       *ir.Builder
	funcs   map[*llvm.Func]*ir.Function
	globals map[*llvm.Global]*ir.Global
	ids     map[value.Value]ir.ValueID
	// exprs keys constant expressions by their text; llir allocates a new
	// node for every occurrence of the same expression.
	exprs   map[string]ir.ValueID
}

// Lower converts m. Functions keep their module order.
func Lower(name string, m *llvm.Module) *ir.Module {
	l := &lowerer{
		b:       ir.NewBuilder(name),
		funcs:   make(map[*llvm.Func]*ir.Function),
		globals: make(map[*llvm.Global]*ir.Global),
		ids:     make(map[value.Value]ir.ValueID),
		exprs:   make(map[string]ir.ValueID),
	}
	out := l.b.Module()
	out.Source = m.SourceFilename

	for _, g := range m.Globals {
		l.global(g)
	}
	for _, f := range m.Funcs {
		l.funcs[f] = l.b.Declare(f.Name(), signature(f.Sig))
	}
	for _, f := range m.Funcs {
		if len(f.Blocks) == 0 {
			continue
		}
		l.b.Define(f.Name(), signature(f.Sig))
		for _, blk := range f.Blocks {
			l.b.Block(blk.Name())
			for _, inst := range blk.Insts {
				l.inst(inst)
			}
		}
	}
	return out
}

func (l *lowerer) global(g *llvm.Global) *ir.Global {
	if lg, ok := l.globals[g]; ok {
		return lg
	}
	var init []byte
	if ca, ok := g.Init.(*constant.CharArray); ok {
		init = append([]byte{}, ca.X...)
	}
	lg := l.b.Global(g.Name(), init)
	l.globals[g] = lg
	return lg
}

func (l *lowerer) inst(inst llvm.Instruction) {
	call, ok := inst.(*llvm.InstCall)
	if !ok {
		l.b.Append(ir.Inst{Op: opName(inst), Text: inst.LLString()})
		return
	}

	c := &ir.Call{Conv: callingConv(call.CallingConv), Text: call.LLString()}
	if f, ok := call.Callee.(*llvm.Func); ok {
		c.Callee = l.funcs[f]
	}
	for _, arg := range call.Args {
		c.Args = append(c.Args, l.value(arg))
	}
	l.b.Append(ir.Inst{Op: "call", Text: c.Text, Call: c})
}

// value lowers an operand.
func (l *lowerer) value(v value.Value) *ir.Value {
	if a, ok := v.(*llvm.Arg); ok {
		v = a.Value
	}
	out := &ir.Value{Name: v.Ident()}

	switch v := v.(type) {
	case *constant.Int:
		if v.X.Sign() >= 0 && v.X.IsUint64() {
			out.Int, out.IsInt = v.X.Uint64(), true
		}
	case *constant.CharArray:
		out.Literal, out.IsLiteral = append([]byte{}, v.X...), true
	case *constant.ExprBitCast:
		return l.value(v.From)
	case *llvm.Global:
		l.address(out, v, nil, nil)
	case *constant.ExprGetElementPtr:
		if g, ok := stripCasts(v.Src).(*llvm.Global); ok {
			l.address(out, g, v.ElemType, v.Indices)
		}
	}
	out.ID = l.id(v)
	return out
}

// address fills in the global address and, for constant globals holding a
// byte array, the string the address points at.
func (l *lowerer) address(out *ir.Value, g *llvm.Global, elem types.Type, indices []constant.Constant) {
	offset, known, static := int64(0), true, true
	if elem != nil {
		offset, known, static = staticOffset(elem, indices)
	}
	out.Addr = &ir.Address{Global: l.global(g), Static: static}
	if !g.Immutable || !known {
		return
	}
	switch init := g.Init.(type) {
	case *constant.CharArray:
		if offset < 0 || offset > int64(len(init.X)) {
			return
		}
		s := init.X[offset:]
		if i := bytes.IndexByte(s, 0); i >= 0 {
			s = s[:i]
		}
		out.Literal, out.IsLiteral = append([]byte{}, s...), true
	case *constant.ZeroInitializer:
		out.Literal, out.IsLiteral = []byte{}, true
	}
}

// id returns the handle for v, assigning one on first use.
func (l *lowerer) id(v value.Value) ir.ValueID {
	v = canonical(v)
	if e, ok := v.(constant.Expression); ok {
		key := e.String()
		if id, ok := l.exprs[key]; ok {
			return id
		}
		id := l.b.NewID()
		l.exprs[key] = id
		return id
	}
	if id, ok := l.ids[v]; ok {
		return id
	}
	id := l.b.NewID()
	l.ids[v] = id
	return id
}

// canonical follows pointer casts and zero-offset element addresses back
// to the pointer they derive from, for instructions and constant
// expressions alike.
func canonical(v value.Value) value.Value {
	for {
		switch x := v.(type) {
		case *llvm.Arg:
			v = x.Value
		case *llvm.InstBitCast:
			v = x.From
		case *constant.ExprBitCast:
			v = x.From
		case *llvm.InstGetElementPtr:
			if !zeroIndices(x.Indices) {
				return v
			}
			v = x.Src
		case *constant.ExprGetElementPtr:
			if !zeroConstIndices(x.Indices) {
				return v
			}
			v = x.Src
		default:
			return v
		}
	}
}

func stripCasts(v value.Value) value.Value {
	for {
		c, ok := v.(*constant.ExprBitCast)
		if !ok {
			return v
		}
		v = c.From
	}
}

func zeroIndices(indices []value.Value) bool {
	for _, idx := range indices {
		n, ok := constInt(idx)
		if !ok || n != 0 {
			return false
		}
	}
	return true
}

func zeroConstIndices(indices []constant.Constant) bool {
	for _, idx := range indices {
		n, ok := constInt(idx)
		if !ok || n != 0 {
			return false
		}
	}
	return true
}

func constInt(v value.Value) (int64, bool) {
	if idx, ok := v.(*constant.Index); ok {
		v = idx.Constant
	}
	c, ok := v.(*constant.Int)
	if !ok || !c.X.IsInt64() {
		return 0, false
	}
	return c.X.Int64(), true
}

// staticOffset computes the byte offset of a constant getelementptr. known
// is false when the offset cannot be computed in bytes; static is false when
// an index is not a constant integer.
func staticOffset(elem types.Type, indices []constant.Constant) (offset int64, known, static bool) {
	known = true
	for i, idx := range indices {
		n, ok := constInt(idx)
		if !ok {
			return 0, false, false
		}
		if i > 0 {
			arr, ok := elem.(*types.ArrayType)
			if !ok {
				known = false
				continue
			}
			elem = arr.ElemType
		}
		size, ok := sizeOf(elem)
		if !ok {
			known = false
			continue
		}
		offset += n * size
	}
	return offset, known, true
}

func sizeOf(t types.Type) (int64, bool) {
	switch t := t.(type) {
	case *types.IntType:
		if t.BitSize%8 != 0 {
			return 0, false
		}
		return int64(t.BitSize / 8), true
	case *types.ArrayType:
		n, ok := sizeOf(t.ElemType)
		return n * int64(t.Len), ok
	}
	return 0, false
}

func signature(sig *types.FuncType) ir.Signature {
	if sig == nil {
		return ir.Signature{Result: ir.Unknown}
	}
	s := ir.Signature{Result: lowerType(sig.RetType), Variadic: sig.Variadic}
	for _, p := range sig.Params {
		s.Params = append(s.Params, lowerType(p))
	}
	return s
}

func lowerType(t types.Type) ir.Type {
	switch t := t.(type) {
	case *types.VoidType:
		return ir.Void
	case *types.IntType:
		return ir.Int(int(t.BitSize))
	case *types.PointerType:
		if t.ElemType == nil {
			return ir.Ptr
		}
		return ir.Pointer(lowerType(t.ElemType))
	case nil:
		return ir.Unknown
	}
	return ir.Type{Kind: ir.TypeOther, Repr: t.String()}
}

func callingConv(cc enum.CallingConv) ir.CallingConv {
	if cc == enum.CallingConvNone || cc == enum.CallingConvC {
		return ir.CallConvDefault
	}
	return ir.CallConvOther
}

// opName turns *ir.InstAlloca into "alloca".
func opName(inst llvm.Instruction) string {
	name := fmt.Sprintf("%T", inst)
	name = name[strings.LastIndexByte(name, '.')+1:]
	return strings.ToLower(strings.TrimPrefix(name, "Inst"))
}
