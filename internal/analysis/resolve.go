package analysis

import "dict2file/internal/ir"

// Resolver maps operands to compile-time byte sequences. Rules are tried in
// order: direct literal, static address of an initialized global, then the
// binding table.
type Resolver struct {
	bindings *Bindings
}

// NewResolver returns a resolver consulting b as its last rule. b may be nil.
func NewResolver(b *Bindings) *Resolver {
	return &Resolver{bindings: b}
}

// Static applies the literal and global-initializer rules only.
func (r *Resolver) Static(v *ir.Value) Resolution {
	if v == nil {
		return Resolution{}
	}
	// An empty literal is indistinguishable from a non-constant here.
	if v.IsLiteral && len(v.Literal) > 0 {
		return Resolution{Bytes: clone(v.Literal), Source: SourceLiteral}
	}
	if a := v.Addr; a != nil && a.Static && a.Global != nil && a.Global.HasInit {
		return Resolution{Bytes: clone(a.Global.Init), Source: SourceGlobal}
	}
	return Resolution{}
}

// Resolve applies all rules.
func (r *Resolver) Resolve(v *ir.Value) Resolution {
	if res := r.Static(v); res.Known() {
		return res
	}
	if v == nil || r.bindings == nil {
		return Resolution{}
	}
	if c, ok := r.bindings.Lookup(v.ID); ok {
		return Resolution{Bytes: clone(c), Source: SourceBinding}
	}
	return Resolution{}
}

// Bind records the content of a copy site: the destination is bound to the
// statically resolved source, extended by a terminator when the copy length
// is exactly one more than the source. It reports the stored content.
func (r *Resolver) Bind(c Copy) ([]byte, bool) {
	if r.bindings == nil || c.Dst == nil {
		return nil, false
	}
	src := r.Static(c.Src)
	if !src.Known() {
		return nil, false
	}
	content := src.Bytes
	if n, ok := lengthOf(c.Len); ok && n == uint64(len(content))+1 {
		content = append(content, 0)
	}
	r.bindings.Bind(c.Dst.ID, content)
	return content, true
}

func lengthOf(v *ir.Value) (uint64, bool) {
	if v == nil || !v.IsInt {
		return 0, false
	}
	return v.Int, true
}

func clone(b []byte) []byte {
	return append(make([]byte, 0, len(b)+1), b...)
}
