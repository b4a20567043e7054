package analysis

import "dict2file/internal/ir"

// Bindings remembers the constant content most recently copied into a
// destination value. It lives for a whole run and is never scoped to a
// function, so a binding made in one function is visible in later ones.
type Bindings struct {
	m map[ir.ValueID][]byte
}

// NewBindings returns an empty table.
func NewBindings() *Bindings {
	return &Bindings{m: make(map[ir.ValueID][]byte)}
}

// Bind records content for dst, replacing any earlier binding.
func (b *Bindings) Bind(dst ir.ValueID, content []byte) {
	b.m[dst] = append([]byte(nil), content...)
}

// Lookup returns the content bound to id. Empty bindings are reported as
// absent.
func (b *Bindings) Lookup(id ir.ValueID) ([]byte, bool) {
	c, ok := b.m[id]
	if !ok || len(c) == 0 {
		return nil, false
	}
	return c, true
}

// Len returns the number of bound values.
func (b *Bindings) Len() int { return len(b.m) }
