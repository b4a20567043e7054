package analysis

import (
	"fmt"

	"dict2file/internal/ir"
)

// Kind is the recognized role of a call site.
type Kind string

// Recognized call site kinds.
const (
	KindStrcmp      Kind = "strcmp"
	KindMemcmp      Kind = "memcmp"
	KindStrncmp     Kind = "strncmp"
	KindStrcasecmp  Kind = "strcasecmp"
	KindStrncasecmp Kind = "strncasecmp"
	KindMemcpy      Kind = "memcpy"
)

// IsCopy reports whether k is the fixed-size copy primitive.
func (k Kind) IsCopy() bool { return k == KindMemcpy }

// Bounded reports whether calls of kind k carry an explicit length operand.
func (k Kind) Bounded() bool {
	switch k {
	case KindMemcmp, KindStrncmp, KindStrncasecmp:
		return true
	}
	return false
}

// StringLike reports whether k compares NUL-terminated strings, i.e. every
// comparison kind except memcmp.
func (k Kind) StringLike() bool {
	switch k {
	case KindStrcmp, KindStrncmp, KindStrcasecmp, KindStrncasecmp:
		return true
	}
	return false
}

// Bounds is the admissible entry length range, inclusive on both ends.
type Bounds struct {
	Min int
	Max int
}

// DefaultBounds returns AFL's auto-extra limits.
func DefaultBounds() Bounds {
	return Bounds{Min: MinLen, Max: MaxLen}
}

// Contains reports whether n lies within b.
func (b Bounds) Contains(n int) bool {
	return n >= b.Min && n <= b.Max
}

// Validate checks that b describes a non-empty range of positive lengths.
func (b Bounds) Validate() error {
	if b.Min < 1 {
		return fmt.Errorf("minimum length must be at least 1, got %d", b.Min)
	}
	if b.Max < b.Min {
		return fmt.Errorf("maximum length %d is below minimum %d", b.Max, b.Min)
	}
	return nil
}

// Source records which rule resolved an operand.
type Source string

// Resolution sources, in priority order.
const (
	SourceNone    Source = ""
	SourceLiteral Source = "literal"
	SourceGlobal  Source = "global"
	SourceBinding Source = "binding"
)

// Resolution is the outcome of resolving one operand.
type Resolution struct {
	Bytes  []byte
	Source Source
}

// Known reports whether the operand resolved.
func (r Resolution) Known() bool { return r.Source != SourceNone }

// Comparison is a classified comparison call site.
type Comparison struct {
	Kind Kind
	A, B *ir.Value
	// Len is the explicit length operand; nil for unbounded kinds.
	Len *ir.Value
}

// Copy is a classified fixed-size copy call site.
type Copy struct {
	Dst, Src *ir.Value
	Len      *ir.Value
}

// Entry is a reconciled dictionary candidate.
type Entry struct {
	Kind    Kind
	Content []byte
	// Effective is the comparable length computed before the final
	// length recomputation; reported in diagnostics only.
	Effective int
}

// Result summarizes one analysis run.
type Result struct {
	Entries     int // entries written to the sink
	Functions   int // functions scanned
	Ignored     int // functions skipped by name
	Comparisons int // classified comparison sites
	Copies      int // classified copy sites
	Ambiguous   int // comparisons with both or neither operand known
	OutOfBounds int // candidates rejected by length
}

// Site describes one classified call site as the analyzer saw it.
type Site struct {
	Function string
	Kind     Kind
	Text     string
	A, B     Resolution
	// Entry is nil unless exactly one operand resolved.
	Entry   *Entry
	Written bool
}

// Sink receives reconciled entries. Emit reports whether the entry was
// written; an error aborts the run.
type Sink interface {
	Emit(entry []byte) (bool, error)
}
