package analysis

import "dict2file/internal/ir"

var vocabulary = map[string]Kind{
	"strcmp":              KindStrcmp,
	"memcmp":              KindMemcmp,
	"strncmp":             KindStrncmp,
	"strcasecmp":          KindStrcasecmp,
	"strncasecmp":         KindStrncasecmp,
	MemcpyIntrinsic:       KindMemcpy,
	MemcpyIntrinsicOpaque: KindMemcpy,
}

// Classify decides whether call is a recognized comparison or copy site.
// The callee name must match exactly and its declared signature must have
// the expected shape; indirect calls and non-default calling conventions
// are never classified.
func Classify(call *ir.Call) (Kind, bool) {
	if call == nil || call.Callee == nil {
		return "", false
	}
	if call.Conv != ir.CallConvDefault {
		return "", false
	}
	kind, ok := vocabulary[call.Callee.Name]
	if !ok {
		return "", false
	}
	if !shapeMatches(kind, call.Callee.Sig) {
		return "", false
	}
	if len(call.Args) < arity(kind) {
		return "", false
	}
	return kind, true
}

func arity(k Kind) int {
	switch {
	case k.IsCopy(), k.Bounded():
		return 3
	default:
		return 2
	}
}

func shapeMatches(k Kind, sig ir.Signature) bool {
	p := sig.Params
	if k.IsCopy() {
		return len(p) >= 3 &&
			p[0].IsPointer() &&
			p[1].IsPointer() &&
			p[2].IsInt()
	}

	if sig.Variadic || !sig.Result.IsInt() || len(p) != arity(k) {
		return false
	}
	if !p[0].IsPointer() || !p[0].Equal(p[1]) {
		return false
	}
	if k.StringLike() && !p[0].IsBytePointer() {
		return false
	}
	if k.Bounded() && !p[2].IsInt() {
		return false
	}
	return true
}

// comparisonOf splits a classified comparison call into its operands.
func comparisonOf(kind Kind, call *ir.Call) Comparison {
	c := Comparison{Kind: kind, A: call.Arg(0), B: call.Arg(1)}
	if kind.Bounded() {
		c.Len = call.Arg(2)
	}
	return c
}

// copyOf splits a classified copy call into its operands.
func copyOf(call *ir.Call) Copy {
	return Copy{Dst: call.Arg(0), Src: call.Arg(1), Len: call.Arg(2)}
}
