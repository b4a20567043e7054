package analysis

import (
	"bytes"
	"math"

	"dict2file/internal/ir"
)

// Reconcile combines the resolved content of one comparison operand with
// the comparison's explicit length, if any, and returns the entry to write.
// Longer content is truncated to b.Max. It reports false when the final
// length falls below b.Min; the entry is still returned for diagnostics.
func Reconcile(kind Kind, content []byte, n *ir.Value, b Bounds) (Entry, bool) {
	content = clone(content)
	eff := len(content)
	terminated := false

	if kind.Bounded() {
		if explicit, ok := lengthOf(n); ok {
			if explicit == uint64(len(content))+1 {
				content = append(content, 0)
				terminated = true
			}
			eff = int(min(explicit, math.MaxInt32))
		}
	}

	if kind.StringLike() {
		if !terminated {
			content = append(content, 0)
			eff++
		}
		// Drop anything past an earlier terminator.
		if p := bytes.IndexByte(content[:min(eff, len(content))], 0); p >= 0 && p+1 < eff {
			content = content[:p+1]
			eff = p + 1
		}
	}

	if len(content) > b.Max {
		content = content[:b.Max]
	}
	e := Entry{Kind: kind, Content: content, Effective: eff}
	return e, len(content) >= b.Min
}
