// Package dictionary reads and writes fuzzing dictionaries: one double
// quoted, hex-escaped byte string per line.
package dictionary

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Render formats entry as a dictionary literal without the trailing newline.
// Bytes 33 through 126 are written as-is, every other byte as \xNN. A zero
// byte in the last position is the implicit terminator and is not written.
func Render(entry []byte) string {
	var sb strings.Builder
	sb.Grow(len(entry) + 2)
	sb.WriteByte('"')
	for i, c := range entry {
		switch {
		case c >= 33 && c <= 126:
			sb.WriteByte(c)
		case c == 0 && i == len(entry)-1:
			// implicit terminator
		default:
			fmt.Fprintf(&sb, "\\x%02x", c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// ErrMalformed is returned by Decode for lines that are not dictionary
// literals.
var ErrMalformed = errors.New("malformed dictionary line")

// Decode parses one dictionary line back into bytes. An optional keyword
// before the opening quote (name="...") is accepted and ignored. A dropped
// terminator is not restored.
//
// Render writes backslashes verbatim, so Decode is not its exact inverse:
// content holding a literal backslash, 'x' and two hex digits decodes as
// the escaped byte ("a\x41b" comes back as "aAb").
func Decode(line string) ([]byte, error) {
	line = strings.TrimSpace(line)
	open := strings.IndexByte(line, '"')
	if open < 0 || len(line) < open+2 || line[len(line)-1] != '"' {
		return nil, fmt.Errorf("%w: %q", ErrMalformed, line)
	}
	body := line[open+1 : len(line)-1]

	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+3 < len(body) && body[i+1] == 'x' {
			if v, err := strconv.ParseUint(body[i+2:i+4], 16, 8); err == nil {
				out = append(out, byte(v))
				i += 3
				continue
			}
		}
		out = append(out, c)
	}
	return out, nil
}
