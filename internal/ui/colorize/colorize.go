// Package colorize highlights LLVM IR for terminal output.
package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// NoColorEnv disables highlighting when set to any non-empty value.
const NoColorEnv = "DICT2FILE_NO_COLOR"

// getIRLexer returns the LLVM lexer, or nil when chroma lacks one
func getIRLexer() chroma.Lexer {
	for _, name := range []string{"llvm", "LLVM"} {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

// getIRStyle returns the IR style with fallbacks
func getIRStyle() *chroma.Style {
	candidates := []string{"ir-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	// Try high-color first, then fallback
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Disabled reports whether highlighting is turned off.
func Disabled() bool {
	return os.Getenv(NoColorEnv) != ""
}

// ColorizeIR applies syntax highlighting to LLVM IR text.
func ColorizeIR(code string) (string, error) {
	if Disabled() {
		return code, nil
	}

	lexer := getIRLexer()
	if lexer == nil {
		return code, nil
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code, err
	}

	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getIRStyle(), iterator); err != nil {
		return code, err
	}
	return buf.String(), nil
}

// ColorizeLine highlights a single instruction, falling back to the plain
// text on any error. The lexer's trailing newline is dropped.
func ColorizeLine(line string) string {
	out, err := ColorizeIR(line)
	if err != nil {
		return line
	}
	if !strings.Contains(line, "\n") {
		out = strings.ReplaceAll(out, "\n", "")
	}
	return out
}

// StripANSI removes ANSI escape codes and returns the plain string
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false

	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
		} else if inEscape {
			if r == 'm' {
				inEscape = false
			}
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}
