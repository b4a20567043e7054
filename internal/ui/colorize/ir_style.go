package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// IRDark colours LLVM IR traces: types in teal, globals in gold, constants
// in pink and string literals in the dictionary entry tone.
var IRDark = styles.Register(chroma.MustNewStyle("ir-dark", chroma.StyleEntries{
	chroma.Text:       "#D4D4D4",
	chroma.Background: "bg:#1e1e1e",
	chroma.Comment:    "#6A9955",

	chroma.Keyword:      "#C586C0", // call, getelementptr, align
	chroma.KeywordType:  "#7C9C9D", // i8, i64, ptr
	chroma.Name:         "#9CDCFE", // %locals
	chroma.NameVariable: "#9CDCFE",
	chroma.NameLabel:    "#FFD700",
	chroma.NameFunction: "#DCDCAA",

	chroma.LiteralNumber:        "#FF5F87",
	chroma.LiteralNumberInteger: "#FF5F87",
	chroma.LiteralNumberFloat:   "#FF5F87",

	chroma.Operator:    "#D4D4D4",
	chroma.Punctuation: "#D4D4D4",

	chroma.String: "#EACD53",
}))
