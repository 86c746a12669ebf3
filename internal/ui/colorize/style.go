// Package colorize provides syntax highlighting for chunk listings and
// execution traces.
package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

func init() {
	// Register our custom listing style on package initialization
	_ = ListingDark
}

// IDA-style theme colors of the chroma listing style.
const (
	listingAddress = "#808080" // Gray for pc/offsets
	listingOpcode  = "#FFFFFF" // White for opcode names
	listingName    = "#87CEEB" // Light blue for identifiers
	listingNumber  = "#FF80C0" // Light pink for numbers
	listingLabel   = "#FFC800" // Yellow for labels/function names
	listingComment = "#FF8000" // Orange for comments
	listingString  = "#00FF00" // Green for strings
)

// ListingDark is a custom style for chunk listings - IDA Pro style
var ListingDark = styles.Register(chroma.MustNewStyle("listing-dark", chroma.StyleEntries{
	chroma.Text:           listingOpcode,
	chroma.Background:     "bg:#000000", // Pure black background
	chroma.Comment:        listingComment,
	chroma.CommentPreproc: listingComment,

	// For the Lua lexer mappings
	chroma.Keyword:       listingOpcode, // keywords in white
	chroma.KeywordPseudo: listingOpcode,
	chroma.Name:          listingName, // identifiers in cyan
	chroma.NameBuiltin:   listingName, // builtins (print, type) in cyan
	chroma.NameVariable:  listingName,

	// Numbers - pink like IDA
	chroma.LiteralNumber:        listingNumber,
	chroma.LiteralNumberHex:     listingNumber,
	chroma.LiteralNumberInteger: listingNumber,
	chroma.LiteralNumberFloat:   listingNumber,

	// Labels and symbols
	chroma.NameLabel:    listingLabel,
	chroma.NameFunction: listingOpcode,

	// Operators and punctuation
	chroma.Operator:    listingOpcode,
	chroma.Punctuation: listingOpcode,

	// Strings
	chroma.String: listingString,
}))
