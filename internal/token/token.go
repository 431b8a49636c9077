// Package token enumerates the lexical tokens produced by the scanner
// that feeds internal/parser (spec.md §7).
//
// No teacher analogue exists (wazero has no source-language frontend);
// grounded in the recursive-descent parser files retrieved into
// other_examples/ for this spec, whose token-kind-plus-literal Token
// shape this package follows.
package token

import "fmt"

// Kind discriminates a token's lexical category.
type Kind int

const (
	EOF Kind = iota
	Illegal

	Ident
	Number
	String
	TemplateString

	// Punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Semicolon
	Colon
	Arrow
	Dot
	Question

	// Operators
	Assign
	Plus
	Minus
	Star
	Slash
	Percent
	Less
	Greater
	LessEq
	GreaterEq
	Equal
	NotEqual
	StrictEqual
	StrictNotEqual
	LogicalAnd
	LogicalOr
	Bang
	PlusPlus
	MinusMinus

	// Keywords
	Var
	Let
	Const
	Function
	Return
	If
	Else
	While
	For
	Break
	Continue
	True
	False
	Null
	Undefined
	This
	New
	Typeof
	Try
	Catch
	Finally
	Throw
	In
)

var keywords = map[string]Kind{
	"var": Var, "let": Let, "const": Const, "function": Function,
	"return": Return, "if": If, "else": Else, "while": While, "for": For,
	"break": Break, "continue": Continue, "true": True, "false": False,
	"null": Null, "undefined": Undefined, "this": This, "new": New,
	"typeof": Typeof, "try": Try, "catch": Catch, "finally": Finally,
	"throw": Throw, "in": In,
}

// Lookup classifies ident as a keyword Kind, or Ident if it is not one.
func Lookup(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return Ident
}

// Position is a 1-based line/column pair, per DESIGN.md's
// representedLine convention resolution (parser.lineBase = 1).
type Position struct {
	Line   int
	Column int
	Offset int // byte offset from the start of the source, for DebugOffsets
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is one scanned lexical unit.
type Token struct {
	Kind     Kind
	Literal  string // source text of the token; for a string literal, its contents with quotes removed and escapes decoded
	Pos      Position
	NewlineBefore bool // true if a line terminator appeared before this token, for ASI
}
