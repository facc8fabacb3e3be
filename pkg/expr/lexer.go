package expr

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// ExprLexer tokenizes boolean expressions. Several operator spellings are
// accepted so expressions copied from CUPL, ABEL or textbook notation parse
// unchanged: "A & B | !C", "A*B + /C", "A AND B OR NOT C".
var ExprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},

	// Word operators (case-insensitive), must precede Ident
	{Name: "KwAnd", Pattern: `(?i)\bAND\b`},
	{Name: "KwOr", Pattern: `(?i)\bOR\b`},
	{Name: "KwXor", Pattern: `(?i)\bXOR\b`},
	{Name: "KwNot", Pattern: `(?i)\bNOT\b`},

	// Symbolic operators
	{Name: "Or", Pattern: `\|\|?|\+|∨`},
	{Name: "And", Pattern: `&&?|\*|∧|·`},
	{Name: "Xor", Pattern: `\^|⊕`},
	{Name: "Not", Pattern: `[!~¬/]`},

	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},

	{Name: "Const", Pattern: `[01]`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
})
