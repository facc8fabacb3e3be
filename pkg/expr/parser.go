package expr

import (
	"sync"

	"github.com/alecthomas/participle/v2"
)

// Grammar, lowest precedence first: OR < XOR < AND < NOT.

type orNode struct {
	Left  *xorNode   `@@`
	Right []*xorNode `( ( Or | KwOr ) @@ )*`
}

type xorNode struct {
	Left  *andNode   `@@`
	Right []*andNode `( ( Xor | KwXor ) @@ )*`
}

type andNode struct {
	Left  *unaryNode   `@@`
	Right []*unaryNode `( ( And | KwAnd ) @@ )*`
}

type unaryNode struct {
	Negated *unaryNode   `  ( Not | KwNot ) @@`
	Operand *operandNode `| @@`
}

type operandNode struct {
	Const *string `  @Const`
	Ident *string `| @Ident`
	Sub   *orNode `| LParen @@ RParen`
}

// Parser turns expression text into an Expression tree.
type Parser struct {
	parser *participle.Parser[orNode]
}

// NewParser creates a new expression parser instance.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[orNode](
		participle.Lexer(ExprLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, &ExpressionError{Msg: "failed to build parser", Err: err}
	}
	return &Parser{parser: parser}, nil
}

// ParseString parses a single expression.
func (p *Parser) ParseString(input string) (Expression, error) {
	tree, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, &ExpressionError{Expr: input, Msg: "parse error", Err: err}
	}
	return tree.build(), nil
}

var defaultParser = sync.OnceValues(NewParser)

// Parse parses input with a shared parser.
func Parse(input string) (Expression, error) {
	p, err := defaultParser()
	if err != nil {
		return nil, err
	}
	return p.ParseString(input)
}

// MustParse is like Parse but panics on error. Intended for tests and
// static tables.
func MustParse(input string) Expression {
	e, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return e
}

func (n *orNode) build() Expression {
	terms := []Expression{n.Left.build()}
	for _, r := range n.Right {
		terms = append(terms, r.build())
	}
	return OrOf(terms...)
}

func (n *xorNode) build() Expression {
	e := n.Left.build()
	for _, r := range n.Right {
		e = XorOf(e, r.build())
	}
	return e
}

func (n *andNode) build() Expression {
	terms := []Expression{n.Left.build()}
	for _, r := range n.Right {
		terms = append(terms, r.build())
	}
	return AndOf(terms...)
}

func (n *unaryNode) build() Expression {
	if n.Negated != nil {
		return NotOf(n.Negated.build())
	}
	return n.Operand.build()
}

func (n *operandNode) build() Expression {
	switch {
	case n.Const != nil:
		return Const(*n.Const == "1")
	case n.Ident != nil:
		return Var(*n.Ident)
	default:
		return n.Sub.build()
	}
}
