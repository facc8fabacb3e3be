package expr

import (
	"strings"
)

// Expression is a node of a boolean expression tree.
type Expression interface {
	// Eval evaluates the expression for the given variable assignment.
	Eval(vars map[string]bool) (bool, error)
	String() string
	node()
}

// Variable references a named signal.
type Variable struct {
	Name string
}

// Constant is a literal 0 or 1.
type Constant struct {
	Value bool
}

// Not negates its operand.
type Not struct {
	X Expression
}

// And is the conjunction of its terms.
type And struct {
	Terms []Expression
}

// Or is the disjunction of its terms.
type Or struct {
	Terms []Expression
}

// Xor is the exclusive or of two operands. It has no sum-of-products form in
// a single AND/OR array pass and is rejected by ToSOP.
type Xor struct {
	A, B Expression
}

// Var returns a variable node.
func Var(name string) Expression { return &Variable{Name: name} }

// Const returns a constant node.
func Const(v bool) Expression { return &Constant{Value: v} }

// NotOf returns the negation of x.
func NotOf(x Expression) Expression { return &Not{X: x} }

// AndOf returns the conjunction of terms. A single term is returned unchanged.
func AndOf(terms ...Expression) Expression {
	if len(terms) == 1 {
		return terms[0]
	}
	return &And{Terms: terms}
}

// OrOf returns the disjunction of terms. A single term is returned unchanged.
func OrOf(terms ...Expression) Expression {
	if len(terms) == 1 {
		return terms[0]
	}
	return &Or{Terms: terms}
}

// XorOf returns a xor b.
func XorOf(a, b Expression) Expression { return &Xor{A: a, B: b} }

func (*Variable) node() {}
func (*Constant) node() {}
func (*Not) node()      {}
func (*And) node()      {}
func (*Or) node()       {}
func (*Xor) node()      {}

func (v *Variable) Eval(vars map[string]bool) (bool, error) {
	val, ok := vars[v.Name]
	if !ok {
		return false, &ExpressionError{Expr: v.Name, Msg: "variable has no value"}
	}
	return val, nil
}

func (c *Constant) Eval(map[string]bool) (bool, error) { return c.Value, nil }

func (n *Not) Eval(vars map[string]bool) (bool, error) {
	v, err := n.X.Eval(vars)
	return !v, err
}

func (a *And) Eval(vars map[string]bool) (bool, error) {
	for _, t := range a.Terms {
		v, err := t.Eval(vars)
		if err != nil {
			return false, err
		}
		if !v {
			return false, nil
		}
	}
	return true, nil
}

func (o *Or) Eval(vars map[string]bool) (bool, error) {
	for _, t := range o.Terms {
		v, err := t.Eval(vars)
		if err != nil {
			return false, err
		}
		if v {
			return true, nil
		}
	}
	return false, nil
}

func (x *Xor) Eval(vars map[string]bool) (bool, error) {
	a, err := x.A.Eval(vars)
	if err != nil {
		return false, err
	}
	b, err := x.B.Eval(vars)
	if err != nil {
		return false, err
	}
	return a != b, nil
}

// Operator precedence used by String; higher binds tighter.
const (
	precOr = iota + 1
	precXor
	precAnd
	precUnary
)

func precedence(e Expression) int {
	switch e.(type) {
	case *Or:
		return precOr
	case *Xor:
		return precXor
	case *And:
		return precAnd
	default:
		return precUnary
	}
}

func wrap(e Expression, min int) string {
	if precedence(e) < min {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func (v *Variable) String() string { return v.Name }

func (c *Constant) String() string {
	if c.Value {
		return "1"
	}
	return "0"
}

func (n *Not) String() string { return "!" + wrap(n.X, precUnary) }

func (a *And) String() string { return join(a.Terms, " & ", precAnd+1) }

func (o *Or) String() string { return join(o.Terms, " | ", precOr+1) }

func (x *Xor) String() string {
	return wrap(x.A, precXor+1) + " ^ " + wrap(x.B, precXor+1)
}

func join(terms []Expression, sep string, min int) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = wrap(t, min)
	}
	return strings.Join(parts, sep)
}

// Variables returns the variable names of e in order of first appearance.
func Variables(e Expression) []string {
	var names []string
	seen := make(map[string]bool)
	Walk(e, func(n Expression) {
		if v, ok := n.(*Variable); ok && !seen[v.Name] {
			seen[v.Name] = true
			names = append(names, v.Name)
		}
	})
	return names
}

// Walk calls fn for every node of e in depth-first, pre-order.
func Walk(e Expression, fn func(Expression)) {
	if e == nil {
		return
	}
	fn(e)
	switch n := e.(type) {
	case *Not:
		Walk(n.X, fn)
	case *And:
		for _, t := range n.Terms {
			Walk(t, fn)
		}
	case *Or:
		for _, t := range n.Terms {
			Walk(t, fn)
		}
	case *Xor:
		Walk(n.A, fn)
		Walk(n.B, fn)
	}
}

// Transform rebuilds e bottom-up, replacing every node with fn's result.
// The input tree is never mutated.
func Transform(e Expression, fn func(Expression) (Expression, error)) (Expression, error) {
	var rebuilt Expression
	switch n := e.(type) {
	case *Not:
		x, err := Transform(n.X, fn)
		if err != nil {
			return nil, err
		}
		rebuilt = &Not{X: x}
	case *And:
		terms, err := transformAll(n.Terms, fn)
		if err != nil {
			return nil, err
		}
		rebuilt = &And{Terms: terms}
	case *Or:
		terms, err := transformAll(n.Terms, fn)
		if err != nil {
			return nil, err
		}
		rebuilt = &Or{Terms: terms}
	case *Xor:
		a, err := Transform(n.A, fn)
		if err != nil {
			return nil, err
		}
		b, err := Transform(n.B, fn)
		if err != nil {
			return nil, err
		}
		rebuilt = &Xor{A: a, B: b}
	case *Variable:
		rebuilt = &Variable{Name: n.Name}
	case *Constant:
		rebuilt = &Constant{Value: n.Value}
	default:
		return nil, &ExpressionError{Msg: "unknown expression node"}
	}
	return fn(rebuilt)
}

func transformAll(terms []Expression, fn func(Expression) (Expression, error)) ([]Expression, error) {
	out := make([]Expression, len(terms))
	for i, t := range terms {
		r, err := Transform(t, fn)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}
