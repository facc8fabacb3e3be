package expr

import (
	"fmt"
	"sort"
	"strings"
)

// MaxProducts bounds the size of a sum-of-products expansion. Expressions
// that distribute into more product terms are rejected.
const MaxProducts = 4096

// Literal is a possibly negated variable inside a product term.
type Literal struct {
	Name    string
	Negated bool
}

func (l Literal) String() string {
	if l.Negated {
		return "!" + l.Name
	}
	return l.Name
}

// Product is a conjunction of literals, sorted by name. An empty product is
// constant true.
type Product []Literal

// SOP is a disjunction of products. An empty SOP is constant false.
type SOP []Product

// Eval evaluates the product for the given assignment.
func (p Product) Eval(vars map[string]bool) (bool, error) {
	for _, l := range p {
		v, ok := vars[l.Name]
		if !ok {
			return false, &ExpressionError{Expr: l.Name, Msg: "variable has no value"}
		}
		if v == l.Negated {
			return false, nil
		}
	}
	return true, nil
}

func (p Product) String() string {
	if len(p) == 0 {
		return "1"
	}
	parts := make([]string, len(p))
	for i, l := range p {
		parts[i] = l.String()
	}
	return strings.Join(parts, " & ")
}

func (p Product) key() string {
	var sb strings.Builder
	for _, l := range p {
		if l.Negated {
			sb.WriteByte('!')
		}
		sb.WriteString(l.Name)
		sb.WriteByte(',')
	}
	return sb.String()
}

// Eval evaluates the sum for the given assignment.
func (s SOP) Eval(vars map[string]bool) (bool, error) {
	for _, p := range s {
		v, err := p.Eval(vars)
		if err != nil {
			return false, err
		}
		if v {
			return true, nil
		}
	}
	return false, nil
}

func (s SOP) String() string {
	if len(s) == 0 {
		return "0"
	}
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = p.String()
	}
	return strings.Join(parts, " | ")
}

// Expression converts the SOP back into an expression tree.
func (s SOP) Expression() Expression {
	if len(s) == 0 {
		return Const(false)
	}
	terms := make([]Expression, 0, len(s))
	for _, p := range s {
		if len(p) == 0 {
			return Const(true)
		}
		lits := make([]Expression, len(p))
		for i, l := range p {
			lits[i] = Var(l.Name)
			if l.Negated {
				lits[i] = NotOf(lits[i])
			}
		}
		terms = append(terms, AndOf(lits...))
	}
	return OrOf(terms...)
}

// Variables returns the variable names used by s in order of first appearance.
func (s SOP) Variables() []string {
	var names []string
	seen := make(map[string]bool)
	for _, p := range s {
		for _, l := range p {
			if !seen[l.Name] {
				seen[l.Name] = true
				names = append(names, l.Name)
			}
		}
	}
	return names
}

// ToSOP brings e into sum-of-products form using De Morgan's laws and
// distribution. Contradicting products are dropped and duplicates removed;
// no further minimization takes place. XOR is not supported.
func ToSOP(e Expression) (SOP, error) {
	s, err := toSOP(e, false)
	if err != nil {
		return nil, err
	}
	return dedupe(s), nil
}

func toSOP(e Expression, negate bool) (SOP, error) {
	switch n := e.(type) {
	case *Constant:
		if n.Value != negate {
			return SOP{Product{}}, nil
		}
		return SOP{}, nil
	case *Variable:
		return SOP{Product{{Name: n.Name, Negated: negate}}}, nil
	case *Not:
		return toSOP(n.X, !negate)
	case *And:
		if negate {
			return union(n.Terms, true)
		}
		return cross(n.Terms, false)
	case *Or:
		if negate {
			return cross(n.Terms, true)
		}
		return union(n.Terms, false)
	case *Xor:
		return nil, &ExpressionError{Expr: n.String(), Msg: "operator XOR is not supported in sum-of-products form"}
	case nil:
		return nil, &ExpressionError{Msg: "missing expression"}
	default:
		return nil, &ExpressionError{Expr: e.String(), Msg: fmt.Sprintf("unsupported node %T", e)}
	}
}

func union(terms []Expression, negate bool) (SOP, error) {
	var out SOP
	for _, t := range terms {
		s, err := toSOP(t, negate)
		if err != nil {
			return nil, err
		}
		out = append(out, s...)
		if len(out) > MaxProducts {
			return nil, tooLarge(terms)
		}
	}
	return out, nil
}

func cross(terms []Expression, negate bool) (SOP, error) {
	out := SOP{Product{}}
	for _, t := range terms {
		s, err := toSOP(t, negate)
		if err != nil {
			return nil, err
		}
		if len(out)*len(s) > MaxProducts {
			return nil, tooLarge(terms)
		}
		next := make(SOP, 0, len(out)*len(s))
		for _, a := range out {
			for _, b := range s {
				if p, ok := merge(a, b); ok {
					next = append(next, p)
				}
			}
		}
		out = next
	}
	return out, nil
}

func tooLarge(terms []Expression) error {
	return &ExpressionError{
		Expr: AndOf(terms...).String(),
		Msg:  fmt.Sprintf("expansion exceeds %d product terms", MaxProducts),
	}
}

// merge conjoins two products. ok is false if the result contains both a
// variable and its complement.
func merge(a, b Product) (Product, bool) {
	byName := make(map[string]bool, len(a)+len(b))
	for _, l := range append(append(Product(nil), a...), b...) {
		if neg, seen := byName[l.Name]; seen {
			if neg != l.Negated {
				return nil, false
			}
			continue
		}
		byName[l.Name] = l.Negated
	}
	p := make(Product, 0, len(byName))
	for name, neg := range byName {
		p = append(p, Literal{Name: name, Negated: neg})
	}
	sort.Slice(p, func(i, j int) bool { return p[i].Name < p[j].Name })
	return p, true
}

func dedupe(s SOP) SOP {
	seen := make(map[string]bool, len(s))
	out := make(SOP, 0, len(s))
	for _, p := range s {
		k := p.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}
