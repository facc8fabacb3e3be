package builder

import (
	"fmt"
	"regexp"

	"github.com/OpenTraceLab/OpenTracePLD/pkg/expr"
)

// Builder receives output expressions on behalf of a target format.
type Builder interface {
	// AddCombinatorial adds an output that follows its expression directly.
	AddCombinatorial(name string, e expr.Expression) error
	// AddSequential adds a registered output whose next state is e.
	AddSequential(name string, e expr.Expression) error
}

// Term is one output collected by a Collector, already in sum-of-products
// form.
type Term struct {
	Name       string
	SOP        expr.SOP
	Registered bool
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Collector is a Builder that accumulates outputs as SOP terms in the order
// they are added. Format-specific builders embed it.
type Collector struct {
	terms []Term
	index map[string]int
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{index: make(map[string]int)}
}

func (c *Collector) AddCombinatorial(name string, e expr.Expression) error {
	return c.add(name, e, false)
}

func (c *Collector) AddSequential(name string, e expr.Expression) error {
	return c.add(name, e, true)
}

func (c *Collector) add(name string, e expr.Expression, registered bool) error {
	if !identifier.MatchString(name) {
		return &FormatterError{Name: name, Msg: "not a valid signal identifier"}
	}
	if _, dup := c.index[name]; dup {
		return &FormatterError{Name: name, Msg: "output defined twice"}
	}
	if e == nil {
		return &FormatterError{Name: name, Msg: "missing expression"}
	}
	sop, err := expr.ToSOP(e)
	if err != nil {
		return fmt.Errorf("output %s: %w", name, err)
	}
	for _, v := range sop.Variables() {
		if !identifier.MatchString(v) {
			return &FormatterError{Name: v, Msg: "not a valid signal identifier"}
		}
	}
	c.index[name] = len(c.terms)
	c.terms = append(c.terms, Term{Name: name, SOP: sop, Registered: registered})
	return nil
}

// Terms returns the collected outputs in insertion order.
func (c *Collector) Terms() []Term {
	return append([]Term(nil), c.terms...)
}

// Term returns the collected output with the given name.
func (c *Collector) Term(name string) (Term, bool) {
	i, ok := c.index[name]
	if !ok {
		return Term{}, false
	}
	return c.terms[i], true
}

// HasRegistered reports whether any output is sequential.
func (c *Collector) HasRegistered() bool {
	for _, t := range c.terms {
		if t.Registered {
			return true
		}
	}
	return false
}

// Variables returns every variable read by the collected terms, in order of
// first appearance.
func (c *Collector) Variables() []string {
	var names []string
	seen := make(map[string]bool)
	for _, t := range c.terms {
		for _, v := range t.SOP.Variables() {
			if !seen[v] {
				seen[v] = true
				names = append(names, v)
			}
		}
	}
	return names
}
