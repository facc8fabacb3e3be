package truthtable

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTracePLD/pkg/expr"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/pinmap"
)

// Kind tells whether a signal is read or driven by the logic.
type Kind int

const (
	// Input is a signal read by the expressions.
	Input Kind = iota
	// Output is a signal driven by an expression.
	Output
)

func (k Kind) String() string {
	switch k {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Signal is a named column of the truth table with an optional pin number.
type Signal struct {
	Name string
	Pin  int // 0 when no pin is assigned
	Kind Kind
}

// TruthTable lists the signals of a design in column order. It is treated as
// immutable once handed to an export.
type TruthTable struct {
	Name    string
	Signals []Signal
	Clock   Signal // Name == "" when the design has no clock
}

// Pins returns the data signals with their pin numbers, in column order.
// The clock is not included.
func (t *TruthTable) Pins() []pinmap.Pin {
	pins := make([]pinmap.Pin, 0, len(t.Signals))
	for _, s := range t.Signals {
		pins = append(pins, pinmap.Pin{Name: s.Name, Number: s.Pin})
	}
	return pins
}

// ClockPin returns the clock pin number or 0.
func (t *TruthTable) ClockPin() int {
	if t.Clock.Name == "" {
		return 0
	}
	return t.Clock.Pin
}

// PinsWithoutNumber returns the signals lacking a pin number, clock
// included. The result is empty, never nil.
func (t *TruthTable) PinsWithoutNumber() []string {
	missing := []string{}
	for _, s := range t.Signals {
		if s.Pin == 0 {
			missing = append(missing, s.Name)
		}
	}
	if t.Clock.Name != "" && t.Clock.Pin == 0 {
		missing = append(missing, t.Clock.Name)
	}
	return missing
}

// Inputs returns the input signal names in column order.
func (t *TruthTable) Inputs() []string { return t.names(Input) }

// Outputs returns the output signal names in column order.
func (t *TruthTable) Outputs() []string { return t.names(Output) }

func (t *TruthTable) names(kind Kind) []string {
	var names []string
	for _, s := range t.Signals {
		if s.Kind == kind {
			names = append(names, s.Name)
		}
	}
	return names
}

// Signal looks up a signal by name.
func (t *TruthTable) Signal(name string) (Signal, bool) {
	for _, s := range t.Signals {
		if s.Name == name {
			return s, true
		}
	}
	if t.Clock.Name != "" && t.Clock.Name == name {
		return t.Clock, true
	}
	return Signal{}, false
}

// Validate checks for empty and duplicate signal names.
func (t *TruthTable) Validate() error {
	seen := make(map[string]bool, len(t.Signals)+1)
	all := t.Signals
	if t.Clock.Name != "" {
		all = append(append([]Signal(nil), t.Signals...), t.Clock)
	}
	for i, s := range all {
		if s.Name == "" {
			return fmt.Errorf("truthtable: signal %d has no name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("truthtable: duplicate signal %s", s.Name)
		}
		if s.Pin < 0 {
			return fmt.Errorf("truthtable: signal %s has negative pin %d", s.Name, s.Pin)
		}
		seen[s.Name] = true
	}
	return nil
}

// NamedExpression binds an output name to its expression.
type NamedExpression struct {
	Name string
	Expr expr.Expression
}

// ExpressionSet is an ordered list of output expressions. Order matters for
// formats with position-dependent rows.
type ExpressionSet []NamedExpression

// Add appends an expression and returns the extended set.
func (s ExpressionSet) Add(name string, e expr.Expression) ExpressionSet {
	return append(s, NamedExpression{Name: name, Expr: e})
}

// Lookup returns the expression for name.
func (s ExpressionSet) Lookup(name string) (expr.Expression, bool) {
	for _, ne := range s {
		if ne.Name == name {
			return ne.Expr, true
		}
	}
	return nil, false
}

// Assignments calls fn for every assignment of names, counting up in binary
// with the first name as the most significant bit. Iteration stops at the
// first error.
func Assignments(names []string, fn func(vars map[string]bool) error) error {
	if len(names) > 24 {
		return fmt.Errorf("truthtable: %d variables are too many to enumerate", len(names))
	}
	n := len(names)
	for row := 0; row < 1<<n; row++ {
		vars := make(map[string]bool, n)
		for i, name := range names {
			vars[name] = row&(1<<(n-1-i)) != 0
		}
		if err := fn(vars); err != nil {
			return err
		}
	}
	return nil
}
