package builder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTracePLD/pkg/expr"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/truthtable"
)

// NextStateSuffix marks the next-state expression of a registered output:
// "Qn+1" is the D input of output Q, and "Qn" inside any expression refers
// to the current state of Q.
const NextStateSuffix = "n+1"

// Emitter feeds an expression set into a Builder.
type Emitter struct {
	builder  Builder
	modifier expr.Modifier
}

// NewEmitter returns an emitter for b. A nil modifier means expr.Identity.
func NewEmitter(b Builder, m expr.Modifier) *Emitter {
	if m == nil {
		m = expr.Identity
	}
	return &Emitter{builder: b, modifier: m}
}

// Emit adds every expression of set to the builder in set order. The first
// error aborts emission.
func (em *Emitter) Emit(set truthtable.ExpressionSet) error {
	feedback := make(map[string]string)
	for _, ne := range set {
		if base, ok := nextState(ne.Name); ok {
			feedback[base+"n"] = base
		}
	}
	rename := expr.Rename(feedback)

	for _, ne := range set {
		if ne.Expr == nil {
			return &FormatterError{Name: ne.Name, Msg: "missing expression"}
		}
		e, err := em.modifier.Modify(ne.Expr)
		if err != nil {
			return modifierError(ne.Name, err)
		}
		if e, err = rename.Modify(e); err != nil {
			return modifierError(ne.Name, err)
		}

		if base, ok := nextState(ne.Name); ok {
			err = em.builder.AddSequential(base, e)
		} else {
			err = em.builder.AddCombinatorial(ne.Name, e)
		}
		if err != nil {
			return fmt.Errorf("emit %s: %w", ne.Name, err)
		}
	}
	return nil
}

func nextState(name string) (string, bool) {
	base, ok := strings.CutSuffix(name, NextStateSuffix)
	if !ok || base == "" {
		return "", false
	}
	return base, true
}

func modifierError(name string, err error) error {
	var exprErr *expr.ExpressionError
	if errors.As(err, &exprErr) {
		return fmt.Errorf("emit %s: %w", name, err)
	}
	return &expr.ExpressionError{Expr: name, Msg: "modifier failed", Err: err}
}
