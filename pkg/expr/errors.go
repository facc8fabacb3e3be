package expr

import "fmt"

// ExpressionError reports an expression that cannot be parsed, evaluated or
// brought into the normal form a target requires.
type ExpressionError struct {
	Expr string // offending (sub-)expression, may be empty
	Msg  string
	Err  error
}

func (e *ExpressionError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Expr == "" {
		return "expr: " + msg
	}
	return fmt.Sprintf("expr: %q: %s", e.Expr, msg)
}

func (e *ExpressionError) Unwrap() error { return e.Err }
