package export

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTracePLD/pkg/builder"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/expr"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/jedec"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/pinmap"
)

// Kind classifies a failed export.
type Kind int

const (
	// KindPinMap is a pin collision or a pin mapping the format needs.
	KindPinMap Kind = iota + 1
	// KindExpression is an expression without the required normal form.
	KindExpression
	// KindFormatter is a structure the target builder rejects.
	KindFormatter
	// KindFuseMapFiller is a design exceeding the device layout.
	KindFuseMapFiller
	// KindIO is a failure writing the destination.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindPinMap:
		return "pin map error"
	case KindExpression:
		return "expression error"
	case KindFormatter:
		return "formatter error"
	case KindFuseMapFiller:
		return "fuse map error"
	case KindIO:
		return "i/o error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the classified failure of one export.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IOError reports a failed write of the destination file.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("export: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Classify maps err to its kind. Component error types win; anything else
// gets the fallback kind of the stage it came from.
func Classify(err error, fallback Kind) *Error {
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var (
		pinErr  *pinmap.PinMapError
		exprErr *expr.ExpressionError
		fmtErr  *builder.FormatterError
		fillErr *jedec.FuseMapFillerError
		ioErr   *IOError
	)
	switch {
	case errors.As(err, &pinErr):
		return &Error{Kind: KindPinMap, Err: err}
	case errors.As(err, &exprErr):
		return &Error{Kind: KindExpression, Err: err}
	case errors.As(err, &fmtErr):
		return &Error{Kind: KindFormatter, Err: err}
	case errors.As(err, &fillErr):
		return &Error{Kind: KindFuseMapFiller, Err: err}
	case errors.As(err, &ioErr):
		return &Error{Kind: KindIO, Err: err}
	default:
		return &Error{Kind: fallback, Err: err}
	}
}
