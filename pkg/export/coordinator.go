package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/OpenTraceLab/OpenTracePLD/pkg/builder"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/expr"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/truthtable"
)

// State is the stage an export has reached.
type State int

const (
	Idle State = iota
	MappingPins
	EmittingExpressions
	Serializing
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case MappingPins:
		return "mapping pins"
	case EmittingExpressions:
		return "emitting expressions"
	case Serializing:
		return "serializing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Request is one export job.
type Request struct {
	Table       *truthtable.TruthTable
	Expressions truthtable.ExpressionSet
	Destination string
	Target      Target
	Modifier    expr.Modifier // nil means expr.Identity
	Title       string        // header title, defaults to the table name
}

// Result is the outcome of an export. On success State is Done and
// MissingPins lists the truth table signals without a pin number (possibly
// empty). On failure State is Failed and Err holds the classified cause.
type Result struct {
	Destination string
	State       State
	Err         *Error
	MissingPins []string
}

// OK reports whether the export succeeded.
func (r Result) OK() bool { return r.State == Done }

// Coordinator runs exports against a filesystem. It holds no per-export
// state, so one Coordinator may run exports concurrently.
type Coordinator struct {
	fs  afero.Fs
	log logrus.FieldLogger
}

// NewCoordinator returns a coordinator writing to fs. A nil logger discards
// log output.
func NewCoordinator(fs afero.Fs, log logrus.FieldLogger) *Coordinator {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Coordinator{fs: fs, log: log}
}

// Export maps pins, emits expressions and writes the artifact. Nothing is
// written unless every stage succeeds.
func (c *Coordinator) Export(req Request) Result {
	log := c.log.WithFields(logrus.Fields{
		"target":      req.Target.Name,
		"destination": req.Destination,
	})
	res := Result{Destination: req.Destination, State: Idle}
	fail := func(err error, fallback Kind) Result {
		res.Err = Classify(err, fallback)
		log.WithFields(logrus.Fields{
			"state": res.State.String(),
			"kind":  res.Err.Kind.String(),
		}).WithError(err).Debug("export failed")
		res.State = Failed
		return res
	}
	step := func(s State) {
		res.State = s
		log.WithField("state", s.String()).Debug("export step")
	}

	if req.Target.New == nil {
		return fail(&builder.FormatterError{Msg: "no target format"}, KindFormatter)
	}
	table := req.Table
	if table == nil {
		table = &truthtable.TruthTable{}
	}
	title := req.Title
	if title == "" {
		title = table.Name
	}
	exp := req.Target.New(Options{Title: title, Clock: table.Clock.Name})

	step(MappingPins)
	pins := exp.PinMapping()
	if err := pins.AddAll(table.Pins()); err != nil {
		return fail(err, KindPinMap)
	}
	pins.SetClockPin(table.ClockPin())

	step(EmittingExpressions)
	if err := builder.NewEmitter(exp.Builder(), req.Modifier).Emit(req.Expressions); err != nil {
		return fail(err, KindExpression)
	}

	step(Serializing)
	var buf bytes.Buffer
	if _, err := exp.WriteTo(&buf); err != nil {
		return fail(err, KindFuseMapFiller)
	}
	if err := WriteAtomic(c.fs, req.Destination, buf.Bytes(), 0o644); err != nil {
		return fail(err, KindIO)
	}

	step(Done)
	res.MissingPins = table.PinsWithoutNumber()
	log.WithFields(logrus.Fields{
		"bytes":        buf.Len(),
		"missing_pins": len(res.MissingPins),
	}).Info("export written")
	return res
}
