// Package tt2 writes and reads TT2 files: Berkeley PLA truth tables with the
// "#$" header lines CUPL-compatible fitters expect.
package tt2

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/OpenTraceLab/OpenTracePLD/pkg/builder"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/pinmap"
)

// DefaultClock names the clock input of registered outputs when the design
// does not name its clock.
const DefaultClock = "CLK"

// Config holds the header fields of a TT2 file.
type Config struct {
	Tool   string // defaults to "pldexport"
	Title  string
	Module string
	Device string // optional fitter device, e.g. "f1502ispplcc44"
	Clock  string // clock input name, defaults to DefaultClock
}

// Exporter renders collected expressions as a TT2 file. An Exporter serves a
// single export and must not be shared.
type Exporter struct {
	cfg        Config
	clockNamed bool
	pins       *pinmap.PinMap
	collector  *builder.Collector
}

// NewExporter returns an exporter with an empty pin map and builder.
func NewExporter(cfg Config) *Exporter {
	if cfg.Tool == "" {
		cfg.Tool = "pldexport"
	}
	named := cfg.Clock != ""
	if !named {
		cfg.Clock = DefaultClock
	}
	return &Exporter{
		cfg:        cfg,
		clockNamed: named,
		pins:       pinmap.New(),
		collector:  builder.NewCollector(),
	}
}

// PinMapping returns the pin map filled by the caller before WriteTo.
func (e *Exporter) PinMapping() *pinmap.PinMap { return e.pins }

// Builder returns the builder receiving the output expressions.
func (e *Exporter) Builder() builder.Builder { return e.collector }

// clocked reports whether the design has a clock, either by name or by pin.
// Without one, a signal called DefaultClock is ordinary data.
func (e *Exporter) clocked() bool {
	return e.clockNamed || e.pins.ClockPin() != 0
}

// WriteTo writes the TT2 file. Signals without a pin are left out of the
// PINS line but still take part in the logic. Registered outputs need a
// clock.
func (e *Exporter) WriteTo(w io.Writer) (int64, error) {
	if err := e.pins.CheckClock(); err != nil {
		return 0, err
	}
	if err := e.checkClock(); err != nil {
		return 0, err
	}

	terms := e.collector.Terms()
	inputs := e.inputs()
	index := make(map[string]int, len(inputs))
	for i, name := range inputs {
		index[name] = i
	}

	var outputs []string
	var rows []string
	addRow := func(cube []byte, out int, nOut int) {
		o := bytes.Repeat([]byte{'0'}, nOut)
		o[out] = '1'
		rows = append(rows, string(cube)+" "+string(o))
	}
	for _, t := range terms {
		if t.Registered {
			outputs = append(outputs, t.Name+".D", t.Name+".C")
		} else {
			outputs = append(outputs, t.Name)
		}
	}

	out := 0
	for _, t := range terms {
		for _, p := range t.SOP {
			cube := bytes.Repeat([]byte{'-'}, len(inputs))
			for _, lit := range p {
				if lit.Negated {
					cube[index[lit.Name]] = '0'
				} else {
					cube[index[lit.Name]] = '1'
				}
			}
			addRow(cube, out, len(outputs))
		}
		out++
		if t.Registered {
			cube := bytes.Repeat([]byte{'-'}, len(inputs))
			cube[index[e.cfg.Clock]] = '1'
			addRow(cube, out, len(outputs))
			out++
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "#$ TOOL %s\n", e.cfg.Tool)
	if e.cfg.Title != "" {
		fmt.Fprintf(&buf, "#$ TITLE %s\n", e.cfg.Title)
	}
	if e.cfg.Module != "" {
		fmt.Fprintf(&buf, "#$ MODULE %s\n", e.cfg.Module)
	}
	if e.cfg.Device != "" {
		fmt.Fprintf(&buf, "#$ DEVICE %s\n", e.cfg.Device)
	}
	pins := e.pinList(inputs, terms)
	fmt.Fprintf(&buf, "#$ PINS %d", len(pins))
	for _, p := range pins {
		fmt.Fprintf(&buf, " %s:%d", p.Name, p.Number)
	}
	buf.WriteString("\n#$ NODES 0\n")
	buf.WriteString(".type f\n")
	fmt.Fprintf(&buf, ".i %d\n", len(inputs))
	fmt.Fprintf(&buf, ".o %d\n", len(outputs))
	fmt.Fprintf(&buf, ".ilb %s\n", strings.Join(inputs, " "))
	fmt.Fprintf(&buf, ".ob %s\n", strings.Join(outputs, " "))
	fmt.Fprintf(&buf, ".phase %s\n", strings.Repeat("1", len(outputs)))
	fmt.Fprintf(&buf, ".p %d\n", len(rows))
	for _, r := range rows {
		buf.WriteString(r)
		buf.WriteByte('\n')
	}
	buf.WriteString(".e\n")

	return buf.WriteTo(w)
}

func (e *Exporter) checkClock() error {
	if !e.clocked() {
		for _, t := range e.collector.Terms() {
			if t.Registered {
				return &pinmap.PinMapError{Name: t.Name, Msg: "registered output needs a clock"}
			}
		}
		return nil
	}
	if n, ok := e.pins.Pin(e.cfg.Clock); ok {
		return &pinmap.PinMapError{Name: e.cfg.Clock, Pin: n, Msg: "clock name is also a data signal"}
	}
	return nil
}

// inputs orders the variables read by the logic: signals in pin map order
// first, then any remaining variables, then the clock.
func (e *Exporter) inputs() []string {
	used := make(map[string]bool)
	for _, v := range e.collector.Variables() {
		used[v] = true
	}
	clock := ""
	if e.clocked() {
		clock = e.cfg.Clock
	}
	if clock != "" && e.collector.HasRegistered() {
		used[clock] = true
	}

	var inputs []string
	seen := make(map[string]bool)
	add := func(name string) {
		if used[name] && !seen[name] {
			seen[name] = true
			inputs = append(inputs, name)
		}
	}
	for _, name := range e.pins.Names() {
		if name != clock {
			add(name)
		}
	}
	for _, name := range e.collector.Variables() {
		if name != clock {
			add(name)
		}
	}
	add(clock)
	return inputs
}

// pinList returns the mapped pins of inputs and outputs, then the clock pin
// if the clock column is present.
func (e *Exporter) pinList(inputs []string, terms []builder.Term) []pinmap.Pin {
	clocked := e.clocked()
	var pins []pinmap.Pin
	seen := make(map[string]bool)
	add := func(name string) {
		if seen[name] || clocked && name == e.cfg.Clock {
			return
		}
		seen[name] = true
		if n, ok := e.pins.Pin(name); ok {
			pins = append(pins, pinmap.Pin{Name: name, Number: n})
		}
	}
	for _, name := range inputs {
		add(name)
	}
	for _, t := range terms {
		add(t.Name)
	}
	clock := e.pins.ClockPin()
	if !clocked || clock == 0 {
		return pins
	}
	for _, name := range inputs {
		if name == e.cfg.Clock {
			pins = append(pins, pinmap.Pin{Name: name, Number: clock})
			break
		}
	}
	return pins
}
