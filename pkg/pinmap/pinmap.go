package pinmap

import (
	"fmt"
	"sort"
	"strings"
)

// Pin associates a logical signal name with a physical pin number.
// Number 0 means the signal has no pin assigned.
type Pin struct {
	Name   string
	Number int
}

// PinMap maps signal names to package pins of a target device.
type PinMap struct {
	byName map[string]int // signal name → pin (0 when absent)
	byPin  map[int]string // pin → signal name
	order  []string       // insertion order of signal names
	clock  int

	// Optional device constraint set by Restrict. nil means unrestricted.
	inputs  map[int]bool
	outputs map[int]bool
}

// New creates an empty pin map.
func New() *PinMap {
	return &PinMap{
		byName: make(map[string]int),
		byPin:  make(map[int]string),
	}
}

// AddAll inserts every pin in order. It stops at the first collision.
func (m *PinMap) AddAll(pins []Pin) error {
	for _, p := range pins {
		if err := m.Add(p); err != nil {
			return err
		}
	}
	return nil
}

// Add inserts a single pin. A pin number already owned by another signal, or
// a signal re-added with a different pin, is reported as a *PinMapError.
func (m *PinMap) Add(p Pin) error {
	if p.Name == "" {
		return &PinMapError{Pin: p.Number, Msg: "empty signal name"}
	}
	if p.Number < 0 {
		return &PinMapError{Name: p.Name, Pin: p.Number, Msg: "negative pin number"}
	}

	if prev, ok := m.byName[p.Name]; ok {
		if prev == p.Number || p.Number == 0 {
			return nil
		}
		if prev != 0 {
			return &PinMapError{Name: p.Name, Pin: p.Number,
				Msg: fmt.Sprintf("signal already assigned to pin %d", prev)}
		}
	}

	if p.Number != 0 {
		if owner, ok := m.byPin[p.Number]; ok && owner != p.Name {
			return &PinMapError{Name: p.Name, Pin: p.Number,
				Msg: fmt.Sprintf("pin already used by %s", owner)}
		}
		m.byPin[p.Number] = p.Name
	}

	if _, ok := m.byName[p.Name]; !ok {
		m.order = append(m.order, p.Name)
	}
	m.byName[p.Name] = p.Number
	return nil
}

// SetClockPin records the clock pin. 0 means no clock. Collisions with data
// pins are not checked here; see CheckClock.
func (m *PinMap) SetClockPin(pin int) {
	m.clock = pin
}

// ClockPin returns the clock pin or 0.
func (m *PinMap) ClockPin() int {
	return m.clock
}

// Pin returns the pin number of a signal.
func (m *PinMap) Pin(name string) (int, bool) {
	n, ok := m.byName[name]
	if !ok || n == 0 {
		return 0, false
	}
	return n, true
}

// Name returns the signal mapped to a pin.
func (m *PinMap) Name(pin int) (string, bool) {
	name, ok := m.byPin[pin]
	return name, ok
}

// Names returns all signal names in insertion order, including pin-less ones.
func (m *PinMap) Names() []string {
	return append([]string(nil), m.order...)
}

// Pins returns a snapshot of every signal with its pin, in insertion order.
func (m *PinMap) Pins() []Pin {
	pins := make([]Pin, 0, len(m.order))
	for _, name := range m.order {
		pins = append(pins, Pin{Name: name, Number: m.byName[name]})
	}
	return pins
}

// Len returns the number of signals in the map.
func (m *PinMap) Len() int {
	return len(m.order)
}

// Restrict limits which pins may serve as inputs and outputs. Output pins are
// implicitly valid inputs (feedback).
func (m *PinMap) Restrict(inputs, outputs []int) {
	m.inputs = make(map[int]bool, len(inputs)+len(outputs))
	m.outputs = make(map[int]bool, len(outputs))
	for _, p := range inputs {
		m.inputs[p] = true
	}
	for _, p := range outputs {
		m.inputs[p] = true
		m.outputs[p] = true
	}
}

// InputPin returns the pin of a signal that is read by the logic array.
func (m *PinMap) InputPin(name string) (int, error) {
	pin, ok := m.Pin(name)
	if !ok {
		return 0, &PinMapError{Name: name, Msg: "no pin assigned to input"}
	}
	if m.inputs != nil && !m.inputs[pin] {
		return 0, &PinMapError{Name: name, Pin: pin, Msg: "pin cannot be used as input"}
	}
	return pin, nil
}

// OutputPin returns the pin of a signal driven by the logic array.
func (m *PinMap) OutputPin(name string) (int, error) {
	pin, ok := m.Pin(name)
	if !ok {
		return 0, &PinMapError{Name: name, Msg: "no pin assigned to output"}
	}
	if m.outputs != nil && !m.outputs[pin] {
		return 0, &PinMapError{Name: name, Pin: pin, Msg: "pin cannot be used as output"}
	}
	return pin, nil
}

// CheckClock reports a clock pin that is also used by a data signal.
func (m *PinMap) CheckClock() error {
	if m.clock == 0 {
		return nil
	}
	if owner, ok := m.byPin[m.clock]; ok {
		return &PinMapError{Name: owner, Pin: m.clock, Msg: "pin is also the clock pin"}
	}
	return nil
}

// String renders the mapping sorted by pin number, e.g. "A:1 B:2 CLK:3*".
func (m *PinMap) String() string {
	pins := make([]int, 0, len(m.byPin))
	for p := range m.byPin {
		pins = append(pins, p)
	}
	sort.Ints(pins)

	var sb strings.Builder
	for i, p := range pins {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s:%d", m.byPin[p], p)
	}
	if m.clock != 0 {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "clock:%d", m.clock)
	}
	return sb.String()
}
