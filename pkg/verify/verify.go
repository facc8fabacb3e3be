// Package verify checks an exported artifact against the project it was
// exported from by evaluating both over every input assignment.
package verify

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/OpenTraceLab/OpenTracePLD/pkg/builder"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/device"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/jedec"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/truthtable"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/tt2"
)

// MaxReported caps the mismatches kept in a Report.
const MaxReported = 16

// Mismatch is one output that disagrees with the project for one assignment.
type Mismatch struct {
	Output string
	Inputs map[string]bool
	Want   bool
	Got    bool
}

func (m Mismatch) String() string {
	names := make([]string, 0, len(m.Inputs))
	for n := range m.Inputs {
		names = append(names, n)
	}
	sort.Strings(names)
	var b strings.Builder
	for i, n := range names {
		if i > 0 {
			b.WriteByte(' ')
		}
		v := 0
		if m.Inputs[n] {
			v = 1
		}
		fmt.Fprintf(&b, "%s=%d", n, v)
	}
	return fmt.Sprintf("%s: want %v, got %v at %s", m.Output, m.Want, m.Got, b.String())
}

// Report summarizes a verification run.
type Report struct {
	Variables   []string // enumerated variables, most significant first
	Assignments int
	Failures    int        // total mismatching (assignment, output) pairs
	Mismatches  []Mismatch // first MaxReported failures
}

// OK reports whether the artifact matched the project everywhere.
func (r *Report) OK() bool { return r.Failures == 0 }

func (r *Report) record(m Mismatch) {
	r.Failures++
	if len(r.Mismatches) < MaxReported {
		r.Mismatches = append(r.Mismatches, m)
	}
}

// model is the project's logic after emission: the same terms a format
// exporter receives.
type model struct {
	terms []builder.Term
	free  []string // variables not driven by a combinatorial term
}

func newModel(p *truthtable.Project) (*model, error) {
	c := builder.NewCollector()
	if err := builder.NewEmitter(c, nil).Emit(p.Expressions); err != nil {
		return nil, err
	}
	m := &model{terms: c.Terms()}
	driven := make(map[string]bool)
	for _, t := range m.terms {
		if !t.Registered {
			driven[t.Name] = true
		}
	}
	for _, v := range c.Variables() {
		if !driven[v] {
			m.free = append(m.free, v)
		}
	}
	return m, nil
}

// eval settles combinatorial feedback and returns the value of every
// variable plus the output of every term (next state for registered ones).
func (m *model) eval(vars map[string]bool) (values, outputs map[string]bool, err error) {
	values = make(map[string]bool, len(vars)+len(m.terms))
	for k, v := range vars {
		values[k] = v
	}
	for _, t := range m.terms {
		if !t.Registered {
			values[t.Name] = false
		}
	}
	for pass := 0; pass <= len(m.terms); pass++ {
		stable := true
		for _, t := range m.terms {
			if t.Registered {
				continue
			}
			v, err := t.SOP.Eval(values)
			if err != nil {
				return nil, nil, err
			}
			if values[t.Name] != v {
				values[t.Name] = v
				stable = false
			}
		}
		if stable {
			outputs = make(map[string]bool, len(m.terms))
			for _, t := range m.terms {
				if outputs[t.Name], err = t.SOP.Eval(values); err != nil {
					return nil, nil, err
				}
			}
			return values, outputs, nil
		}
	}
	return nil, nil, fmt.Errorf("verify: combinatorial feedback does not settle for %v", vars)
}

// TT2 verifies a TT2 file read from r.
func TT2(r io.Reader, p *truthtable.Project) (*Report, error) {
	f, err := tt2.Parse(r)
	if err != nil {
		return nil, err
	}
	m, err := newModel(p)
	if err != nil {
		return nil, err
	}
	for _, t := range m.terms {
		name := t.Name
		if t.Registered {
			name += ".D"
		}
		if !contains(f.Outputs, name) {
			return nil, fmt.Errorf("verify: output %s missing from file", name)
		}
	}

	rep := &Report{Variables: m.free}
	err = truthtable.Assignments(m.free, func(vars map[string]bool) error {
		values, want, err := m.eval(vars)
		if err != nil {
			return err
		}
		rep.Assignments++
		got := f.Eval(values)
		for _, t := range m.terms {
			name := t.Name
			if t.Registered {
				name += ".D"
			}
			if got[name] != want[t.Name] {
				rep.record(Mismatch{Output: t.Name, Inputs: vars, Want: want[t.Name], Got: got[name]})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// JEDEC verifies a JEDEC file for dev read from r. Pins come from the
// project's truth table.
func JEDEC(r io.Reader, dev *device.Device, p *truthtable.Project) (*Report, error) {
	f, err := jedec.Parse(r)
	if err != nil {
		return nil, err
	}
	if f.Fuses.Len() != dev.FuseCount() {
		return nil, fmt.Errorf("verify: file has %d fuses, %s needs %d", f.Fuses.Len(), dev.Name, dev.FuseCount())
	}
	m, err := newModel(p)
	if err != nil {
		return nil, err
	}

	pins := make(map[string]int)
	for _, s := range p.Table.Signals {
		if s.Pin != 0 {
			pins[s.Name] = s.Pin
		}
	}
	for _, t := range m.terms {
		if _, ok := pins[t.Name]; !ok {
			return nil, fmt.Errorf("verify: output %s has no pin", t.Name)
		}
	}
	for _, v := range m.free {
		if _, ok := pins[v]; !ok {
			return nil, fmt.Errorf("verify: signal %s has no pin", v)
		}
	}

	rep := &Report{Variables: m.free}
	err = truthtable.Assignments(m.free, func(vars map[string]bool) error {
		_, want, err := m.eval(vars)
		if err != nil {
			return err
		}
		rep.Assignments++

		inputs := make(map[int]bool)
		state := make(map[int]bool)
		for name, v := range vars {
			pin := pins[name]
			if _, _, isCell := dev.Cell(pin); isCell {
				state[pin] = v
			} else {
				inputs[pin] = v
			}
		}
		got, err := jedec.Simulate(dev, f.Fuses, inputs, state)
		if err != nil {
			return err
		}
		for _, t := range m.terms {
			g := got[pins[t.Name]]
			if g != want[t.Name] {
				rep.record(Mismatch{Output: t.Name, Inputs: vars, Want: want[t.Name], Got: g})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
