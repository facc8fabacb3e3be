package device

import (
	"fmt"
	"sort"
	"strings"
)

// Cell is an output macrocell: a pin driven by a block of product terms
// OR-ed together, optionally through a D flip-flop.
type Cell struct {
	Pin         int  `toml:"pin"`
	Terms       int  `toml:"terms"`
	Registrable bool `toml:"registrable"`
}

// Device describes a PAL-style programmable AND/OR array.
//
// The AND array has one column pair (true, complement) per source. Sources
// are the dedicated input pins followed by the feedback of every cell, in
// declaration order. Rows are grouped by cell, Cell.Terms rows each.
type Device struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Package     int    `toml:"package_pins"`
	ClockPin    int    `toml:"clock_pin"`
	Inputs      []int  `toml:"inputs"`
	Cells       []Cell `toml:"cell"`
}

// InputPins returns the dedicated input pins.
func (d *Device) InputPins() []int {
	return append([]int(nil), d.Inputs...)
}

// OutputPins returns the pins of every cell in declaration order.
func (d *Device) OutputPins() []int {
	pins := make([]int, len(d.Cells))
	for i, c := range d.Cells {
		pins[i] = c.Pin
	}
	return pins
}

// Cell returns the index and description of the cell driving pin.
func (d *Device) Cell(pin int) (int, Cell, bool) {
	for i, c := range d.Cells {
		if c.Pin == pin {
			return i, c, true
		}
	}
	return -1, Cell{}, false
}

// Sources returns the number of AND array sources (inputs plus feedback).
func (d *Device) Sources() int {
	return len(d.Inputs) + len(d.Cells)
}

// Source returns the source index of pin, or false if pin does not feed the
// AND array.
func (d *Device) Source(pin int) (int, bool) {
	for i, p := range d.Inputs {
		if p == pin {
			return i, true
		}
	}
	for i, c := range d.Cells {
		if c.Pin == pin {
			return len(d.Inputs) + i, true
		}
	}
	return -1, false
}

// Columns returns the width of one AND array row in fuses.
func (d *Device) Columns() int {
	return 2 * d.Sources()
}

// Rows returns the total number of product term rows.
func (d *Device) Rows() int {
	n := 0
	for _, c := range d.Cells {
		n += c.Terms
	}
	return n
}

// FirstRow returns the first AND array row of cell i.
func (d *Device) FirstRow(i int) int {
	row := 0
	for _, c := range d.Cells[:i] {
		row += c.Terms
	}
	return row
}

// ArrayFuses is the number of fuses in the AND array.
func (d *Device) ArrayFuses() int {
	return d.Rows() * d.Columns()
}

// PolarityFuse returns the fuse that makes cell i active high.
func (d *Device) PolarityFuse(i int) int {
	return d.ArrayFuses() + 2*i
}

// RegisterFuse returns the fuse that routes cell i through its flip-flop.
func (d *Device) RegisterFuse(i int) int {
	return d.ArrayFuses() + 2*i + 1
}

// FuseCount is the total number of fuses of the device.
func (d *Device) FuseCount() int {
	return d.ArrayFuses() + 2*len(d.Cells)
}

// Validate checks the descriptor for overlapping pins and empty cells.
func (d *Device) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("device: missing name")
	}
	if len(d.Cells) == 0 {
		return fmt.Errorf("device %s: no output cells", d.Name)
	}
	used := make(map[int]string)
	claim := func(pin int, role string) error {
		if pin <= 0 || (d.Package > 0 && pin > d.Package) {
			return fmt.Errorf("device %s: %s pin %d out of range", d.Name, role, pin)
		}
		if prev, ok := used[pin]; ok {
			return fmt.Errorf("device %s: pin %d used as %s and %s", d.Name, pin, prev, role)
		}
		used[pin] = role
		return nil
	}
	if d.ClockPin != 0 {
		if err := claim(d.ClockPin, "clock"); err != nil {
			return err
		}
	}
	for _, p := range d.Inputs {
		if err := claim(p, "input"); err != nil {
			return err
		}
	}
	for _, c := range d.Cells {
		if err := claim(c.Pin, "output"); err != nil {
			return err
		}
		if c.Terms <= 0 {
			return fmt.Errorf("device %s: cell on pin %d has no product terms", d.Name, c.Pin)
		}
		if c.Registrable && d.ClockPin == 0 {
			return fmt.Errorf("device %s: registered cell on pin %d but no clock pin", d.Name, c.Pin)
		}
	}
	return nil
}

// String returns a one-line summary.
func (d *Device) String() string {
	return fmt.Sprintf("%s: %d inputs, %d outputs, %d product terms, %d fuses",
		d.Name, len(d.Inputs), len(d.Cells), d.Rows(), d.FuseCount())
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func sortedNames(m map[string]*Device) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
