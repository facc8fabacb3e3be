package jedec

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTracePLD/pkg/device"
)

// Simulate evaluates a programmed device for one clock period.
//
// inputs holds the levels of the dedicated input pins and state the current
// outputs of registered cells, both keyed by pin (missing pins read low).
// The result holds, for every programmed cell, the combinatorial output or,
// for registered cells, the next state latched on the coming clock edge.
func Simulate(dev *device.Device, fm *FuseMap, inputs, state map[int]bool) (map[int]bool, error) {
	if fm.Len() != dev.FuseCount() {
		return nil, fmt.Errorf("jedec: fuse map has %d fuses, %s needs %d", fm.Len(), dev.Name, dev.FuseCount())
	}

	used := make([]bool, len(dev.Cells))
	registered := make([]bool, len(dev.Cells))
	for i := range dev.Cells {
		used[i] = fm.Get(dev.PolarityFuse(i))
		registered[i] = fm.Get(dev.RegisterFuse(i))
	}

	// Combinatorial feedback is resolved by iterating until stable.
	comb := make([]bool, len(dev.Cells))
	source := func(src int) bool {
		if src < len(dev.Inputs) {
			return inputs[dev.Inputs[src]]
		}
		cell := src - len(dev.Inputs)
		if registered[cell] {
			return state[dev.Cells[cell].Pin]
		}
		return comb[cell]
	}

	out := make([]bool, len(dev.Cells))
	for pass := 0; pass <= len(dev.Cells); pass++ {
		for i := range dev.Cells {
			out[i] = used[i] && sumOfRows(dev, fm, i, source)
		}
		stable := true
		for i := range dev.Cells {
			if !registered[i] && comb[i] != out[i] {
				comb[i] = out[i]
				stable = false
			}
		}
		if stable {
			result := make(map[int]bool)
			for i, c := range dev.Cells {
				if used[i] {
					result[c.Pin] = out[i]
				}
			}
			return result, nil
		}
	}
	return nil, fmt.Errorf("jedec: combinatorial feedback on %s does not settle", dev.Name)
}

func sumOfRows(dev *device.Device, fm *FuseMap, cell int, source func(int) bool) bool {
	cols := dev.Columns()
	first := dev.FirstRow(cell)
	for r := first; r < first+dev.Cells[cell].Terms; r++ {
		if rowTrue(fm, r*cols, cols, source) {
			return true
		}
	}
	return false
}

func rowTrue(fm *FuseMap, base, cols int, source func(int) bool) bool {
	for c := 0; c < cols; c++ {
		if fm.Get(base + c) {
			continue // blown, not connected
		}
		v := source(c / 2)
		if c%2 == 1 {
			v = !v
		}
		if !v {
			return false
		}
	}
	return true
}
