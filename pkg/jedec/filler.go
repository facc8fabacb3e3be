package jedec

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTracePLD/pkg/builder"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/device"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/pinmap"
)

// Fill programs the AND/OR array of dev with terms. Pins are looked up in
// pins, which is restricted to the device's input and output pins first.
// Missing or misplaced pins and a clock pin that clashes with a data pin are
// reported as *pinmap.PinMapError; designs that do not fit the cells as
// *FuseMapFillerError.
func Fill(dev *device.Device, pins *pinmap.PinMap, terms []builder.Term) (*FuseMap, error) {
	pins.Restrict(dev.InputPins(), dev.OutputPins())
	if err := pins.CheckClock(); err != nil {
		return nil, err
	}
	if err := checkRegisteredClock(dev, pins, terms); err != nil {
		return nil, err
	}

	fm := NewFuseMap(dev.FuseCount())
	cols := dev.Columns()
	for _, t := range terms {
		outPin, err := pins.OutputPin(t.Name)
		if err != nil {
			return nil, err
		}
		idx, cell, _ := dev.Cell(outPin)

		if t.Registered && !cell.Registrable {
			return nil, &FuseMapFillerError{Device: dev.Name, Output: t.Name,
				Msg: fmt.Sprintf("cell on pin %d cannot be registered", outPin)}
		}
		if len(t.SOP) > cell.Terms {
			return nil, &FuseMapFillerError{Device: dev.Name, Output: t.Name,
				Msg: fmt.Sprintf("needs %d product terms, cell on pin %d has %d", len(t.SOP), outPin, cell.Terms)}
		}

		first := dev.FirstRow(idx)
		for j, product := range t.SOP {
			base := (first + j) * cols
			fm.SetRange(base, cols, true)
			for _, lit := range product {
				inPin, err := pins.InputPin(lit.Name)
				if err != nil {
					return nil, err
				}
				src, _ := dev.Source(inPin)
				col := 2 * src
				if lit.Negated {
					col++
				}
				fm.Set(base+col, false)
			}
		}
		fm.Set(dev.PolarityFuse(idx), true)
		fm.Set(dev.RegisterFuse(idx), t.Registered)
	}
	return fm, nil
}

func checkRegisteredClock(dev *device.Device, pins *pinmap.PinMap, terms []builder.Term) error {
	for _, t := range terms {
		if !t.Registered {
			continue
		}
		if dev.ClockPin == 0 {
			return &FuseMapFillerError{Device: dev.Name, Output: t.Name,
				Msg: fmt.Sprintf("%s has no clock pin for registered outputs", dev.Name)}
		}
		clock := pins.ClockPin()
		if clock == 0 {
			return &pinmap.PinMapError{Name: t.Name, Msg: "registered output needs a clock pin"}
		}
		if clock != dev.ClockPin {
			return &pinmap.PinMapError{Pin: clock,
				Msg: fmt.Sprintf("clock must be on pin %d of %s", dev.ClockPin, dev.Name)}
		}
		return nil
	}
	return nil
}
