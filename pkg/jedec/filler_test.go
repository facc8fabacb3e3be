package jedec

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTracePLD/pkg/builder"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/device"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/expr"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/pinmap"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/truthtable"
)

func pla16(t *testing.T) *device.Device {
	t.Helper()
	d, err := device.Builtin().Lookup("PLA16V8")
	require.NoError(t, err)
	return d
}

// newExporter maps pins and feeds exprs (name → expression text, in order).
func newExporter(t *testing.T, dev *device.Device, pins []pinmap.Pin, clock int, exprs ...string) *Exporter {
	t.Helper()
	e := NewExporter(dev, "test")
	require.NoError(t, e.PinMapping().AddAll(pins))
	e.PinMapping().SetClockPin(clock)

	var set truthtable.ExpressionSet
	for i := 0; i < len(exprs); i += 2 {
		set = set.Add(exprs[i], expr.MustParse(exprs[i+1]))
	}
	require.NoError(t, builder.NewEmitter(e.Builder(), nil).Emit(set))
	return e
}

var gatePins = []pinmap.Pin{
	{Name: "A", Number: 2},
	{Name: "B", Number: 3},
	{Name: "C", Number: 4},
	{Name: "D", Number: 5},
	{Name: "Y0", Number: 19},
	{Name: "Y1", Number: 18},
	{Name: "Y2", Number: 17},
}

func TestFillMatchesExpressions(t *testing.T) {
	dev := pla16(t)
	exprs := []string{
		"Y0", "A & B",
		"Y1", "!(A | B) | C & !D",
		"Y2", "(A | B) & (C | D)",
	}
	e := newExporter(t, dev, gatePins, 0, exprs...)

	var buf bytes.Buffer
	_, err := e.WriteTo(&buf)
	require.NoError(t, err)

	// Re-read the artifact and simulate it over the full input space.
	f, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, "PLA16V8", f.Device)

	names := []string{"A", "B", "C", "D"}
	err = truthtable.Assignments(names, func(vars map[string]bool) error {
		inputs := map[int]bool{2: vars["A"], 3: vars["B"], 4: vars["C"], 5: vars["D"]}
		out, err := Simulate(dev, f.Fuses, inputs, nil)
		require.NoError(t, err)
		for i := 0; i < len(exprs); i += 2 {
			want, err := expr.MustParse(exprs[i+1]).Eval(vars)
			require.NoError(t, err)
			pin, _ := e.PinMapping().Pin(exprs[i])
			assert.Equal(t, want, out[pin], "%s for %v", exprs[i], vars)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestFillConstantsAndFeedback(t *testing.T) {
	dev := pla16(t)
	e := newExporter(t, dev, gatePins, 0,
		"Y0", "1",
		"Y1", "0",
		"Y2", "Y0 & A",
	)
	fm, err := e.FuseMap()
	require.NoError(t, err)

	for _, a := range []bool{false, true} {
		out, err := Simulate(dev, fm, map[int]bool{2: a}, nil)
		require.NoError(t, err)
		assert.True(t, out[19])
		assert.False(t, out[18])
		assert.Equal(t, a, out[17])
		_, used := out[12]
		assert.False(t, used)
	}
}

func TestFillRegistered(t *testing.T) {
	dev := pla16(t)
	pins := []pinmap.Pin{{Name: "EN", Number: 2}, {Name: "Q", Number: 19}}
	e := NewExporter(dev, "toggle")
	require.NoError(t, e.PinMapping().AddAll(pins))
	e.PinMapping().SetClockPin(1)
	set := truthtable.ExpressionSet{}.Add("Qn+1", expr.MustParse("Qn & !EN | !Qn & EN"))
	require.NoError(t, builder.NewEmitter(e.Builder(), nil).Emit(set))

	fm, err := e.FuseMap()
	require.NoError(t, err)
	assert.True(t, fm.Get(dev.RegisterFuse(0)))

	for _, q := range []bool{false, true} {
		for _, en := range []bool{false, true} {
			out, err := Simulate(dev, fm, map[int]bool{2: en}, map[int]bool{19: q})
			require.NoError(t, err)
			assert.Equal(t, q != en, out[19])
		}
	}
}

func TestFillErrors(t *testing.T) {
	dev := pla16(t)

	t.Run("capacity", func(t *testing.T) {
		e := newExporter(t, dev, gatePins, 0,
			"Y0", "A&B | A&C | A&D | B&C | B&D | C&D | !A&!B | !C&!D | !A&!D")
		_, err := e.FuseMap()
		var fillErr *FuseMapFillerError
		require.ErrorAs(t, err, &fillErr)
		assert.Equal(t, "Y0", fillErr.Output)
	})

	t.Run("unmapped input", func(t *testing.T) {
		e := newExporter(t, dev, gatePins, 0, "Y0", "A & E")
		_, err := e.FuseMap()
		var pinErr *pinmap.PinMapError
		require.ErrorAs(t, err, &pinErr)
		assert.Equal(t, "E", pinErr.Name)
	})

	t.Run("output on input pin", func(t *testing.T) {
		e := newExporter(t, dev, gatePins, 0, "A", "B")
		_, err := e.FuseMap()
		var pinErr *pinmap.PinMapError
		assert.ErrorAs(t, err, &pinErr)
	})

	t.Run("clock clashes with data pin", func(t *testing.T) {
		e := newExporter(t, dev, gatePins, 2, "Y0", "B")
		_, err := e.FuseMap()
		var pinErr *pinmap.PinMapError
		require.ErrorAs(t, err, &pinErr)
		assert.Equal(t, "A", pinErr.Name)
	})

	t.Run("registered without clock", func(t *testing.T) {
		e := newExporter(t, dev, gatePins, 0, "Y0n+1", "A")
		_, err := e.FuseMap()
		var pinErr *pinmap.PinMapError
		assert.ErrorAs(t, err, &pinErr)
	})

	t.Run("registered on wrong clock pin", func(t *testing.T) {
		e := newExporter(t, dev, gatePins, 11, "Y0n+1", "A")
		_, err := e.FuseMap()
		var pinErr *pinmap.PinMapError
		require.ErrorAs(t, err, &pinErr)
		assert.Equal(t, 11, pinErr.Pin)
	})

	t.Run("cell not registrable", func(t *testing.T) {
		comb := &device.Device{Name: "COMB", Inputs: []int{2}, Cells: []device.Cell{{Pin: 3, Terms: 1}}, ClockPin: 1}
		require.NoError(t, comb.Validate())
		e := newExporter(t, comb, []pinmap.Pin{{Name: "A", Number: 2}, {Name: "Q", Number: 3}}, 1, "Qn+1", "A")
		_, err := e.FuseMap()
		var fillErr *FuseMapFillerError
		assert.ErrorAs(t, err, &fillErr)
	})

	t.Run("device without clock pin", func(t *testing.T) {
		noClock := &device.Device{Name: "NOCLK", Inputs: []int{2}, Cells: []device.Cell{{Pin: 3, Terms: 1, Registrable: true}}}
		e := newExporter(t, noClock, []pinmap.Pin{{Name: "A", Number: 2}, {Name: "Q", Number: 3}}, 1, "Qn+1", "A")
		_, err := e.FuseMap()
		var fillErr *FuseMapFillerError
		require.ErrorAs(t, err, &fillErr)
		assert.Equal(t, "NOCLK", fillErr.Device)
		assert.Equal(t, "Q", fillErr.Output)
		var pinErr *pinmap.PinMapError
		assert.False(t, errors.As(err, &pinErr))
	})
}

func TestExportIsDeterministic(t *testing.T) {
	dev := pla16(t)
	render := func() []byte {
		e := newExporter(t, dev, gatePins, 0, "Y0", "A & !B", "Y1", "C | D")
		var buf bytes.Buffer
		_, err := e.WriteTo(&buf)
		require.NoError(t, err)
		return buf.Bytes()
	}
	assert.Equal(t, render(), render())
}
