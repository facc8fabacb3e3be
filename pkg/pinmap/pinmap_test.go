package pinmap

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAllDisjointPins(t *testing.T) {
	for n := 1; n <= 16; n++ {
		pins := make([]Pin, 0, n)
		for i := 0; i < n; i++ {
			pins = append(pins, Pin{Name: fmt.Sprintf("S%d", i), Number: 2*i + 1})
		}
		// Pin-less signals never collide.
		pins = append(pins, Pin{Name: "NOPIN_A"}, Pin{Name: "NOPIN_B"})

		m := New()
		require.NoError(t, m.AddAll(pins))
		assert.Equal(t, len(pins), m.Len())

		names := m.Names()
		for i, p := range pins {
			assert.Equal(t, p.Name, names[i])
			got, ok := m.Pin(p.Name)
			assert.Equal(t, p.Number != 0, ok)
			assert.Equal(t, p.Number, got)
		}
	}
}

func TestAddAllCollision(t *testing.T) {
	m := New()
	err := m.AddAll([]Pin{
		{Name: "A", Number: 2},
		{Name: "B", Number: 2},
		{Name: "OUT", Number: 3},
	})
	require.Error(t, err)

	var pinErr *PinMapError
	require.True(t, errors.As(err, &pinErr))
	assert.Equal(t, "B", pinErr.Name)
	assert.Equal(t, 2, pinErr.Pin)
	assert.Contains(t, err.Error(), "pin already used by A")
}

func TestAddSameSignalTwice(t *testing.T) {
	m := New()
	require.NoError(t, m.Add(Pin{Name: "A", Number: 4}))
	require.NoError(t, m.Add(Pin{Name: "A", Number: 4}))
	require.NoError(t, m.Add(Pin{Name: "A"}))
	assert.Equal(t, 1, m.Len())

	err := m.Add(Pin{Name: "A", Number: 5})
	var pinErr *PinMapError
	require.ErrorAs(t, err, &pinErr)
	assert.Equal(t, "A", pinErr.Name)
}

func TestAddLatePinNumber(t *testing.T) {
	m := New()
	require.NoError(t, m.Add(Pin{Name: "A"}))
	require.NoError(t, m.Add(Pin{Name: "A", Number: 7}))
	pin, ok := m.Pin("A")
	assert.True(t, ok)
	assert.Equal(t, 7, pin)
	assert.Equal(t, []string{"A"}, m.Names())
}

func TestClockPinDeferredCollision(t *testing.T) {
	m := New()
	require.NoError(t, m.AddAll([]Pin{{Name: "A", Number: 1}, {Name: "B", Number: 2}}))

	// Recording never fails, even on a data pin.
	m.SetClockPin(1)
	assert.Equal(t, 1, m.ClockPin())

	var pinErr *PinMapError
	require.ErrorAs(t, m.CheckClock(), &pinErr)
	assert.Equal(t, "A", pinErr.Name)

	m.SetClockPin(9)
	assert.NoError(t, m.CheckClock())

	m.SetClockPin(0)
	assert.NoError(t, m.CheckClock())
}

func TestRestrict(t *testing.T) {
	m := New()
	require.NoError(t, m.AddAll([]Pin{
		{Name: "A", Number: 2},
		{Name: "Q", Number: 12},
		{Name: "X", Number: 30},
		{Name: "NP"},
	}))
	m.Restrict([]int{2, 3}, []int{12, 13})

	pin, err := m.InputPin("A")
	require.NoError(t, err)
	assert.Equal(t, 2, pin)

	// Outputs feed back into the array.
	pin, err = m.InputPin("Q")
	require.NoError(t, err)
	assert.Equal(t, 12, pin)

	_, err = m.OutputPin("A")
	assert.Error(t, err)
	_, err = m.InputPin("X")
	assert.Error(t, err)
	_, err = m.OutputPin("NP")
	assert.Error(t, err)
	_, err = m.InputPin("MISSING")
	assert.Error(t, err)
}

func TestAccessorsAreSnapshots(t *testing.T) {
	m := New()
	require.NoError(t, m.AddAll([]Pin{{Name: "A", Number: 1}, {Name: "B", Number: 2}}))

	pins := m.Pins()
	pins[0].Number = 99
	names := m.Names()
	names[0] = "Z"

	got, _ := m.Pin("A")
	assert.Equal(t, 1, got)
	assert.Equal(t, []string{"A", "B"}, m.Names())

	name, ok := m.Name(2)
	assert.True(t, ok)
	assert.Equal(t, "B", name)
	_, ok = m.Name(3)
	assert.False(t, ok)
}

func TestString(t *testing.T) {
	m := New()
	require.NoError(t, m.AddAll([]Pin{{Name: "OUT", Number: 3}, {Name: "A", Number: 1}, {Name: "B"}}))
	m.SetClockPin(5)
	assert.Equal(t, "A:1 OUT:3 clock:5", m.String())
}

func TestAddRejectsInvalidPins(t *testing.T) {
	m := New()
	assert.Error(t, m.Add(Pin{Number: 3}))
	assert.Error(t, m.Add(Pin{Name: "A", Number: -1}))
	assert.Equal(t, 0, m.Len())
}
