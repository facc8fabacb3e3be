package pinmap

import "fmt"

// PinMapError reports a pin collision or a mapping the target format needs
// but cannot find.
type PinMapError struct {
	Name string // signal name, may be empty
	Pin  int    // pin number, 0 when unknown
	Msg  string
}

func (e *PinMapError) Error() string {
	switch {
	case e.Name != "" && e.Pin != 0:
		return fmt.Sprintf("pinmap: %s (pin %d): %s", e.Name, e.Pin, e.Msg)
	case e.Name != "":
		return fmt.Sprintf("pinmap: %s: %s", e.Name, e.Msg)
	case e.Pin != 0:
		return fmt.Sprintf("pinmap: pin %d: %s", e.Pin, e.Msg)
	default:
		return "pinmap: " + e.Msg
	}
}
