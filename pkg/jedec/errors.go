package jedec

import "fmt"

// FuseMapFillerError reports a design that does not fit the device layout.
type FuseMapFillerError struct {
	Device string
	Output string
	Msg    string
}

func (e *FuseMapFillerError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("jedec: %s: %s", e.Device, e.Msg)
	}
	return fmt.Sprintf("jedec: %s: output %s: %s", e.Device, e.Output, e.Msg)
}
