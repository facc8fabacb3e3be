package builder

import "fmt"

// FormatterError reports a structure the target builder cannot represent,
// such as an invalid signal identifier or an output defined twice.
type FormatterError struct {
	Name string
	Msg  string
}

func (e *FormatterError) Error() string {
	if e.Name == "" {
		return "builder: " + e.Msg
	}
	return fmt.Sprintf("builder: %q: %s", e.Name, e.Msg)
}
