package tt2

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// File is a parsed TT2 file.
type File struct {
	Header  map[string]string // "#$" fields other than PINS, e.g. "TOOL"
	Pins    map[string]int
	Inputs  []string
	Outputs []string
	Rows    []Row
}

// Row is one cube: an input pattern over '0', '1', '-' and the outputs it
// drives ('1') or leaves alone ('0', '-', '~').
type Row struct {
	In  string
	Out string
}

// Parse reads a TT2 file and checks that the row count and widths match the
// declared dimensions.
func Parse(r io.Reader) (*File, error) {
	f := &File{Header: make(map[string]string), Pins: make(map[string]int)}
	declared := map[string]int{"i": -1, "o": -1, "p": -1}

	sc := bufio.NewScanner(r)
	lineNo := 0
	ended := false
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#$"):
			if err := f.header(strings.TrimSpace(line[2:])); err != nil {
				return nil, fmt.Errorf("tt2: line %d: %w", lineNo, err)
			}
		case strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "."):
			fields := strings.Fields(line[1:])
			if len(fields) == 0 {
				return nil, fmt.Errorf("tt2: line %d: empty directive", lineNo)
			}
			switch fields[0] {
			case "i", "o", "p":
				if len(fields) != 2 {
					return nil, fmt.Errorf("tt2: line %d: .%s needs one value", lineNo, fields[0])
				}
				n, err := strconv.Atoi(fields[1])
				if err != nil || n < 0 {
					return nil, fmt.Errorf("tt2: line %d: bad .%s value %q", lineNo, fields[0], fields[1])
				}
				declared[fields[0]] = n
			case "ilb":
				f.Inputs = fields[1:]
			case "ob":
				f.Outputs = fields[1:]
			case "e", "end":
				ended = true
			}
			// .type, .phase and others do not change the cube semantics here.
		default:
			if ended {
				continue
			}
			fields := strings.Fields(line)
			if len(fields) != 2 {
				return nil, fmt.Errorf("tt2: line %d: expected input and output cube", lineNo)
			}
			f.Rows = append(f.Rows, Row{In: fields[0], Out: fields[1]})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("tt2: read: %w", err)
	}
	if err := f.check(declared); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) header(field string) error {
	key, value, _ := strings.Cut(field, " ")
	value = strings.TrimSpace(value)
	if key != "PINS" {
		f.Header[key] = value
		return nil
	}
	parts := strings.Fields(value)
	if len(parts) == 0 {
		return fmt.Errorf("empty PINS")
	}
	count, err := strconv.Atoi(parts[0])
	if err != nil || count != len(parts)-1 {
		return fmt.Errorf("PINS count %q does not match %d entries", parts[0], len(parts)-1)
	}
	for _, p := range parts[1:] {
		name, num, ok := strings.Cut(p, ":")
		n, err := strconv.Atoi(num)
		if !ok || err != nil {
			return fmt.Errorf("bad pin %q", p)
		}
		f.Pins[name] = n
	}
	return nil
}

func (f *File) check(declared map[string]int) error {
	if n := declared["i"]; n >= 0 && n != len(f.Inputs) {
		return fmt.Errorf("tt2: .i %d but %d input labels", n, len(f.Inputs))
	}
	if n := declared["o"]; n >= 0 && n != len(f.Outputs) {
		return fmt.Errorf("tt2: .o %d but %d output labels", n, len(f.Outputs))
	}
	if n := declared["p"]; n >= 0 && n != len(f.Rows) {
		return fmt.Errorf("tt2: .p %d but %d rows", n, len(f.Rows))
	}
	for i, r := range f.Rows {
		if len(r.In) != len(f.Inputs) || len(r.Out) != len(f.Outputs) {
			return fmt.Errorf("tt2: row %d has width %d/%d, want %d/%d",
				i+1, len(r.In), len(r.Out), len(f.Inputs), len(f.Outputs))
		}
		if strings.Trim(r.In, "01-") != "" {
			return fmt.Errorf("tt2: row %d: bad input cube %q", i+1, r.In)
		}
	}
	return nil
}

// Eval returns the value of every output for the given input assignment.
// Inputs missing from vars read as 0.
func (f *File) Eval(vars map[string]bool) map[string]bool {
	out := make(map[string]bool, len(f.Outputs))
	for _, name := range f.Outputs {
		out[name] = false
	}
	for _, r := range f.Rows {
		if !f.matches(r.In, vars) {
			continue
		}
		for j, c := range r.Out {
			if c == '1' {
				out[f.Outputs[j]] = true
			}
		}
	}
	return out
}

func (f *File) matches(cube string, vars map[string]bool) bool {
	for i, c := range cube {
		v := vars[f.Inputs[i]]
		if (c == '1' && !v) || (c == '0' && v) {
			return false
		}
	}
	return true
}
