package truthtable

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/OpenTraceLab/OpenTracePLD/pkg/expr"
)

// Project is a truth table together with its derived expressions, as stored
// in a project file.
type Project struct {
	Path        string
	Table       *TruthTable
	Expressions ExpressionSet
}

type projectFile struct {
	Name        string        `toml:"name"`
	Clock       *signalEntry  `toml:"clock"`
	Signals     []signalEntry `toml:"signal"`
	Expressions []exprEntry   `toml:"expression"`
}

type signalEntry struct {
	Name string `toml:"name"`
	Pin  int    `toml:"pin"`
	Kind string `toml:"kind"`
}

type exprEntry struct {
	Name string `toml:"name"`
	Expr string `toml:"expr"`
}

// LoadProject reads a TOML project file.
func LoadProject(path string) (*Project, error) {
	var pf projectFile
	if _, err := toml.DecodeFile(path, &pf); err != nil {
		return nil, fmt.Errorf("truthtable: decode %s: %w", path, err)
	}
	p, err := pf.project()
	if err != nil {
		return nil, fmt.Errorf("truthtable: %s: %w", path, err)
	}
	p.Path = path
	if p.Table.Name == "" {
		p.Table.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// ReadProject decodes a TOML project from r.
func ReadProject(r io.Reader) (*Project, error) {
	var pf projectFile
	if _, err := toml.NewDecoder(r).Decode(&pf); err != nil {
		return nil, fmt.Errorf("truthtable: decode project: %w", err)
	}
	return pf.project()
}

// ParseProject decodes a TOML project from a string.
func ParseProject(data string) (*Project, error) {
	return ReadProject(strings.NewReader(data))
}

func (pf *projectFile) project() (*Project, error) {
	table := &TruthTable{Name: pf.Name}
	for _, s := range pf.Signals {
		kind, err := parseKind(s.Kind)
		if err != nil {
			return nil, fmt.Errorf("signal %s: %w", s.Name, err)
		}
		table.Signals = append(table.Signals, Signal{Name: s.Name, Pin: s.Pin, Kind: kind})
	}
	if pf.Clock != nil {
		table.Clock = Signal{Name: pf.Clock.Name, Pin: pf.Clock.Pin, Kind: Input}
		if table.Clock.Name == "" {
			table.Clock.Name = "CLK"
		}
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	parser, err := expr.NewParser()
	if err != nil {
		return nil, err
	}
	var set ExpressionSet
	for i, e := range pf.Expressions {
		if e.Name == "" {
			return nil, fmt.Errorf("expression %d has no name", i)
		}
		parsed, err := parser.ParseString(e.Expr)
		if err != nil {
			return nil, fmt.Errorf("expression %s: %w", e.Name, err)
		}
		set = set.Add(e.Name, parsed)
	}

	return &Project{Table: table, Expressions: set}, nil
}

func parseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "in", "input":
		return Input, nil
	case "out", "output":
		return Output, nil
	default:
		return 0, fmt.Errorf("unknown signal kind %q", s)
	}
}
