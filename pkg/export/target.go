package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/OpenTraceLab/OpenTracePLD/pkg/builder"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/device"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/jedec"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/pinmap"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/tt2"
)

// FormatExporter serializes one target format. Each instance owns its pin
// map and builder and serves exactly one export.
type FormatExporter interface {
	PinMapping() *pinmap.PinMap
	Builder() builder.Builder
	// WriteTo renders the complete artifact. Layout errors are returned
	// before anything is written to w.
	WriteTo(w io.Writer) (int64, error)
}

// Options carries per-export metadata into a new FormatExporter.
type Options struct {
	Title string // design title, written into file headers
	Clock string // clock signal name, if the design names one
}

// Target describes an output format. Targets are immutable and may be
// shared between concurrent exports.
type Target struct {
	Name        string
	Suffix      string
	Description string
	New         func(opts Options) FormatExporter
}

// TT2 is the plain-text truth table target.
var TT2 = Target{
	Name:        "tt2",
	Suffix:      "tt2",
	Description: "Berkeley PLA truth table with CUPL pin header (TT2)",
	New: func(opts Options) FormatExporter {
		return tt2.NewExporter(tt2.Config{Title: opts.Title, Module: opts.Title, Clock: opts.Clock})
	},
}

// DeviceTarget returns the JEDEC fuse map target for dev.
func DeviceTarget(dev *device.Device) Target {
	return Target{
		Name:        "jed-" + strings.ToLower(dev.Name),
		Suffix:      "jed",
		Description: fmt.Sprintf("JEDEC fuse map for %s", dev.Name),
		New: func(opts Options) FormatExporter {
			return jedec.NewExporter(dev, opts.Title)
		},
	}
}

// Registry lists the available targets by name.
type Registry struct {
	targets map[string]Target
}

// NewRegistry returns a registry with the TT2 target and one JEDEC target
// per device of catalog.
func NewRegistry(catalog *device.Catalog) *Registry {
	r := &Registry{targets: make(map[string]Target)}
	r.Add(TT2)
	if catalog != nil {
		for _, dev := range catalog.Devices() {
			r.Add(DeviceTarget(dev))
		}
	}
	return r
}

// Add registers t, replacing a target with the same name.
func (r *Registry) Add(t Target) {
	r.targets[strings.ToLower(t.Name)] = t
}

// Lookup finds a target by name (case-insensitive).
func (r *Registry) Lookup(name string) (Target, error) {
	t, ok := r.targets[strings.ToLower(name)]
	if !ok {
		return Target{}, fmt.Errorf("export: unknown target %q", name)
	}
	return t, nil
}

// Targets returns all targets sorted by name.
func (r *Registry) Targets() []Target {
	out := make([]Target, 0, len(r.targets))
	for _, t := range r.targets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
