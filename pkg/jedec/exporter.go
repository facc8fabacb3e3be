package jedec

import (
	"fmt"
	"io"

	"github.com/OpenTraceLab/OpenTracePLD/pkg/builder"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/device"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/pinmap"
)

// Exporter turns collected expressions into a fuse map for one device.
// An Exporter serves a single export and must not be shared.
type Exporter struct {
	dev       *device.Device
	pins      *pinmap.PinMap
	collector *builder.Collector
	title     string
}

// NewExporter returns an exporter for dev. title goes into the design
// specification field of the file.
func NewExporter(dev *device.Device, title string) *Exporter {
	return &Exporter{
		dev:       dev,
		pins:      pinmap.New(),
		collector: builder.NewCollector(),
		title:     title,
	}
}

// PinMapping returns the pin map filled by the caller before WriteTo.
func (e *Exporter) PinMapping() *pinmap.PinMap { return e.pins }

// Builder returns the builder receiving the output expressions.
func (e *Exporter) Builder() builder.Builder { return e.collector }

// Device returns the target device.
func (e *Exporter) Device() *device.Device { return e.dev }

// FuseMap fills and returns the fuse map without encoding it.
func (e *Exporter) FuseMap() (*FuseMap, error) {
	return Fill(e.dev, e.pins, e.collector.Terms())
}

// WriteTo fills the fuse map and writes the JEDEC file to w.
func (e *Exporter) WriteTo(w io.Writer) (int64, error) {
	fm, err := e.FuseMap()
	if err != nil {
		return 0, err
	}

	header := e.title
	if header == "" {
		header = "pldexport"
	}
	f := &File{
		Header:   header,
		Device:   e.dev.Name,
		Notes:    []string{fmt.Sprintf("PINS %s", e.pins)},
		Pins:     e.dev.Package,
		RowWidth: e.dev.Columns(),
		Fuses:    fm,
	}
	return Encode(w, f)
}
