package device

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
)

// Catalog holds device descriptors by lower-case name.
type Catalog struct {
	mu      sync.RWMutex
	devices map[string]*Device
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{devices: make(map[string]*Device)}
}

// Builtin returns a catalog preloaded with the built-in devices.
func Builtin() *Catalog {
	c := NewCatalog()
	for _, d := range builtins() {
		if err := c.Add(d); err != nil {
			panic(err)
		}
	}
	return c
}

// Add validates and registers a device, replacing one with the same name.
func (c *Catalog) Add(d *Device) error {
	if err := d.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.devices[normalizeName(d.Name)] = d
	return nil
}

// Lookup returns the device with the given name (case-insensitive).
func (c *Catalog) Lookup(name string) (*Device, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if d, ok := c.devices[normalizeName(name)]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("device: unknown device %q", name)
}

// Devices returns all devices sorted by name.
func (c *Catalog) Devices() []*Device {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Device, 0, len(c.devices))
	for _, name := range sortedNames(c.devices) {
		out = append(out, c.devices[name])
	}
	return out
}

type deviceFile struct {
	Devices []*Device `toml:"device"`
}

// LoadFile reads one TOML file holding one or more [[device]] tables.
func (c *Catalog) LoadFile(path string) error {
	var f deviceFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return fmt.Errorf("device: decode %s: %w", path, err)
	}
	if len(f.Devices) == 0 {
		return fmt.Errorf("device: %s defines no devices", path)
	}
	for _, d := range f.Devices {
		if err := c.Add(d); err != nil {
			return fmt.Errorf("device: %s: %w", path, err)
		}
	}
	return nil
}

// LoadDir recursively loads every *.toml file below root.
func (c *Catalog) LoadDir(root string) error {
	matches, err := doublestar.Glob(os.DirFS(root), "**/*.toml")
	if err != nil {
		return fmt.Errorf("device: scan %s: %w", root, err)
	}
	for _, m := range matches {
		if err := c.LoadFile(filepath.Join(root, filepath.FromSlash(m))); err != nil {
			return err
		}
	}
	return nil
}

func builtins() []*Device {
	pla16 := &Device{
		Name:        "PLA16V8",
		Description: "20-pin AND/OR array, 8 inputs, 8 registrable outputs with 8 terms each",
		Package:     20,
		ClockPin:    1,
		Inputs:      []int{2, 3, 4, 5, 6, 7, 8, 9},
	}
	for pin := 19; pin >= 12; pin-- {
		pla16.Cells = append(pla16.Cells, Cell{Pin: pin, Terms: 8, Registrable: true})
	}

	pla22 := &Device{
		Name:        "PLA22V10",
		Description: "24-pin AND/OR array, 11 inputs, 10 registrable outputs with 8 to 16 terms",
		Package:     24,
		ClockPin:    1,
		Inputs:      []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 13},
	}
	terms := []int{8, 10, 12, 14, 16, 16, 14, 12, 10, 8}
	for i, pin := 0, 23; pin >= 14; i, pin = i+1, pin-1 {
		pla22.Cells = append(pla22.Cells, Cell{Pin: pin, Terms: terms[i], Registrable: true})
	}

	return []*Device{pla16, pla22}
}
