package jedec

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	stx = 0x02
	etx = 0x03
)

// File is the content of a JEDEC fuse map file.
type File struct {
	Header   string   // design specification field
	Device   string   // from the "N DEVICE" note
	Notes    []string // other N fields, without the leading N
	Pins     int      // QP, 0 when absent
	Security bool     // G
	RowWidth int      // fuses per L field when writing, 0 means 32
	Fuses    *FuseMap
}

// Encode writes f in JEDEC format. The output depends only on f, so equal
// files encode to identical bytes.
func Encode(w io.Writer, f *File) (int64, error) {
	if f.Fuses == nil {
		return 0, fmt.Errorf("jedec: file has no fuses")
	}
	width := f.RowWidth
	if width <= 0 {
		width = 32
	}

	var buf bytes.Buffer
	buf.WriteByte(stx)
	buf.WriteString(strings.ReplaceAll(f.Header, "*", " "))
	buf.WriteString("*\n")
	if f.Device != "" {
		fmt.Fprintf(&buf, "N DEVICE %s*\n", f.Device)
	}
	for _, n := range f.Notes {
		fmt.Fprintf(&buf, "N %s*\n", strings.ReplaceAll(n, "*", " "))
	}
	if f.Pins > 0 {
		fmt.Fprintf(&buf, "QP%d*\n", f.Pins)
	}
	fmt.Fprintf(&buf, "QF%d*\n", f.Fuses.Len())
	if f.Security {
		buf.WriteString("G1*\n")
	} else {
		buf.WriteString("G0*\n")
	}
	buf.WriteString("F0*\n")

	for addr := 0; addr < f.Fuses.Len(); addr += width {
		n := min(width, f.Fuses.Len()-addr)
		fmt.Fprintf(&buf, "L%05d ", addr)
		for i := addr; i < addr+n; i++ {
			if f.Fuses.Get(i) {
				buf.WriteByte('1')
			} else {
				buf.WriteByte('0')
			}
		}
		buf.WriteString("*\n")
	}
	fmt.Fprintf(&buf, "C%04X*\n", f.Fuses.Checksum())
	buf.WriteByte(etx)

	var sum uint16
	for _, b := range buf.Bytes() {
		sum += uint16(b)
	}
	fmt.Fprintf(&buf, "%04X\n", sum)

	return buf.WriteTo(w)
}

// Parse reads a JEDEC file and verifies the fuse and transmission checksums.
// A transmission checksum of 0000 is accepted as "not computed".
func Parse(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("jedec: read: %w", err)
	}

	start := bytes.IndexByte(data, stx)
	if start < 0 {
		return nil, fmt.Errorf("jedec: missing STX")
	}
	end := bytes.IndexByte(data[start:], etx)
	if end < 0 {
		return nil, fmt.Errorf("jedec: missing ETX")
	}
	end += start

	if err := checkTransmission(data[start:end+1], data[end+1:]); err != nil {
		return nil, err
	}

	fields := strings.Split(string(data[start+1:end]), "*")
	f := &File{Header: strings.TrimSpace(fields[0])}
	p := &fileParser{file: f, fuseCount: -1}
	for _, field := range fields[1:] {
		if err := p.field(strings.TrimSpace(field)); err != nil {
			return nil, err
		}
	}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return f, nil
}

func checkTransmission(framed, trailer []byte) error {
	text := strings.TrimSpace(string(trailer))
	if len(text) < 4 {
		return fmt.Errorf("jedec: missing transmission checksum")
	}
	want, err := strconv.ParseUint(text[:4], 16, 16)
	if err != nil {
		return fmt.Errorf("jedec: bad transmission checksum %q: %w", text[:4], err)
	}
	if want == 0 {
		return nil
	}
	var sum uint16
	for _, b := range framed {
		sum += uint16(b)
	}
	if uint16(want) != sum {
		return fmt.Errorf("jedec: transmission checksum %04X, computed %04X", want, sum)
	}
	return nil
}

type fileParser struct {
	file       *File
	fuseCount  int
	defaultSet bool
	defaultVal bool
	checksum   uint16
	hasSum     bool
}

func (p *fileParser) field(field string) error {
	if field == "" {
		return nil
	}
	switch field[0] {
	case 'N':
		note := strings.TrimSpace(field[1:])
		if dev, ok := strings.CutPrefix(note, "DEVICE "); ok {
			p.file.Device = strings.TrimSpace(dev)
		} else {
			p.file.Notes = append(p.file.Notes, note)
		}
	case 'Q':
		return p.quantity(field)
	case 'G':
		p.file.Security = strings.TrimSpace(field[1:]) == "1"
	case 'F':
		if p.file.Fuses != nil {
			return fmt.Errorf("jedec: F field after fuse data")
		}
		p.defaultSet = true
		p.defaultVal = strings.TrimSpace(field[1:]) == "1"
	case 'L':
		return p.fuses(field[1:])
	case 'C':
		v, err := strconv.ParseUint(strings.TrimSpace(field[1:]), 16, 16)
		if err != nil {
			return fmt.Errorf("jedec: bad fuse checksum %q: %w", field, err)
		}
		p.checksum = uint16(v)
		p.hasSum = true
	}
	// Other fields (V test vectors, X, J, E, U ...) are not needed.
	return nil
}

func (p *fileParser) quantity(field string) error {
	if len(field) < 2 {
		return fmt.Errorf("jedec: bad Q field %q", field)
	}
	n, err := strconv.Atoi(strings.TrimSpace(field[2:]))
	switch field[1] {
	case 'F':
		if err != nil || n <= 0 {
			return fmt.Errorf("jedec: bad fuse count %q", field)
		}
		p.fuseCount = n
	case 'P':
		if err != nil {
			return fmt.Errorf("jedec: bad pin count %q", field)
		}
		p.file.Pins = n
	}
	return nil
}

func (p *fileParser) ensureFuses() error {
	if p.file.Fuses != nil {
		return nil
	}
	if p.fuseCount < 0 {
		return fmt.Errorf("jedec: fuse data without QF field")
	}
	p.file.Fuses = NewFuseMap(p.fuseCount)
	if p.defaultVal {
		p.file.Fuses.SetRange(0, p.fuseCount, true)
	}
	return nil
}

func (p *fileParser) fuses(body string) error {
	if err := p.ensureFuses(); err != nil {
		return err
	}
	parts := strings.Fields(body)
	if len(parts) == 0 {
		return fmt.Errorf("jedec: empty L field")
	}
	addr, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("jedec: bad fuse address %q", parts[0])
	}
	bits := strings.Join(parts[1:], "")
	if addr < 0 || addr+len(bits) > p.file.Fuses.Len() {
		return fmt.Errorf("jedec: fuses %d..%d out of range", addr, addr+len(bits)-1)
	}
	if p.file.RowWidth == 0 {
		p.file.RowWidth = len(bits)
	}
	for i, c := range bits {
		switch c {
		case '0':
			p.file.Fuses.Set(addr+i, false)
		case '1':
			p.file.Fuses.Set(addr+i, true)
		default:
			return fmt.Errorf("jedec: bad fuse value %q at %d", c, addr+i)
		}
	}
	return nil
}

func (p *fileParser) finish() error {
	if p.fuseCount < 0 {
		return fmt.Errorf("jedec: missing QF field")
	}
	if !p.defaultSet && p.file.Fuses == nil {
		return fmt.Errorf("jedec: no fuse data and no default")
	}
	if err := p.ensureFuses(); err != nil {
		return err
	}
	if p.hasSum {
		if got := p.file.Fuses.Checksum(); got != p.checksum {
			return fmt.Errorf("jedec: fuse checksum %04X, computed %04X", p.checksum, got)
		}
	}
	return nil
}
