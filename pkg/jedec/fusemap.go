package jedec

// FuseMap is a fixed-size array of fuse states. true means blown (logic 1 in
// the file).
type FuseMap struct {
	fuses []bool
}

// NewFuseMap returns a fuse map of n fuses, all intact.
func NewFuseMap(n int) *FuseMap {
	return &FuseMap{fuses: make([]bool, n)}
}

// Len returns the number of fuses.
func (f *FuseMap) Len() int { return len(f.fuses) }

// Get returns fuse i.
func (f *FuseMap) Get(i int) bool { return f.fuses[i] }

// Set sets fuse i.
func (f *FuseMap) Set(i int, v bool) { f.fuses[i] = v }

// SetRange sets n fuses starting at i.
func (f *FuseMap) SetRange(i, n int, v bool) {
	for j := i; j < i+n; j++ {
		f.fuses[j] = v
	}
}

// Checksum is the JEDEC fuse checksum: fuses are packed LSB first into
// bytes, which are summed modulo 2^16.
func (f *FuseMap) Checksum() uint16 {
	var sum uint16
	var b byte
	for i, v := range f.fuses {
		if v {
			b |= 1 << (i % 8)
		}
		if i%8 == 7 {
			sum += uint16(b)
			b = 0
		}
	}
	if len(f.fuses)%8 != 0 {
		sum += uint16(b)
	}
	return sum
}

// Equal reports whether both maps hold the same fuses.
func (f *FuseMap) Equal(o *FuseMap) bool {
	if f.Len() != o.Len() {
		return false
	}
	for i := range f.fuses {
		if f.fuses[i] != o.fuses[i] {
			return false
		}
	}
	return true
}
