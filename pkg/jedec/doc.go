// Package jedec writes and reads JEDEC (JESD3) fuse map files for the AND/OR
// array devices described by package device.
//
// # File layout
//
// A file is framed by STX (0x02) and ETX (0x03). Everything up to the first
// '*' is the design specification field. Fields follow, each terminated by
// '*':
//
//	N DEVICE PLA16V8*    note naming the device
//	QP20*                package pin count
//	QF2064*              fuse count
//	G0*                  security fuse
//	F0*                  default state of fuses not listed
//	L00000 0101...*      fuse values starting at the given address
//	C1A2B*               fuse checksum
//
// The four hex digits after ETX are the transmission checksum: the 16-bit
// sum of every byte from STX to ETX inclusive.
//
// # Fuse layout
//
// The AND array comes first, one L field per row. Each row has a true and a
// complement column per source (dedicated inputs, then cell feedback). A 0
// fuse is intact and connects the column to the product term, so an
// untouched row (all 0) contains every literal with both polarities and is
// always false. A used row starts as all 1 and clears the fuses of the
// literals it needs; a row with no intact fuse is always true.
//
// After the array each cell has two fuses: polarity (1 = active high) and
// register (1 = output taken from the D flip-flop clocked by the device
// clock pin).
package jedec
