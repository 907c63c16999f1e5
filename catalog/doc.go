// Package catalog reads and writes magnitude-ordered binary star catalogs.
//
// A catalog file is laid out as
//
//	[0:124]    free-form text preamble, NUL padded
//	[124:126]  endianness marker 0x4B53 in the file's byte order
//	[126]      format version
//	[127]      record size in bytes (16 or 32)
//	[128]      HTM level the file was indexed at
//	[129:131]  faint magnitude limit, int16, divided by the scale below
//	[131:133]  magnitude scale, uint16
//	[133:137]  trixel count, uint32 (8·4^level)
//	directory  one {id uint32, offset uint64, count uint32} entry per trixel
//	bodies     fixed-size records, grouped by trixel, ascending magnitude
//
// Files written on a machine of the other byte order are detected through
// the marker and decoded with swapped fields.
//
// The paging layer only needs the Reader contract: a trixel's byte offset,
// its record count, positioned reads and record decoding. Cursor turns those
// into a sequential, batched stream of Stars.
package catalog
