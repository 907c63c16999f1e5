package catalog

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// Version is the format version written by Builder.
	Version = 1

	preambleSize = 124
	headerSize   = 137
	entrySize    = 16

	endianMarker  = 0x4B53
	swappedMarker = 0x534B
)

// Header holds the fixed part of a catalog file.
type Header struct {
	Preamble    string
	Version     uint8
	RecordSize  uint8
	Level       uint8
	FaintMag    float64
	MagScale    uint16
	TrixelCount uint32

	// Order is the byte order the file was written in.
	Order binary.ByteOrder
	// Swapped is true when Order differs from little endian, the order
	// Builder writes by default.
	Swapped bool
}

// Entry is one directory record.
type Entry struct {
	ID     uint32
	Offset uint64
	Count  uint32
}

func trixelCount(level uint8) uint32 { return 8 << (2 * uint32(level)) }

// DirectorySize returns the byte length of the directory that follows h.
func (h Header) DirectorySize() int64 { return int64(h.TrixelCount) * entrySize }

// BodyOffset returns the offset of the first record.
func (h Header) BodyOffset() int64 { return headerSize + h.DirectorySize() }

func parseHeader(raw []byte) (Header, error) {
	if len(raw) < headerSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, headerSize, len(raw))
	}

	var h Header
	switch binary.LittleEndian.Uint16(raw[preambleSize:]) {
	case endianMarker:
		h.Order = binary.LittleEndian
	case swappedMarker:
		h.Order = binary.BigEndian
		h.Swapped = true
	default:
		return Header{}, ErrBadMagic
	}

	h.Preamble = string(bytes.TrimRight(raw[:preambleSize], "\x00"))
	h.Version = raw[126]
	h.RecordSize = raw[127]
	h.Level = raw[128]
	faint := int16(h.Order.Uint16(raw[129:]))
	h.MagScale = h.Order.Uint16(raw[131:])
	h.TrixelCount = h.Order.Uint32(raw[133:])

	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.MagScale == 0 {
		h.MagScale = 1
	}
	h.FaintMag = float64(faint) / float64(h.MagScale)

	if h.Level > 14 || h.TrixelCount != trixelCount(h.Level) {
		return Header{}, &FormatError{
			Offset: 133,
			cause:  fmt.Errorf("%w: %d trixels for level %d", ErrIDMismatch, h.TrixelCount, h.Level),
		}
	}
	return h, nil
}

func appendHeader(dst []byte, o byteOrder, h Header) []byte {
	pre := make([]byte, preambleSize)
	copy(pre, h.Preamble)
	dst = append(dst, pre...)
	dst = o.AppendUint16(dst, endianMarker)
	dst = append(dst, h.Version, h.RecordSize, h.Level)
	dst = o.AppendUint16(dst, uint16(int16(math.Round(h.FaintMag*float64(h.MagScale)))))
	dst = o.AppendUint16(dst, h.MagScale)
	dst = o.AppendUint32(dst, h.TrixelCount)
	return dst
}

func parseDirectory(raw []byte, h Header, size int64) ([]Entry, error) {
	if int64(len(raw)) < h.DirectorySize() {
		return nil, fmt.Errorf("%w: directory needs %d bytes, have %d", ErrTruncated, h.DirectorySize(), len(raw))
	}

	dir := make([]Entry, h.TrixelCount)
	body := h.BodyOffset()
	for i := range dir {
		p := raw[i*entrySize:]
		e := Entry{
			ID:     h.Order.Uint32(p),
			Offset: h.Order.Uint64(p[4:]),
			Count:  h.Order.Uint32(p[12:]),
		}
		at := int64(headerSize + i*entrySize)
		if e.ID != uint32(i) {
			return nil, &FormatError{Trixel: uint32(i), Offset: at, cause: ErrIDMismatch}
		}
		end := int64(e.Offset) + int64(e.Count)*int64(h.RecordSize)
		if e.Count > 0 && (int64(e.Offset) < body || end > size) {
			return nil, &FormatError{Trixel: uint32(i), Offset: int64(e.Offset), cause: ErrBadOffset}
		}
		dir[i] = e
	}
	return dir, nil
}

func appendEntry(dst []byte, o byteOrder, e Entry) []byte {
	dst = o.AppendUint32(dst, e.ID)
	dst = o.AppendUint64(dst, e.Offset)
	return o.AppendUint32(dst, e.Count)
}
