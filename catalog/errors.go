package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrBadMagic is returned when the endianness marker is not recognized.
	ErrBadMagic = errors.New("catalog: bad endianness marker")
	// ErrTruncated is returned when the file ends before a declared structure.
	ErrTruncated = errors.New("catalog: truncated")
	// ErrIDMismatch is returned when a directory entry is out of sequence.
	ErrIDMismatch = errors.New("catalog: directory id mismatch")
	// ErrBadOffset is returned when a trixel's records fall outside the file.
	ErrBadOffset = errors.New("catalog: record offset out of range")
	// ErrUnsupportedRecordSize is returned for record sizes without a codec.
	ErrUnsupportedRecordSize = errors.New("catalog: unsupported record size")
	// ErrUnsupportedVersion is returned for unknown format versions.
	ErrUnsupportedVersion = errors.New("catalog: unsupported version")
	// ErrUnknownTrixel is returned for trixel ids beyond the directory.
	ErrUnknownTrixel = errors.New("catalog: unknown trixel")
	// ErrThrottled is returned when the IO limiter refuses a read. It is
	// transient: the same read may succeed later.
	ErrThrottled = errors.New("catalog: read throttled")
)

// FormatError reports a malformed structure at a known position.
//
// The sentinel describing the problem can be matched with errors.Is.
type FormatError struct {
	Trixel uint32
	Offset int64
	cause  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v (trixel %d, offset %d)", e.cause, e.Trixel, e.Offset)
}

func (e *FormatError) Unwrap() error { return e.cause }
