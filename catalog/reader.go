package catalog

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hupe1980/starcache/blobstore"
)

// Reader is the view of a catalog the paging layer needs.
type Reader interface {
	// RecordSize returns the length of one record in bytes.
	RecordSize() int
	// Offset returns the byte offset of trixel t's first record.
	Offset(t uint32) (int64, error)
	// RecordCount returns the number of records stored for trixel t.
	RecordCount(t uint32) (uint32, error)
	// ReadAt reads raw records starting at off.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// Decode parses one raw record.
	Decode(raw []byte) Star
}

// IOLimiter throttles catalog reads. *resource.Controller implements it.
type IOLimiter interface {
	AcquireIO(ctx context.Context, bytes int) error
}

type readerOptions struct {
	limiter IOLimiter
	logger  *slog.Logger
}

// ReaderOption configures a BlobReader.
type ReaderOption func(*readerOptions)

// WithIOLimiter throttles record reads through l.
func WithIOLimiter(l IOLimiter) ReaderOption {
	return func(o *readerOptions) {
		o.limiter = l
	}
}

// WithLogger sets the logger used by the reader.
func WithLogger(l *slog.Logger) ReaderOption {
	return func(o *readerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// BlobReader serves a catalog stored in a blob.
// It is safe for concurrent use if the underlying blob is.
type BlobReader struct {
	blob    blobstore.Blob
	header  Header
	dir     []Entry
	codec   Codec
	limiter IOLimiter
	logger  *slog.Logger
}

var _ Reader = (*BlobReader)(nil)

// Open parses the header and directory of the catalog in blob.
// The reader takes ownership of blob and closes it on Close.
func Open(ctx context.Context, blob blobstore.Blob, optFns ...ReaderOption) (*BlobReader, error) {
	opts := readerOptions{logger: slog.New(slog.DiscardHandler)}
	for _, fn := range optFns {
		fn(&opts)
	}

	raw := make([]byte, headerSize)
	if err := readFull(ctx, blob, raw, 0); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h, err := parseHeader(raw)
	if err != nil {
		return nil, err
	}
	codec, err := CodecFor(int(h.RecordSize))
	if err != nil {
		return nil, err
	}

	if pf, ok := blob.(blobstore.Prefetcher); ok {
		if err := pf.Prefetch(ctx, headerSize, h.DirectorySize()); err != nil {
			opts.logger.Warn("directory prefetch failed", "error", err)
		}
	}

	raw = make([]byte, h.DirectorySize())
	if err := readFull(ctx, blob, raw, headerSize); err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	dir, err := parseDirectory(raw, h, blob.Size())
	if err != nil {
		return nil, err
	}

	opts.logger.Debug("catalog opened",
		"level", h.Level, "trixels", h.TrixelCount, "record_size", h.RecordSize,
		"faint_mag", h.FaintMag, "swapped", h.Swapped)

	return &BlobReader{
		blob:    blob,
		header:  h,
		dir:     dir,
		codec:   codec,
		limiter: opts.limiter,
		logger:  opts.logger,
	}, nil
}

func readFull(ctx context.Context, blob blobstore.Blob, p []byte, off int64) error {
	n, err := blob.ReadAt(ctx, p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: wanted %d bytes at %d, got %d", ErrTruncated, len(p), off, n)
	}
	return err
}

// Header returns the parsed file header.
func (r *BlobReader) Header() Header { return r.header }

// Order returns the byte order records are decoded with.
func (r *BlobReader) Order() binary.ByteOrder { return r.header.Order }

// RecordSize implements Reader.
func (r *BlobReader) RecordSize() int { return r.codec.Size() }

// Entry returns the directory entry of trixel t.
func (r *BlobReader) Entry(t uint32) (Entry, error) {
	if int(t) >= len(r.dir) {
		return Entry{}, fmt.Errorf("%w: %d", ErrUnknownTrixel, t)
	}
	return r.dir[t], nil
}

// Offset implements Reader.
func (r *BlobReader) Offset(t uint32) (int64, error) {
	e, err := r.Entry(t)
	if err != nil {
		return 0, err
	}
	return int64(e.Offset), nil
}

// RecordCount implements Reader.
func (r *BlobReader) RecordCount(t uint32) (uint32, error) {
	e, err := r.Entry(t)
	if err != nil {
		return 0, err
	}
	return e.Count, nil
}

// ReadAt implements Reader. A read refused by the IO limiter fails with
// ErrThrottled.
func (r *BlobReader) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if r.limiter != nil {
		if err := r.limiter.AcquireIO(ctx, len(p)); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrThrottled, err)
		}
	}
	return r.blob.ReadAt(ctx, p, off)
}

// Decode implements Reader.
func (r *BlobReader) Decode(raw []byte) Star {
	return r.codec.Decode(r.header.Order, raw)
}

// Close releases the underlying blob.
func (r *BlobReader) Close() error {
	return r.blob.Close()
}
