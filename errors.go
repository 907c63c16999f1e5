package starcache

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on a closed Field.
	ErrClosed = errors.New("starcache: field closed")
	// ErrDrawInProgress is returned when a draw is started from inside
	// another draw on the same Field.
	ErrDrawInProgress = errors.New("starcache: draw already in progress")
	// ErrIntegrity is returned by VerifyIntegrity when a chain or the recency
	// list is inconsistent.
	ErrIntegrity = errors.New("starcache: integrity violation")
)

// IntegrityError describes one inconsistency found by VerifyIntegrity.
type IntegrityError struct {
	Trixel uint32
	Block  int
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("trixel %d block %d: %s", e.Trixel, e.Block, e.Reason)
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }
