package formats

import (
	"errors"
	"fmt"
)

// Decode errors. Every parser error wraps exactly one of these.
var (
	ErrMalformedContainer = errors.New("malformed container")
	ErrUnsupportedEndian  = fmt.Errorf("%w: little-endian resources are not supported", ErrMalformedContainer)
	ErrUnexpectedBlock    = errors.New("unexpected block")
	ErrCorruptRecord      = errors.New("corrupt record")
	ErrMultipleRoots      = errors.New("multiple root nodes")
)

// corrupt wraps a reader or builder failure as ErrCorruptRecord. Errors that
// already carry ErrCorruptRecord are returned as is.
func corrupt(err error) error {
	if err == nil || errors.Is(err, ErrCorruptRecord) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
}
