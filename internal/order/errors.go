package order

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is a malformed request, rejected before any storage access.
	ErrValidation = errors.New("invalid request")
	// ErrInvalidReference is a product that does not exist, is deleted, or is
	// not part of the target order.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrNotFound covers both missing and not-owned orders and returns.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientQuantity is a return larger than the remaining line quantity.
	ErrInsufficientQuantity = errors.New("return quantity exceeds remaining quantity")
	// ErrInvalidTransition is a status update that moves backwards.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// StorageError wraps a failure of the underlying store. The whole operation
// was rolled back when it is returned.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

// storageErr leaves domain errors untouched and wraps everything else.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, domain := range []error{ErrValidation, ErrInvalidReference, ErrNotFound, ErrInsufficientQuantity, ErrInvalidTransition} {
		if errors.Is(err, domain) {
			return err
		}
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
