package alloc

import "errors"

var (
	// ErrReserve indicates that the backing storage for an arena could not
	// be reserved. The heap is unusable.
	ErrReserve = errors.New("alloc: cannot reserve arena")

	// ErrZeroSize indicates a request for zero (or fewer) bytes.
	ErrZeroSize = errors.New("alloc: zero size request")

	// ErrOutOfCapacity indicates that the request exceeds the free bytes of
	// all pools together. The heap is left untouched.
	ErrOutOfCapacity = errors.New("alloc: request exceeds free capacity")

	// ErrExhausted indicates that no contiguous run was found, even after
	// the quantum caches were dissolved.
	ErrExhausted = errors.New("alloc: no contiguous run large enough")
)
