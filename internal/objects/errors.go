package objects

import "errors"

var (
	// ErrNotFound is returned when an object file is absent from the store.
	ErrNotFound = errors.New("object not found")

	// ErrInvalidHash is returned for identifiers that are not 40 hex characters.
	ErrInvalidHash = errors.New("invalid object hash")

	// ErrCorruptObject is returned when an encoded record has a bad header,
	// length, kind or payload.
	ErrCorruptObject = errors.New("corrupt object")
)
