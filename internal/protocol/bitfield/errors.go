package bitfield

import (
	"errors"
	"fmt"
)

var (
	ErrOverflow     = errors.New("bitfield: value overflows field width")
	ErrNotFound     = errors.New("bitfield: not found")
	ErrSizeMismatch = errors.New("bitfield: size mismatch")
	ErrInvalidBit   = errors.New("bitfield: invalid bit")
)

// FieldError ties a conversion failure to the field that raised it.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("bitfield: field %s: %v", e.Field, e.Err)
}

func (e FieldError) Unwrap() error {
	return e.Err
}
