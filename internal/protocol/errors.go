package protocol

import (
	"errors"

	"github.com/danmuck/g2c1/internal/protocol/bitfield"
)

var (
	ErrOverflow     = bitfield.ErrOverflow
	ErrNotFound     = bitfield.ErrNotFound
	ErrSizeMismatch = bitfield.ErrSizeMismatch
	ErrInvalidBit   = bitfield.ErrInvalidBit

	ErrChecksum     = errors.New("protocol: checksum mismatch")
	ErrUnknownField = errors.New("protocol: unknown field")
)
