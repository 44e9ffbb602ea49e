package bitfield

import (
	"fmt"
	"strings"
)

// Bits is an ordered bit sequence, MSB first. Every element is 0 or 1.
type Bits []uint8

// ParseBits reads a string of '0'/'1' characters. Spaces and underscores are ignored.
func ParseBits(s string) (Bits, error) {
	out := make(Bits, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			out = append(out, 0)
		case '1':
			out = append(out, 1)
		case ' ', '_':
		default:
			return nil, fmt.Errorf("%w: %q at %d", ErrInvalidBit, s[i], i)
		}
	}
	return out, nil
}

// MustParseBits is ParseBits for package-level literals.
func MustParseBits(s string) Bits {
	b, err := ParseBits(s)
	if err != nil {
		panic(err)
	}
	return b
}

// FromUint renders v as a width-bit big-endian sequence.
func FromUint(v uint64, width int) (Bits, error) {
	if width <= 0 || width > 64 {
		return nil, fmt.Errorf("%w: width %d", ErrSizeMismatch, width)
	}
	if width < 64 && v>>uint(width) != 0 {
		return nil, fmt.Errorf("%w: %d does not fit in %d bits", ErrOverflow, v, width)
	}
	out := make(Bits, width)
	for i := 0; i < width; i++ {
		out[width-1-i] = uint8((v >> uint(i)) & 1)
	}
	return out, nil
}

// Uint parses b as an unsigned big-endian integer.
func (b Bits) Uint() (uint64, error) {
	if len(b) > 64 {
		return 0, fmt.Errorf("%w: %d bits exceed 64", ErrOverflow, len(b))
	}
	var v uint64
	for i, bit := range b {
		if bit > 1 {
			return 0, fmt.Errorf("%w: %d at %d", ErrInvalidBit, bit, i)
		}
		v = v<<1 | uint64(bit)
	}
	return v, nil
}

// Equal reports whether b and o hold the same bits in the same order.
func (b Bits) Equal(o Bits) bool {
	if len(b) != len(o) {
		return false
	}
	for i := range b {
		if b[i] != o[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether p is a prefix of b.
func (b Bits) HasPrefix(p Bits) bool {
	return len(b) >= len(p) && b[:len(p)].Equal(p)
}

// Clone returns a copy that does not alias b.
func (b Bits) Clone() Bits {
	if b == nil {
		return nil
	}
	out := make(Bits, len(b))
	copy(out, b)
	return out
}

func (b Bits) String() string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, bit := range b {
		if bit == 0 {
			sb.WriteByte('0')
		} else {
			sb.WriteByte('1')
		}
	}
	return sb.String()
}

// MarshalText encodes b as its '0'/'1' string so JSON and TOML carry bit strings.
func (b Bits) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Bits) UnmarshalText(text []byte) error {
	parsed, err := ParseBits(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
