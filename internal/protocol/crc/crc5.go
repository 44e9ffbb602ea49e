// Package crc implements the Gen2 reader command checksums.
package crc

import "github.com/danmuck/g2c1/internal/protocol/bitfield"

const (
	// CRC5Width is the register width in bits.
	CRC5Width = 5
	// crc5Poly is x^5 + x^3 + 1 without the implicit x^5 term, Q4..Q0.
	crc5Poly uint8 = 0b01001
	// crc5Preset loads the register with the polynomial, not zero.
	crc5Preset = crc5Poly
	crc5Mask   = 1<<CRC5Width - 1
)

// CRC5 returns the 5-bit checksum, MSB first, of data bits given MSB first.
// The checksum itself must not be part of data.
func CRC5(data bitfield.Bits) bitfield.Bits {
	reg := crc5Preset
	for _, bit := range data {
		// compare leading register bit with the leading input bit
		feedback := (reg>>(CRC5Width-1))&1 != bit&1
		reg = (reg << 1) & crc5Mask
		if feedback {
			reg ^= crc5Poly
		}
	}
	out := make(bitfield.Bits, CRC5Width)
	for i := 0; i < CRC5Width; i++ {
		out[CRC5Width-1-i] = (reg >> uint(i)) & 1
	}
	return out
}

// CheckCRC5 reports whether bits end in a valid CRC5 over the bits preceding it.
func CheckCRC5(bits bitfield.Bits) bool {
	if len(bits) < CRC5Width {
		return false
	}
	for _, b := range CRC5(bits) {
		if b != 0 {
			return false
		}
	}
	return true
}
