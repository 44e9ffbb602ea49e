// Package protocol owns the Gen2 reader command catalog.
//
// Ownership boundary:
// - message composition from bitfield primitives
// - checksum framing (crc subpackage)
// - opcode registry and dispatch from raw bits
//
// Bit widths and opcodes are the over-the-air contract and must stay bit exact.
package protocol
