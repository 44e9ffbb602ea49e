package crc

import (
	"math/rand"
	"testing"

	"github.com/danmuck/g2c1/internal/protocol/bitfield"
	"github.com/danmuck/g2c1/internal/testutil/testlog"
)

func TestCRC5LiteralVector(t *testing.T) {
	testlog.Start(t)
	data := bitfield.Bits{1, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 1, 1, 0, 0, 0, 1}
	want := bitfield.Bits{1, 0, 0, 0, 1}

	got := CRC5(data)
	if !got.Equal(want) {
		t.Fatalf("crc5(%s) = %s, want %s", data, got, want)
	}

	check := CRC5(append(data.Clone(), got...))
	if !check.Equal(bitfield.Bits{0, 0, 0, 0, 0}) {
		t.Fatalf("crc5 residue = %s, want 00000", check)
	}
}

func TestCRC5ResidueZeroForRandomData(t *testing.T) {
	testlog.Start(t)
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 500; i++ {
		data := make(bitfield.Bits, rng.Intn(64))
		for j := range data {
			data[j] = uint8(rng.Intn(2))
		}
		framed := append(data.Clone(), CRC5(data)...)
		if !CheckCRC5(framed) {
			t.Fatalf("residue not zero for %s", framed)
		}
	}
}

func TestCRC5EmptyInputIsPreset(t *testing.T) {
	testlog.Start(t)
	if got := CRC5(nil); got.String() != "01001" {
		t.Fatalf("crc5 of empty input = %s, want preset 01001", got)
	}
}

func TestCheckCRC5DetectsSingleBitError(t *testing.T) {
	testlog.Start(t)
	data := bitfield.MustParseBits("10001000010110001")
	framed := append(data.Clone(), CRC5(data)...)
	for i := range framed {
		corrupt := framed.Clone()
		corrupt[i] ^= 1
		if CheckCRC5(corrupt) {
			t.Fatalf("flipping bit %d of %s went undetected", i, framed)
		}
	}
	if CheckCRC5(bitfield.Bits{0, 1}) {
		t.Fatalf("short input must not validate")
	}
}
