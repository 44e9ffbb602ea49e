package bitfield

import (
	"errors"
	"testing"

	"github.com/danmuck/g2c1/internal/testutil/testlog"
)

type color uint8

const (
	red color = iota
	green
	blue
)

func (c color) String() string {
	switch c {
	case red:
		return "red"
	case green:
		return "green"
	default:
		return "blue"
	}
}

func colorField(v color) *LookUp[color] {
	return NewLookUp("color", 2, v).
		Add(MustParseBits("00"), red).
		Add(MustParseBits("01"), green).
		Add(MustParseBits("11"), blue)
}

func TestValueRoundTripFullDomain(t *testing.T) {
	testlog.Start(t)
	for width := 1; width <= 8; width++ {
		for v := uint64(0); v < 1<<uint(width); v++ {
			f := NewValue("v", width, v)
			b, err := f.ToBits()
			if err != nil {
				t.Fatalf("width=%d v=%d to bits: %v", width, v, err)
			}
			if len(b) != width {
				t.Fatalf("width=%d v=%d got %d bits", width, v, len(b))
			}
			back := NewValue("v", width, 0)
			if err := back.FromBits(b); err != nil {
				t.Fatalf("width=%d v=%d from bits: %v", width, v, err)
			}
			if back.Get() != v {
				t.Fatalf("width=%d round trip %d -> %s -> %d", width, v, b, back.Get())
			}
		}
	}
}

func TestValueBigEndianZeroPadded(t *testing.T) {
	testlog.Start(t)
	b, err := NewValue("q", 4, 1).ToBits()
	if err != nil {
		t.Fatalf("to bits: %v", err)
	}
	if b.String() != "0001" {
		t.Fatalf("expected 0001, got %s", b)
	}
}

func TestValueOverflow(t *testing.T) {
	testlog.Start(t)
	_, err := NewValue("session", 2, 4).ToBits()
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	var fe FieldError
	if !errors.As(err, &fe) || fe.Field != "session" {
		t.Fatalf("expected FieldError for session, got %v", err)
	}
	if err := NewValue("session", 2, 0).Set("7"); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow from Set, got %v", err)
	}
}

func TestValueFromBitsSizeMismatch(t *testing.T) {
	testlog.Start(t)
	err := NewValue("q", 4, 0).FromBits(MustParseBits("101"))
	if !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
}

func TestLookUpRoundTrip(t *testing.T) {
	testlog.Start(t)
	for _, c := range []color{red, green, blue} {
		f := colorField(c)
		b, err := f.ToBits()
		if err != nil {
			t.Fatalf("%v to bits: %v", c, err)
		}
		back := colorField(red)
		if err := back.FromBits(b); err != nil {
			t.Fatalf("%v from bits: %v", c, err)
		}
		if !back.Equal(f) {
			t.Fatalf("round trip %v -> %s -> %v", c, b, back.Get())
		}
	}
}

func TestLookUpMissingAlwaysFails(t *testing.T) {
	testlog.Start(t)
	f := colorField(color(9))
	if _, err := f.ToBits(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown value, got %v", err)
	}

	f = colorField(green)
	err := f.FromBits(MustParseBits("10"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown pattern, got %v", err)
	}
	if f.Get() != green {
		t.Fatalf("failed FromBits must keep previous value, got %v", f.Get())
	}
}

func TestLookUpSetByText(t *testing.T) {
	testlog.Start(t)
	f := colorField(red)
	if err := f.Set("blue"); err != nil {
		t.Fatalf("set blue: %v", err)
	}
	if f.Get() != blue || f.String() != "blue" {
		t.Fatalf("expected blue, got %v", f.Get())
	}
	if err := f.Set("purple"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	flag := NewLookUp("trext", 1, false).
		Add(MustParseBits("0"), false).
		Add(MustParseBits("1"), true)
	if err := flag.Set("true"); err != nil || !flag.Get() {
		t.Fatalf("expected bool set, got %v err=%v", flag.Get(), err)
	}
}

func TestConstantSingleAssociation(t *testing.T) {
	testlog.Start(t)
	c := Constant("cmd", MustParseBits("1000"), "Query")
	if c.Width() != 4 {
		t.Fatalf("expected width 4, got %d", c.Width())
	}
	b, err := c.ToBits()
	if err != nil || b.String() != "1000" {
		t.Fatalf("expected 1000, got %s err=%v", b, err)
	}
	if err := c.FromBits(MustParseBits("1001")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign opcode, got %v", err)
	}
	if len(c.Values()) != 1 {
		t.Fatalf("expected one association, got %d", len(c.Values()))
	}
}

func TestAddRejectsMalformedAssociation(t *testing.T) {
	testlog.Start(t)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for width mismatch")
		}
	}()
	NewLookUp("bad", 2, red).Add(MustParseBits("1"), red)
}

func TestParseBits(t *testing.T) {
	testlog.Start(t)
	b, err := ParseBits("1000 1_01")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if b.String() != "1000101" {
		t.Fatalf("unexpected bits %s", b)
	}
	if _, err := ParseBits("10x"); !errors.Is(err, ErrInvalidBit) {
		t.Fatalf("expected ErrInvalidBit, got %v", err)
	}
	if _, err := (Bits{1, 2}).Uint(); !errors.Is(err, ErrInvalidBit) {
		t.Fatalf("expected ErrInvalidBit from Uint, got %v", err)
	}
	if !b.HasPrefix(MustParseBits("100")) || b.HasPrefix(MustParseBits("11")) {
		t.Fatalf("unexpected prefix result for %s", b)
	}
}
