package protocol

import (
	"fmt"
	"strings"

	"github.com/danmuck/g2c1/internal/protocol/bitfield"
)

// ChecksumFunc computes the checksum appended after a message's field bits.
type ChecksumFunc func(bitfield.Bits) bitfield.Bits

// Message is an ordered composition of fields with an optional trailing checksum.
// The first field is conventionally the opcode constant.
type Message struct {
	name     string
	fields   []bitfield.Field
	checksum ChecksumFunc
}

// NewMessage creates an empty message. checksum may be nil.
func NewMessage(name string, checksum ChecksumFunc) *Message {
	return &Message{name: name, checksum: checksum}
}

// Add appends a field to the declared order.
func (m *Message) Add(f bitfield.Field) {
	m.fields = append(m.fields, f)
}

func (m *Message) Name() string { return m.name }

// Fields returns the fields in declared order.
func (m *Message) Fields() []bitfield.Field {
	out := make([]bitfield.Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// Field finds a field by name.
func (m *Message) Field(name string) (bitfield.Field, bool) {
	for _, f := range m.fields {
		if strings.EqualFold(f.Name(), name) {
			return f, true
		}
	}
	return nil, false
}

// Width is the sum of the field widths. The checksum is not counted.
func (m *Message) Width() int {
	total := 0
	for _, f := range m.fields {
		total += f.Width()
	}
	return total
}

// ChecksumWidth is the number of checksum bits ToBits appends.
func (m *Message) ChecksumWidth() int {
	if m.checksum == nil {
		return 0
	}
	return len(m.checksum(nil))
}

// ToBits concatenates every field's bits and appends the checksum, if any.
func (m *Message) ToBits() (bitfield.Bits, error) {
	bits := make(bitfield.Bits, 0, m.Width()+m.ChecksumWidth())
	for _, f := range m.fields {
		b, err := f.ToBits()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.name, err)
		}
		bits = append(bits, b...)
	}
	if m.checksum != nil {
		bits = append(bits, m.checksum(bits)...)
	}
	return bits, nil
}

// FromBits slices bits sequentially per field width and parses each field.
// Bits past the checksum are ignored. When the input carries the checksum it
// is verified. A failure may leave earlier fields updated.
func (m *Message) FromBits(bits bitfield.Bits) error {
	width := m.Width()
	if len(bits) < width {
		return fmt.Errorf("%s: %w: got %d bits want %d", m.name, ErrSizeMismatch, len(bits), width)
	}
	offset := 0
	for _, f := range m.fields {
		if err := f.FromBits(bits[offset : offset+f.Width()]); err != nil {
			return fmt.Errorf("%s: %w", m.name, err)
		}
		offset += f.Width()
	}
	if m.checksum == nil {
		return nil
	}
	want := m.checksum(bits[:width])
	if len(bits) < width+len(want) {
		return nil
	}
	if got := bits[width : width+len(want)]; !got.Equal(want) {
		return fmt.Errorf("%s: %w: got %s want %s", m.name, ErrChecksum, got, want)
	}
	return nil
}

// Equal reports whether every field value matches pairwise, in order.
func (m *Message) Equal(o *Message) bool {
	if m == nil || o == nil {
		return m == o
	}
	return fieldsEqual(m.fields, o.fields)
}

func (m *Message) String() string {
	parts := make([]string, 0, len(m.fields))
	for i, f := range m.fields {
		if i == 0 {
			continue
		}
		parts = append(parts, f.Name()+"="+f.String())
	}
	return m.name + "(" + strings.Join(parts, ", ") + ")"
}

func fieldsEqual(a, b []bitfield.Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
