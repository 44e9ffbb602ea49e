package bitfield

import (
	"fmt"
	"strconv"
	"strings"
)

// Field converts between a fixed-width bit sequence and a semantic value.
type Field interface {
	Name() string
	Width() int
	ToBits() (Bits, error)
	FromBits(Bits) error
	// Equal compares the held values; widths and tables are assumed identical.
	Equal(Field) bool
	// String renders the held value, Set parses that same rendering.
	String() string
	Set(string) error
}

// Value is an unsigned integer field.
type Value struct {
	name  string
	width int
	v     uint64
}

var _ Field = (*Value)(nil)

// NewValue creates an unsigned integer field holding v.
func NewValue(name string, width int, v uint64) *Value {
	if width <= 0 || width > 64 {
		panic(fmt.Sprintf("bitfield: value %s width %d out of range", name, width))
	}
	return &Value{name: name, width: width, v: v}
}

func (f *Value) Name() string { return f.name }
func (f *Value) Width() int   { return f.width }
func (f *Value) Get() uint64  { return f.v }
func (f *Value) Put(v uint64) { f.v = v }

func (f *Value) ToBits() (Bits, error) {
	b, err := FromUint(f.v, f.width)
	if err != nil {
		return nil, FieldError{Field: f.name, Err: err}
	}
	return b, nil
}

func (f *Value) FromBits(b Bits) error {
	if len(b) != f.width {
		return FieldError{Field: f.name, Err: fmt.Errorf("%w: got %d bits want %d", ErrSizeMismatch, len(b), f.width)}
	}
	v, err := b.Uint()
	if err != nil {
		return FieldError{Field: f.name, Err: err}
	}
	f.v = v
	return nil
}

func (f *Value) Equal(other Field) bool {
	o, ok := other.(*Value)
	return ok && o.v == f.v
}

func (f *Value) String() string {
	return strconv.FormatUint(f.v, 10)
}

func (f *Value) Set(text string) error {
	v, err := strconv.ParseUint(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return FieldError{Field: f.name, Err: fmt.Errorf("parse %q: %w", text, err)}
	}
	if _, err := FromUint(v, f.width); err != nil {
		return FieldError{Field: f.name, Err: err}
	}
	f.v = v
	return nil
}

type association[T comparable] struct {
	pattern Bits
	value   T
}

// LookUp maps bit patterns to values of a closed domain T and back.
type LookUp[T comparable] struct {
	name  string
	width int
	table []association[T]
	v     T
}

// NewLookUp creates an empty table field holding v. Associations are added with Add.
func NewLookUp[T comparable](name string, width int, v T) *LookUp[T] {
	if width <= 0 {
		panic(fmt.Sprintf("bitfield: lookup %s width %d out of range", name, width))
	}
	return &LookUp[T]{name: name, width: width, v: v}
}

// Constant is a LookUp preloaded with exactly one association, used for opcodes.
func Constant[T comparable](name string, pattern Bits, value T) *LookUp[T] {
	return NewLookUp(name, len(pattern), value).Add(pattern, value)
}

// Add registers pattern <-> value. Tables are built at definition sites, so a
// malformed association panics.
func (f *LookUp[T]) Add(pattern Bits, value T) *LookUp[T] {
	if len(pattern) != f.width {
		panic(fmt.Sprintf("bitfield: lookup %s pattern %s is not %d bits", f.name, pattern, f.width))
	}
	for _, a := range f.table {
		if a.pattern.Equal(pattern) || a.value == value {
			panic(fmt.Sprintf("bitfield: lookup %s duplicate association %s=%v", f.name, pattern, value))
		}
	}
	f.table = append(f.table, association[T]{pattern: pattern.Clone(), value: value})
	return f
}

func (f *LookUp[T]) Name() string { return f.name }
func (f *LookUp[T]) Width() int   { return f.width }
func (f *LookUp[T]) Get() T       { return f.v }
func (f *LookUp[T]) Put(v T)      { f.v = v }

// Values lists the table domain in association order.
func (f *LookUp[T]) Values() []T {
	out := make([]T, 0, len(f.table))
	for _, a := range f.table {
		out = append(out, a.value)
	}
	return out
}

func (f *LookUp[T]) ToBits() (Bits, error) {
	for _, a := range f.table {
		if a.value == f.v {
			return a.pattern.Clone(), nil
		}
	}
	return nil, FieldError{Field: f.name, Err: fmt.Errorf("%w: value %v", ErrNotFound, f.v)}
}

// FromBits fails with ErrNotFound on an unknown pattern and leaves the held value untouched.
func (f *LookUp[T]) FromBits(b Bits) error {
	if len(b) != f.width {
		return FieldError{Field: f.name, Err: fmt.Errorf("%w: got %d bits want %d", ErrSizeMismatch, len(b), f.width)}
	}
	for _, a := range f.table {
		if a.pattern.Equal(b) {
			f.v = a.value
			return nil
		}
	}
	return FieldError{Field: f.name, Err: fmt.Errorf("%w: pattern %s", ErrNotFound, b)}
}

func (f *LookUp[T]) Equal(other Field) bool {
	o, ok := other.(*LookUp[T])
	return ok && o.v == f.v
}

func (f *LookUp[T]) String() string {
	return fmt.Sprint(f.v)
}

func (f *LookUp[T]) Set(text string) error {
	text = strings.TrimSpace(text)
	for _, a := range f.table {
		if fmt.Sprint(a.value) == text {
			f.v = a.value
			return nil
		}
	}
	return FieldError{Field: f.name, Err: fmt.Errorf("%w: value %q", ErrNotFound, text)}
}
