package protocol

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danmuck/g2c1/internal/protocol/bitfield"
	"github.com/rs/zerolog/log"
)

// Entry describes one dispatchable command type.
type Entry struct {
	Name   string
	Opcode bitfield.Bits
	New    func() Command
}

// registry is searched in order. Longer opcodes come first so a short opcode can
// never shadow a longer one it prefixes; equal widths keep Gen2 table order.
var registry = []Entry{
	{Name: "NAK", Opcode: opNAK, New: func() Command { return NewNAK() }},
	{Name: "Query", Opcode: opQuery, New: func() Command { return NewQuery(DefaultQueryParams()) }},
	{Name: "QueryAdjust", Opcode: opQueryAdjust, New: func() Command { return NewQueryAdjust(1, UpDnUnchanged) }},
	{Name: "QueryRep", Opcode: opQueryRep, New: func() Command { return NewQueryRep(1) }},
	{Name: "ACK", Opcode: opACK, New: func() Command { return NewACK(0) }},
}

// Catalog returns the registry in dispatch order.
func Catalog() []Entry {
	out := make([]Entry, len(registry))
	for i, e := range registry {
		out[i] = Entry{Name: e.Name, Opcode: e.Opcode.Clone(), New: e.New}
	}
	return out
}

// Lookup finds a registry entry by command name, case-insensitively.
func Lookup(name string) (Entry, bool) {
	for _, e := range registry {
		if strings.EqualFold(e.Name, strings.TrimSpace(name)) {
			return Entry{Name: e.Name, Opcode: e.Opcode.Clone(), New: e.New}, true
		}
	}
	return Entry{}, false
}

// FromBits dispatches raw command bits to the first registered type whose opcode
// prefixes bits, then parses the full command.
func FromBits(bits bitfield.Bits) (Command, error) {
	for _, e := range registry {
		if !bits.HasPrefix(e.Opcode) {
			continue
		}
		cmd := e.New()
		if err := cmd.FromBits(bits); err != nil {
			log.Debug().Str("command", e.Name).Str("bits", bits.String()).Err(err).Msg("protocol.FromBits parse failed")
			return nil, err
		}
		return cmd, nil
	}
	log.Debug().Str("bits", bits.String()).Msg("protocol.FromBits no opcode match")
	return nil, fmt.Errorf("protocol: %w: no command for bits %s", ErrNotFound, bits)
}

// Build instantiates a command by name and applies named field values.
// Fields not named keep their defaults.
func Build(name string, values map[string]string) (Command, error) {
	e, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("protocol: %w: command %q", ErrNotFound, name)
	}
	cmd := e.New()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		f, ok := cmd.Field(k)
		if !ok {
			return nil, fmt.Errorf("%s: %w: %q", e.Name, ErrUnknownField, k)
		}
		if err := f.Set(values[k]); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name, err)
		}
	}
	return cmd, nil
}

// Values renders a command's fields by name, opcode excluded. Build(cmd.Name(), Values(cmd))
// reproduces cmd.
func Values(cmd Command) map[string]string {
	fields := cmd.Fields()
	out := make(map[string]string, len(fields))
	for i, f := range fields {
		if i == 0 {
			continue
		}
		out[f.Name()] = f.String()
	}
	return out
}

// Equal is structural equality: same command type and pairwise equal field values.
func Equal(a, b Command) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name() == b.Name() && fieldsEqual(a.Fields(), b.Fields())
}
