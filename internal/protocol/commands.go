package protocol

import (
	"github.com/danmuck/g2c1/internal/protocol/bitfield"
	"github.com/danmuck/g2c1/internal/protocol/crc"
)

// Opcodes from the Gen2 command table.
var (
	opQuery       = bitfield.MustParseBits("1000")
	opQueryAdjust = bitfield.MustParseBits("1001")
	opQueryRep    = bitfield.MustParseBits("00")
	opACK         = bitfield.MustParseBits("01")
	opNAK         = bitfield.MustParseBits("11000000")
)

// Command is a reader command built on Message.
type Command interface {
	Name() string
	Opcode() bitfield.Bits
	Fields() []bitfield.Field
	Field(name string) (bitfield.Field, bool)
	Width() int
	ToBits() (bitfield.Bits, error)
	FromBits(bitfield.Bits) error
	String() string
}

func opcodeField(name string, op bitfield.Bits) *bitfield.LookUp[string] {
	return bitfield.Constant("cmd", op, name)
}

func bit(s string) bitfield.Bits { return bitfield.MustParseBits(s) }

// QueryParams are the Query field values.
type QueryParams struct {
	DR      DivideRatio
	M       Miller
	TRext   bool
	Sel     Sel
	Session uint8
	Target  Target
	Q       uint8
}

// DefaultQueryParams mirrors a single-tag lab inventory: DR 64/3, FM0, session 1.
func DefaultQueryParams() QueryParams {
	return QueryParams{
		DR:      DR64_3,
		M:       M1,
		TRext:   false,
		Sel:     SelAll1,
		Session: 1,
		Target:  TargetA,
		Q:       0,
	}
}

// Query starts an inventory round. 17 data bits followed by CRC5.
type Query struct {
	*Message
	dr      *bitfield.LookUp[DivideRatio]
	m       *bitfield.LookUp[Miller]
	trExt   *bitfield.LookUp[bool]
	sel     *bitfield.LookUp[Sel]
	session *bitfield.Value
	target  *bitfield.LookUp[Target]
	q       *bitfield.Value
}

func NewQuery(p QueryParams) *Query {
	q := &Query{
		Message: NewMessage("Query", crc.CRC5),
		dr: bitfield.NewLookUp("dr", 1, p.DR).
			Add(bit("0"), DR8).
			Add(bit("1"), DR64_3),
		m: bitfield.NewLookUp("m", 2, p.M).
			Add(bit("00"), M1).
			Add(bit("01"), M2).
			Add(bit("10"), M4).
			Add(bit("11"), M8),
		trExt: bitfield.NewLookUp("trext", 1, p.TRext).
			Add(bit("0"), false).
			Add(bit("1"), true),
		sel: bitfield.NewLookUp("sel", 2, p.Sel).
			Add(bit("00"), SelAll0).
			Add(bit("01"), SelAll1).
			Add(bit("10"), SelNotSL).
			Add(bit("11"), SelSL),
		session: bitfield.NewValue("session", 2, uint64(p.Session)),
		target: bitfield.NewLookUp("target", 1, p.Target).
			Add(bit("0"), TargetA).
			Add(bit("1"), TargetB),
		q: bitfield.NewValue("q", 4, uint64(p.Q)),
	}
	q.Add(opcodeField("Query", opQuery))
	q.Add(q.dr)
	q.Add(q.m)
	q.Add(q.trExt)
	q.Add(q.sel)
	q.Add(q.session)
	q.Add(q.target)
	q.Add(q.q)
	return q
}

func (q *Query) Opcode() bitfield.Bits { return opQuery.Clone() }

// DivideRatio is read by the pulse encoder to size TRcal.
func (q *Query) DivideRatio() DivideRatio { return q.dr.Get() }

func (q *Query) Params() QueryParams {
	return QueryParams{
		DR:      q.dr.Get(),
		M:       q.m.Get(),
		TRext:   q.trExt.Get(),
		Sel:     q.sel.Get(),
		Session: uint8(q.session.Get()),
		Target:  q.target.Get(),
		Q:       uint8(q.q.Get()),
	}
}

// QueryAdjust adjusts Q without changing other round parameters.
type QueryAdjust struct {
	*Message
	session *bitfield.Value
	upDn    *bitfield.LookUp[UpDn]
}

func NewQueryAdjust(session uint8, upDn UpDn) *QueryAdjust {
	qa := &QueryAdjust{
		Message: NewMessage("QueryAdjust", nil),
		session: bitfield.NewValue("session", 2, uint64(session)),
		upDn: bitfield.NewLookUp("updn", 3, upDn).
			Add(bit("110"), UpDnIncrement).
			Add(bit("000"), UpDnUnchanged).
			Add(bit("011"), UpDnDecrement),
	}
	qa.Add(opcodeField("QueryAdjust", opQueryAdjust))
	qa.Add(qa.session)
	qa.Add(qa.upDn)
	return qa
}

func (qa *QueryAdjust) Opcode() bitfield.Bits { return opQueryAdjust.Clone() }
func (qa *QueryAdjust) Session() uint8        { return uint8(qa.session.Get()) }
func (qa *QueryAdjust) UpDn() UpDn            { return qa.upDn.Get() }

// QueryRep repeats the previous Query, decrementing tag slot counters.
type QueryRep struct {
	*Message
	session *bitfield.Value
}

func NewQueryRep(session uint8) *QueryRep {
	qr := &QueryRep{
		Message: NewMessage("QueryRep", nil),
		session: bitfield.NewValue("session", 2, uint64(session)),
	}
	qr.Add(opcodeField("QueryRep", opQueryRep))
	qr.Add(qr.session)
	return qr
}

func (qr *QueryRep) Opcode() bitfield.Bits { return opQueryRep.Clone() }
func (qr *QueryRep) Session() uint8        { return uint8(qr.session.Get()) }

// ACK echoes the RN16 a tag backscattered.
type ACK struct {
	*Message
	rn16 *bitfield.Value
}

func NewACK(rn16 uint16) *ACK {
	a := &ACK{
		Message: NewMessage("ACK", nil),
		rn16:    bitfield.NewValue("rn16", 16, uint64(rn16)),
	}
	a.Add(opcodeField("ACK", opACK))
	a.Add(a.rn16)
	return a
}

func (a *ACK) Opcode() bitfield.Bits { return opACK.Clone() }
func (a *ACK) RN16() uint16          { return uint16(a.rn16.Get()) }

// NAK returns all tags in the reply or acknowledged state to arbitrate.
type NAK struct {
	*Message
}

func NewNAK() *NAK {
	n := &NAK{Message: NewMessage("NAK", nil)}
	n.Add(opcodeField("NAK", opNAK))
	return n
}

func (n *NAK) Opcode() bitfield.Bits { return opNAK.Clone() }
