package protocol

import "strconv"

// DivideRatio is the Query DR field; it scales TRcal into the tag's backscatter clock.
type DivideRatio uint8

const (
	DR8 DivideRatio = iota
	DR64_3
)

// Ratio returns the numeric divide ratio.
func (d DivideRatio) Ratio() float64 {
	if d == DR8 {
		return 8
	}
	return 64.0 / 3.0
}

func (d DivideRatio) String() string {
	switch d {
	case DR8:
		return "8"
	case DR64_3:
		return "64/3"
	default:
		return "dr(" + strconv.Itoa(int(d)) + ")"
	}
}

// Miller is the number of subcarrier cycles per tag symbol.
type Miller uint8

const (
	M1 Miller = 1
	M2 Miller = 2
	M4 Miller = 4
	M8 Miller = 8
)

func (m Miller) String() string {
	return strconv.Itoa(int(m))
}

// Sel chooses which tags respond to a Query.
type Sel uint8

const (
	SelAll0 Sel = iota
	SelAll1
	SelNotSL
	SelSL
)

func (s Sel) String() string {
	switch s {
	case SelAll0:
		return "all0"
	case SelAll1:
		return "all1"
	case SelNotSL:
		return "-sl"
	case SelSL:
		return "sl"
	default:
		return "sel(" + strconv.Itoa(int(s)) + ")"
	}
}

// Target selects the inventoried flag a round operates on.
type Target uint8

const (
	TargetA Target = iota
	TargetB
)

func (t Target) String() string {
	switch t {
	case TargetA:
		return "a"
	case TargetB:
		return "b"
	default:
		return "target(" + strconv.Itoa(int(t)) + ")"
	}
}

// UpDn is the QueryAdjust slot-count adjustment applied to Q.
type UpDn int8

const (
	UpDnDecrement UpDn = -1
	UpDnUnchanged UpDn = 0
	UpDnIncrement UpDn = 1
)

func (u UpDn) String() string {
	switch u {
	case UpDnIncrement:
		return "+1"
	case UpDnDecrement:
		return "-1"
	default:
		return "0"
	}
}
