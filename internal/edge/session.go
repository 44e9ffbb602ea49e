package edge

import "github.com/danmuck/g2c1/internal/protocol/bitfield"

// Phase is the position of a Session in the reader frame.
type Phase int

const (
	AwaitRTcal Phase = iota
	AwaitTRcalOrData
	Data
	Done
)

func (p Phase) String() string {
	switch p {
	case AwaitRTcal:
		return "await_rtcal"
	case AwaitTRcalOrData:
		return "await_trcal_or_data"
	case Data:
		return "data"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Session classifies the edges of one reader command. A Session is never
// shared across commands; use Reset or a new Session for the next one.
type Session struct {
	cal   Calibration
	phase Phase

	prev     float64
	havePrev bool
	// start is the index of the Tari edge; fed counts accepted edges.
	start int
	fed   int

	tari  float64
	rtCal float64
	trCal float64
	bits  bitfield.Bits
}

func NewSession(cal Calibration) *Session {
	return &Session{cal: cal}
}

func (s *Session) Reset() {
	*s = Session{cal: s.cal}
}

// Feed classifies the next edge duration. It returns false when the edge ends
// the command; that edge is not consumed.
func (s *Session) Feed(d float64) bool {
	switch s.phase {
	case AwaitRTcal:
		if s.havePrev && s.cal.isTari(s.prev) && s.cal.isRTcal(s.prev, d) {
			s.tari, s.rtCal = s.prev, d
			s.start = s.fed - 1
			s.phase = AwaitTRcalOrData
		} else {
			s.prev, s.havePrev = d, true
		}
	case AwaitTRcalOrData:
		if s.cal.isTRcal(s.rtCal, d) {
			s.trCal = d
			s.phase = Data
			break
		}
		if !s.pushBit(d) {
			return false
		}
		s.phase = Data
	case Data:
		if !s.pushBit(d) {
			return false
		}
	default:
		return false
	}
	s.fed++
	return true
}

func (s *Session) pushBit(d float64) bool {
	if d > s.rtCal+s.cal.ToleranceUs {
		s.phase = Done
		return false
	}
	var b uint8
	if d > s.rtCal/2 {
		b = 1
	}
	s.bits = append(s.bits, b)
	return true
}

func (s *Session) Phase() Phase { return s.phase }

// Calibrated reports whether a Tari/RTcal pair was found.
func (s *Session) Calibrated() bool { return s.rtCal > 0 }

func (s *Session) Tari() float64  { return s.tari }
func (s *Session) RTcal() float64 { return s.rtCal }

// TRcal is 0 unless the command carried a preamble.
func (s *Session) TRcal() float64 { return s.trCal }

func (s *Session) Bits() bitfield.Bits { return s.bits.Clone() }

// Span returns the edge index range [start, end) the command occupies.
// Before calibration it is empty.
func (s *Session) Span() (int, int) {
	if !s.Calibrated() {
		return s.fed, s.fed
	}
	return s.start, s.fed
}
