// Package pie renders reader commands as Pulse-Interval-Encoded pulse trains.
//
// A pulse train is a list of durations in microseconds. Levels alternate,
// starting low: the first pulse is always the delimiter.
package pie

import (
	"errors"
	"fmt"
	"math"

	"github.com/danmuck/g2c1/internal/observability"
	"github.com/danmuck/g2c1/internal/protocol"
	"github.com/rs/zerolog/log"
)

const (
	MinTariUs = 6.25
	MaxTariUs = 25.0
	// DelimiterUs opens every reader frame.
	DelimiterUs = 12.5
	// MaxBytePulseUs is the longest pulse the byte transport can carry.
	MaxBytePulseUs = 255
)

var (
	ErrInvalidTari  = errors.New("pie: tari out of range")
	ErrInvalidBLF   = errors.New("pie: backscatter link frequency must be positive")
	ErrPulseRange   = errors.New("pie: pulse does not fit a byte")
	ErrInvalidRate  = errors.New("pie: sample rate must be positive")
	ErrNoCommands   = errors.New("pie: no commands to sequence")
	ErrInvalidPulse = errors.New("pie: pulse duration must be positive")
)

// Config holds the reader timing parameters.
type Config struct {
	TariUs float64
	BLFkHz float64
}

// DefaultConfig is a 12 µs Tari with a 320 kHz backscatter link.
func DefaultConfig() Config {
	return Config{TariUs: 12, BLFkHz: 320}
}

func (c Config) Validate() error {
	if math.IsNaN(c.TariUs) || c.TariUs < MinTariUs || c.TariUs > MaxTariUs {
		return fmt.Errorf("%w: %.3f µs not in [%.2f, %.2f]", ErrInvalidTari, c.TariUs, MinTariUs, MaxTariUs)
	}
	if math.IsNaN(c.BLFkHz) || c.BLFkHz <= 0 {
		return fmt.Errorf("%w: %.3f kHz", ErrInvalidBLF, c.BLFkHz)
	}
	return nil
}

// Encoder turns commands into reader pulse trains.
type Encoder struct {
	cfg Config
}

func NewEncoder(cfg Config) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Encoder{cfg: cfg}, nil
}

func (e *Encoder) Config() Config { return e.cfg }

// PW is the low-pulse width, half a Tari.
func (e *Encoder) PW() float64 {
	return 0.5 * e.cfg.TariUs
}

// Data0 is one Tari: high for PW, low for PW.
func (e *Encoder) Data0() []float64 {
	return []float64{e.PW(), e.PW()}
}

// Data1 is 2 Tari: high for 1.5 Tari, low for PW.
func (e *Encoder) Data1() []float64 {
	return []float64{1.5 * e.cfg.TariUs, e.PW()}
}

// RTcal is the reader-to-tag calibration symbol, data-0 plus data-1 long.
func (e *Encoder) RTcal() []float64 {
	return []float64{3*e.cfg.TariUs - e.PW(), e.PW()}
}

// TRcal is the tag-to-reader calibration symbol; its length over the divide
// ratio sets the tag's backscatter clock.
func (e *Encoder) TRcal(dr protocol.DivideRatio) []float64 {
	// µs = dr / (kHz * 1e-3)
	return []float64{dr.Ratio()/(e.cfg.BLFkHz*1e-3) - e.PW(), e.PW()}
}

// FrameSync precedes every reader command except Query.
func (e *Encoder) FrameSync() []float64 {
	out := make([]float64, 0, 5)
	out = append(out, DelimiterUs)
	out = append(out, e.Data0()...)
	return append(out, e.RTcal()...)
}

// Preamble is the frame sync extended by TRcal, sent before a Query.
func (e *Encoder) Preamble(dr protocol.DivideRatio) []float64 {
	return append(e.FrameSync(), e.TRcal(dr)...)
}

// Pulses renders cmd, Query with a full preamble and every other command with a frame sync.
func (e *Encoder) Pulses(cmd protocol.Command) ([]float64, error) {
	bits, err := cmd.ToBits()
	if err != nil {
		return nil, err
	}

	var pulses []float64
	if q, ok := cmd.(*protocol.Query); ok {
		pulses = e.Preamble(q.DivideRatio())
	} else {
		pulses = e.FrameSync()
	}
	for _, b := range bits {
		if b == 1 {
			pulses = append(pulses, e.Data1()...)
		} else {
			pulses = append(pulses, e.Data0()...)
		}
	}

	observability.RecordEncode(cmd.Name(), len(pulses))
	log.Debug().
		Str("command", cmd.String()).
		Str("bits", bits.String()).
		Int("pulses", len(pulses)).
		Msg("pie.Pulses")
	return pulses, nil
}

// Sequence renders cmds back to back with idleUs of carrier between them and
// after the last one. The trailing carrier closes the final data symbol.
func (e *Encoder) Sequence(idleUs float64, cmds ...protocol.Command) ([]float64, error) {
	if len(cmds) == 0 {
		return nil, ErrNoCommands
	}
	if idleUs <= 0 {
		return nil, fmt.Errorf("%w: idle %.3f µs", ErrInvalidPulse, idleUs)
	}
	var out []float64
	for _, cmd := range cmds {
		pulses, err := e.Pulses(cmd)
		if err != nil {
			return nil, err
		}
		// command trains have odd length, so idle lands on a high level
		out = append(out, pulses...)
		out = append(out, idleUs)
	}
	return out, nil
}

// Ints truncates every pulse toward zero for integer-only sequencers.
func Ints(pulses []float64) []int {
	out := make([]int, len(pulses))
	for i, p := range pulses {
		out[i] = int(p)
	}
	return out
}

// Bytes truncates every pulse to one byte for the serial sequencer.
func Bytes(pulses []float64) ([]byte, error) {
	out := make([]byte, len(pulses))
	for i, p := range pulses {
		if p < 0 || p >= MaxBytePulseUs+1 {
			return nil, fmt.Errorf("%w: pulse %d is %.3f µs", ErrPulseRange, i, p)
		}
		out[i] = byte(p)
	}
	return out, nil
}

// Samples expands pulses into 0/1 levels, starting low, at sampleRate Hz.
// Run boundaries sit on the rounded cumulative time so quantization does not drift.
func Samples(pulses []float64, sampleRate float64) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %.3f Hz", ErrInvalidRate, sampleRate)
	}
	var (
		samples []float64
		level   float64
		elapsed float64
		done    int
	)
	for _, p := range pulses {
		elapsed += p
		end := int(math.Floor(elapsed*1e-6*sampleRate + 0.5))
		for ; done < end; done++ {
			samples = append(samples, level)
		}
		level = 1 - level
	}
	return samples, nil
}
