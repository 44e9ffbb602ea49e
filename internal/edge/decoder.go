// Package edge recovers reader commands from captured carrier amplitude.
//
// Decoding runs in stages: a Schmitt trigger turns samples into rising-edge
// intervals, idle gaps split the intervals into per-command segments, a
// Session classifies each segment's symbols into bits, and the bits are
// dispatched through the protocol registry.
package edge

import (
	"errors"
	"fmt"

	"github.com/danmuck/g2c1/internal/observability"
	"github.com/danmuck/g2c1/internal/protocol"
	"github.com/danmuck/g2c1/internal/protocol/bitfield"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrUncalibrated = errors.New("edge: no tari/rtcal pair found")
	ErrNoBits       = errors.New("edge: command carried no data bits")
)

// Command is one decoded reader command.
type Command struct {
	Tari  float64
	RTcal float64
	// TRcal is 0 unless the command carried a preamble.
	TRcal float64
	Bits  bitfield.Bits
	// Message is nil when dispatch failed; Err says why.
	Message protocol.Command
	Err     error
	// BLFkHz is derived from TRcal for Query commands only.
	BLFkHz float64
	// Start and End bound the command's edges in the decoded stream.
	Start   int
	End     int
	StartUs float64
}

func (c Command) Calibrated() bool { return c.RTcal > 0 }

// Extended reports whether the command was preceded by a full preamble.
func (c Command) Extended() bool { return c.TRcal > 0 }

type Decoder struct {
	cfg    Config
	logger zerolog.Logger
}

func NewDecoder(cfg Config, logger zerolog.Logger) (*Decoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Decoder{cfg: cfg, logger: logger.With().Str("component", "edge").Logger()}, nil
}

func (d *Decoder) Config() Config { return d.cfg }

// SamplesToEdges runs the configured Schmitt trigger.
func (d *Decoder) SamplesToEdges(samples []float64, sampleRate float64) ([]float64, error) {
	return d.cfg.Schmitt.SamplesToEdges(samples, sampleRate)
}

// DecodeSamples decodes every command in a sample window.
func (d *Decoder) DecodeSamples(samples []float64, sampleRate float64) ([]Command, error) {
	edges, err := d.SamplesToEdges(samples, sampleRate)
	if err != nil {
		return nil, err
	}
	d.logger.Debug().
		Int("samples", len(samples)).
		Int("edges", len(edges)).
		Float64("sample_rate_hz", sampleRate).
		Msg("edge.DecodeSamples")
	return d.DecodeEdges(edges), nil
}

// DecodeEdges splits the stream at idle gaps and decodes each segment with a
// fresh Session. A failing segment is reported on its Command and decoding
// continues with the next one.
func (d *Decoder) DecodeEdges(edges []float64) []Command {
	segments := SplitEdges(edges, d.cfg.MaxSymbolUs)
	out := make([]Command, 0, len(segments))
	for _, seg := range segments {
		cmd := d.decodeSegment(seg.Edges)
		cmd.Start += seg.Offset
		cmd.End += seg.Offset
		cmd.StartUs = floats.Sum(edges[:cmd.Start])
		out = append(out, cmd)
	}
	return out
}

// FromEdges decodes a single command from one unsplit segment.
func (d *Decoder) FromEdges(edges []float64) Command {
	return d.decodeSegment(edges)
}

func (d *Decoder) decodeSegment(edges []float64) Command {
	s := NewSession(d.cfg.Calibration)
	for _, e := range edges {
		if !s.Feed(e) {
			break
		}
	}

	cmd := Command{
		Tari:  s.Tari(),
		RTcal: s.RTcal(),
		TRcal: s.TRcal(),
		Bits:  s.Bits(),
	}
	cmd.Start, cmd.End = s.Span()
	cmd.StartUs = floats.Sum(edges[:cmd.Start])

	switch {
	case !s.Calibrated():
		cmd.Err = ErrUncalibrated
		observability.RecordDecode("", observability.DecodeUnresolved)
		d.logger.Debug().Int("edges", len(edges)).Msg("edge segment unresolved")
		return cmd
	case len(cmd.Bits) == 0:
		cmd.Err = ErrNoBits
		observability.RecordDecode("", observability.DecodeNoBits)
		d.logger.Debug().Float64("rtcal_us", cmd.RTcal).Msg("edge segment without data")
		return cmd
	}

	msg, err := protocol.FromBits(cmd.Bits)
	if err != nil {
		cmd.Err = fmt.Errorf("edge: dispatch %s: %w", cmd.Bits, err)
		observability.RecordDecode("", observability.DecodeDispatch)
		d.logger.Warn().
			Str("bits", cmd.Bits.String()).
			Float64("tari_us", cmd.Tari).
			Float64("rtcal_us", cmd.RTcal).
			Err(err).
			Msg("edge dispatch failed")
		return cmd
	}
	cmd.Message = msg
	if q, ok := msg.(*protocol.Query); ok && cmd.TRcal > 0 {
		cmd.BLFkHz = BLFkHz(q.DivideRatio(), cmd.TRcal)
	}
	observability.RecordDecode(msg.Name(), observability.DecodeDecoded)
	d.logger.Debug().
		Str("command", msg.String()).
		Float64("tari_us", cmd.Tari).
		Float64("rtcal_us", cmd.RTcal).
		Float64("trcal_us", cmd.TRcal).
		Msg("edge decoded")
	return cmd
}

// BLFkHz is the tag backscatter frequency implied by a TRcal duration in µs.
func BLFkHz(dr protocol.DivideRatio, trCalUs float64) float64 {
	if trCalUs <= 0 {
		return 0
	}
	return dr.Ratio() / trCalUs * 1e3
}
