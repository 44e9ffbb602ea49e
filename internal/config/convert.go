package config

import (
	"fmt"

	"github.com/danmuck/g2c1/internal/edge"
	"github.com/danmuck/g2c1/internal/pie"
	"github.com/danmuck/g2c1/internal/sequencer"
)

func EncoderSettings(c EncoderConfig) (pie.Config, error) {
	out := pie.Config{TariUs: c.TariUs, BLFkHz: c.BLFkHz}
	return out, out.Validate()
}

func DecoderSettings(c DecoderConfig) (edge.Config, error) {
	out := edge.DefaultConfig()
	out.Schmitt.Ratio = c.ThresholdRatio
	out.Schmitt.Hysteresis = c.Hysteresis
	if c.Pad != nil {
		out.Schmitt.Pad = *c.Pad
	}
	out.MaxSymbolUs = c.MaxSymbolUs
	out.Calibration.ToleranceUs = c.ToleranceUs
	return out, out.Validate()
}

func SequencerSettings(c SequencerConfig) (sequencer.Config, error) {
	out := sequencer.DefaultConfig()
	out.Port = c.Port
	if c.Baud < 0 {
		return out, fmt.Errorf("baud must be positive")
	}
	if c.Baud > 0 {
		out.Baud = c.Baud
	}
	if c.ReadTimeout != "" {
		d, err := parseTimeout(c.ReadTimeout)
		if err != nil {
			return out, err
		}
		out.ReadTimeout = d
	}
	if c.Retries != nil {
		if *c.Retries < 0 {
			return out, fmt.Errorf("retries must not be negative")
		}
		out.Retries = *c.Retries
	}
	return out, nil
}
