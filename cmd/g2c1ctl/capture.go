package main

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

// captureFile is a recorded window: either raw amplitude samples or the
// rising-edge intervals already extracted from them.
type captureFile struct {
	SampleRateHz float64   `toml:"sample_rate_hz"`
	Samples      []float64 `toml:"samples,omitempty"`
	Edges        []float64 `toml:"edges,omitempty"`
	Note         string    `toml:"note,omitempty"`
}

type capture struct {
	SampleRateHz float64
	Samples      []float64
	Edges        []float64
	Note         string
}

var errEmptyCapture = errors.New("capture has neither samples nor edges")

func loadCapture(path string, defaultRate float64) (capture, error) {
	out := capture{SampleRateHz: defaultRate}

	var raw captureFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return capture{}, fmt.Errorf("load capture: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return capture{}, fmt.Errorf("load capture: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("sample_rate_hz") {
		if raw.SampleRateHz <= 0 {
			return capture{}, fmt.Errorf("load capture: sample_rate_hz must be positive")
		}
		out.SampleRateHz = raw.SampleRateHz
	}
	if meta.IsDefined("samples") {
		out.Samples = raw.Samples
	}
	if meta.IsDefined("edges") {
		out.Edges = raw.Edges
	}
	if meta.IsDefined("note") {
		out.Note = raw.Note
	}
	if len(out.Samples) == 0 && len(out.Edges) == 0 {
		return capture{}, errEmptyCapture
	}
	return out, nil
}

func writeCapture(path string, c capture) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(captureFile{
		SampleRateHz: c.SampleRateHz,
		Samples:      c.Samples,
		Edges:        c.Edges,
		Note:         c.Note,
	})
}
