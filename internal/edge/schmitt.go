package edge

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// SamplesToEdges reduces a captured amplitude window to the durations, in µs,
// between successive rising edges. The thresholds are relative to the window's
// own min and max, so the capture needs no absolute calibration. The first
// rising edge only sets the time reference.
func (s Schmitt) SamplesToEdges(samples []float64, sampleRate float64) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %.3f Hz", ErrInvalidConfig, sampleRate)
	}
	if len(samples) == 0 {
		return nil, nil
	}
	lo, hi := floats.Min(samples), floats.Max(samples)
	span := hi - lo
	if span == 0 {
		return nil, nil
	}
	mid := lo + s.Ratio*span
	high := mid + s.Hysteresis*span
	low := mid - s.Hysteresis*span

	var edges []float64
	raised := samples[0] > high
	last := -1
	for i, v := range samples {
		switch {
		case !raised && v > high:
			raised = true
			if last >= 0 {
				edges = append(edges, float64(i-last)/sampleRate*1e6)
			}
			last = i
		case raised && v < low:
			raised = false
		}
	}
	if s.Pad && !raised && last >= 0 {
		edges = append(edges, float64(len(samples)-last)/sampleRate*1e6)
	}
	return edges, nil
}
