package edge

import (
	"errors"
	"fmt"

	"github.com/danmuck/g2c1/internal/pie"
)

// Calibration windows. Ratios bound RTcal against Tari and TRcal against RTcal;
// every window is widened by DefaultToleranceUs on both ends.
const (
	DefaultToleranceUs = 1.0
	RTcalMinRatio      = 2.5
	RTcalMaxRatio      = 3.0
	TRcalMinRatio      = 1.1
	TRcalMaxRatio      = 3.0
	// MaxSymbolUs exceeds every legal PIE symbol; longer intervals are idle carrier.
	MaxSymbolUs = 250.0

	DefaultThresholdRatio = 0.5
	DefaultHysteresis     = 0.1
)

var ErrInvalidConfig = errors.New("edge: invalid config")

// Calibration holds the symbol classification windows.
type Calibration struct {
	MinTariUs     float64
	MaxTariUs     float64
	RTcalMinRatio float64
	RTcalMaxRatio float64
	TRcalMinRatio float64
	TRcalMaxRatio float64
	ToleranceUs   float64
}

func DefaultCalibration() Calibration {
	return Calibration{
		MinTariUs:     pie.MinTariUs,
		MaxTariUs:     pie.MaxTariUs,
		RTcalMinRatio: RTcalMinRatio,
		RTcalMaxRatio: RTcalMaxRatio,
		TRcalMinRatio: TRcalMinRatio,
		TRcalMaxRatio: TRcalMaxRatio,
		ToleranceUs:   DefaultToleranceUs,
	}
}

func (c Calibration) isTari(d float64) bool {
	return d >= c.MinTariUs-c.ToleranceUs && d <= c.MaxTariUs+c.ToleranceUs
}

func (c Calibration) isRTcal(tari, d float64) bool {
	return d >= c.RTcalMinRatio*tari-c.ToleranceUs && d <= c.RTcalMaxRatio*tari+c.ToleranceUs
}

func (c Calibration) isTRcal(rtCal, d float64) bool {
	return d >= c.TRcalMinRatio*rtCal-c.ToleranceUs && d <= c.TRcalMaxRatio*rtCal+c.ToleranceUs
}

func (c Calibration) Validate() error {
	switch {
	case c.MinTariUs <= 0 || c.MaxTariUs < c.MinTariUs:
		return fmt.Errorf("%w: tari window [%.2f, %.2f]", ErrInvalidConfig, c.MinTariUs, c.MaxTariUs)
	case c.RTcalMinRatio <= 0 || c.RTcalMaxRatio < c.RTcalMinRatio:
		return fmt.Errorf("%w: rtcal ratios [%.2f, %.2f]", ErrInvalidConfig, c.RTcalMinRatio, c.RTcalMaxRatio)
	case c.TRcalMinRatio <= 0 || c.TRcalMaxRatio < c.TRcalMinRatio:
		return fmt.Errorf("%w: trcal ratios [%.2f, %.2f]", ErrInvalidConfig, c.TRcalMinRatio, c.TRcalMaxRatio)
	case c.ToleranceUs < 0:
		return fmt.Errorf("%w: negative tolerance", ErrInvalidConfig)
	}
	return nil
}

// Schmitt configures the sample comparator.
type Schmitt struct {
	// Ratio places the midpoint between the window min (0) and max (1).
	Ratio float64
	// Hysteresis is the half band around the midpoint, as a fraction of the range.
	Hysteresis float64
	// Pad synthesizes a closing rising edge when the window ends low.
	Pad bool
}

func DefaultSchmitt() Schmitt {
	return Schmitt{Ratio: DefaultThresholdRatio, Hysteresis: DefaultHysteresis, Pad: true}
}

func (s Schmitt) Validate() error {
	if s.Hysteresis < 0 || s.Ratio-s.Hysteresis <= 0 || s.Ratio+s.Hysteresis >= 1 {
		return fmt.Errorf("%w: threshold %.2f±%.2f leaves the sample range", ErrInvalidConfig, s.Ratio, s.Hysteresis)
	}
	return nil
}

// Config bundles the decoder stages.
type Config struct {
	Calibration Calibration
	Schmitt     Schmitt
	MaxSymbolUs float64
}

func DefaultConfig() Config {
	return Config{
		Calibration: DefaultCalibration(),
		Schmitt:     DefaultSchmitt(),
		MaxSymbolUs: MaxSymbolUs,
	}
}

func (c Config) Validate() error {
	if err := c.Calibration.Validate(); err != nil {
		return err
	}
	if err := c.Schmitt.Validate(); err != nil {
		return err
	}
	if c.MaxSymbolUs <= 0 {
		return fmt.Errorf("%w: max symbol %.2f", ErrInvalidConfig, c.MaxSymbolUs)
	}
	return nil
}
