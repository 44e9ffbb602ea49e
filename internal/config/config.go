package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the shared file layout for g2c1ctl and g2c1lab.
type Config struct {
	Encoder   EncoderConfig   `toml:"encoder"`
	Decoder   DecoderConfig   `toml:"decoder"`
	Sequencer SequencerConfig `toml:"sequencer"`
	Lab       LabConfig       `toml:"lab"`
}

type EncoderConfig struct {
	TariUs float64 `toml:"tari_us"`
	BLFkHz float64 `toml:"blf_khz"`
}

type DecoderConfig struct {
	SampleRateHz   float64 `toml:"sample_rate_hz"`
	ThresholdRatio float64 `toml:"threshold_ratio"`
	Hysteresis     float64 `toml:"hysteresis"`
	MaxSymbolUs    float64 `toml:"max_symbol_us"`
	ToleranceUs    float64 `toml:"tolerance_us"`
	Pad            *bool   `toml:"pad"`
}

type SequencerConfig struct {
	Port        string `toml:"port"`
	Baud        int    `toml:"baud"`
	ReadTimeout string `toml:"read_timeout"`
	Retries     *int   `toml:"retries"`
}

type LabConfig struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

// Default is the configuration used when no file is given.
func Default() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

// Load reads path, fills unset values with defaults and validates the result.
func Load(path string) (Config, error) {
	var cfg Config
	if err := loadToml(path, &cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Encoder.TariUs == 0 {
		cfg.Encoder.TariUs = 12
	}
	if cfg.Encoder.BLFkHz == 0 {
		cfg.Encoder.BLFkHz = 320
	}
	if cfg.Decoder.SampleRateHz == 0 {
		cfg.Decoder.SampleRateHz = 2e6
	}
	if cfg.Decoder.ThresholdRatio == 0 {
		cfg.Decoder.ThresholdRatio = 0.5
	}
	if cfg.Decoder.Hysteresis == 0 {
		cfg.Decoder.Hysteresis = 0.1
	}
	if cfg.Decoder.MaxSymbolUs == 0 {
		cfg.Decoder.MaxSymbolUs = 250
	}
	if cfg.Decoder.ToleranceUs == 0 {
		cfg.Decoder.ToleranceUs = 1
	}
	if cfg.Decoder.Pad == nil {
		pad := true
		cfg.Decoder.Pad = &pad
	}
	if cfg.Sequencer.Baud == 0 {
		cfg.Sequencer.Baud = 9600
	}
	if strings.TrimSpace(cfg.Sequencer.ReadTimeout) == "" {
		cfg.Sequencer.ReadTimeout = "2s"
	}
	if cfg.Sequencer.Retries == nil {
		retries := 1
		cfg.Sequencer.Retries = &retries
	}
	if strings.TrimSpace(cfg.Lab.Addr) == "" {
		cfg.Lab.Addr = ":9200"
	}
}

func Validate(cfg Config) error {
	if _, err := EncoderSettings(cfg.Encoder); err != nil {
		return fmt.Errorf("encoder: %w", err)
	}
	if _, err := DecoderSettings(cfg.Decoder); err != nil {
		return fmt.Errorf("decoder: %w", err)
	}
	if cfg.Decoder.SampleRateHz < 0 {
		return fmt.Errorf("decoder: sample_rate_hz must be positive")
	}
	if _, err := SequencerSettings(cfg.Sequencer); err != nil {
		return fmt.Errorf("sequencer: %w", err)
	}
	if strings.TrimSpace(cfg.Lab.Addr) == "" {
		return fmt.Errorf("lab: addr is required")
	}
	return nil
}

func parseTimeout(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse read_timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("read_timeout must be positive")
	}
	return d, nil
}
