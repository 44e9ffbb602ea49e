package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "ctl":
		return ctlTemplate, nil
	case "lab":
		return labTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

// DefaultPath is where a config of kind lives in the repo.
func DefaultPath(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "ctl":
		return "cmd/g2c1ctl/config.toml", nil
	case "lab":
		return "cmd/g2c1lab/config.toml", nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const ctlTemplate = `[encoder]
tari_us = 12.0
blf_khz = 320.0

[decoder]
sample_rate_hz = 2000000.0
threshold_ratio = 0.5
hysteresis = 0.1
max_symbol_us = 250.0
tolerance_us = 1.0
pad = true

[sequencer]
port = "/dev/ttyUSB0"
baud = 9600
read_timeout = "2s"
retries = 1
`

const labTemplate = `[encoder]
tari_us = 12.0
blf_khz = 320.0

[decoder]
sample_rate_hz = 2000000.0
pad = true

[sequencer]
port = ""
retries = 1

[lab]
addr = ":9200"
cors_origins = ["http://localhost:3000"]
`
