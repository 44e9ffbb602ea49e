package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/g2c1/internal/testutil/testlog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestTemplatesLoad(t *testing.T) {
	testlog.Start(t)
	for _, kind := range []string{"ctl", "lab"} {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := WriteTemplate(path, kind, false); err != nil {
			t.Fatalf("write %s template: %v", kind, err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("load %s template: %v", kind, err)
		}
		if cfg.Encoder.TariUs != 12 || cfg.Decoder.SampleRateHz != 2e6 || !*cfg.Decoder.Pad {
			t.Fatalf("%s template values: %+v", kind, cfg)
		}
		if err := WriteTemplate(path, kind, false); err == nil {
			t.Fatalf("expected refusal to overwrite %s", path)
		}
		if err := WriteTemplate(path, kind, true); err != nil {
			t.Fatalf("forced overwrite: %v", err)
		}
	}
	if _, err := Template("ghost"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load(writeConfig(t, "[encoder]\ntari_us = 25.0\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Encoder.TariUs != 25 || cfg.Encoder.BLFkHz != 320 {
		t.Fatalf("encoder = %+v", cfg.Encoder)
	}
	if cfg.Lab.Addr != ":9200" || cfg.Sequencer.Baud != 9600 || *cfg.Sequencer.Retries != 1 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}

	dec, err := DecoderSettings(cfg.Decoder)
	if err != nil {
		t.Fatalf("decoder settings: %v", err)
	}
	if dec.Calibration.ToleranceUs != 1 || dec.MaxSymbolUs != 250 || !dec.Schmitt.Pad {
		t.Fatalf("decoder settings = %+v", dec)
	}
	seq, err := SequencerSettings(cfg.Sequencer)
	if err != nil {
		t.Fatalf("sequencer settings: %v", err)
	}
	if seq.ReadTimeout != 2*time.Second || seq.Retries != 1 {
		t.Fatalf("sequencer settings = %+v", seq)
	}
}

func TestLoadExplicitZeroes(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load(writeConfig(t, "[decoder]\npad = false\n[sequencer]\nretries = 0\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *cfg.Decoder.Pad || *cfg.Sequencer.Retries != 0 {
		t.Fatalf("explicit values overwritten: pad=%v retries=%d", *cfg.Decoder.Pad, *cfg.Sequencer.Retries)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"encoder":   "[encoder]\ntari_us = 40.0\n",
		"decoder":   "[decoder]\nhysteresis = 0.7\n",
		"sequencer": "[sequencer]\nread_timeout = \"soon\"\n",
		"retries":   "[sequencer]\nretries = -1\n",
	}
	for name, body := range cases {
		_, err := Load(writeConfig(t, body))
		if err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
		if !strings.Contains(err.Error(), "config invalid") {
			t.Fatalf("%s: unexpected error %v", name, err)
		}
	}
	if _, err := Load(writeConfig(t, "[encoder\n")); err == nil || !strings.Contains(err.Error(), "config parse failed") {
		t.Fatalf("expected parse error, got %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected load error for missing file")
	}
}
