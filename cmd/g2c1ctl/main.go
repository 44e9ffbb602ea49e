package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/danmuck/g2c1/internal/config"
	"github.com/danmuck/g2c1/internal/edge"
	"github.com/danmuck/g2c1/internal/logging"
	"github.com/danmuck/g2c1/internal/pie"
	"github.com/danmuck/g2c1/internal/protocol"
	"github.com/danmuck/g2c1/internal/sequencer"
	"github.com/rs/zerolog/log"
)

const usage = `usage: g2c1ctl [-config path] <command> [flags]

commands:
  catalog               list dispatchable reader commands
  encode                render a command as pulses, ints, bytes or samples
  decode                decode a capture file or an edge list
  send                  transmit a command through the pulse sequencer
  power on|off          switch the reader carrier
`

func main() {
	logging.ConfigureRuntime()
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "g2c1ctl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	global := flag.NewFlagSet("g2c1ctl", flag.ContinueOnError)
	configPath := global.String("config", "", "config file (defaults apply when empty)")
	global.Usage = func() { fmt.Fprint(global.Output(), usage) }
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return errors.New("missing command")
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		log.Debug().Str("path", *configPath).Msg("loaded g2c1ctl config")
	}

	rest := global.Args()
	switch rest[0] {
	case "catalog":
		return runCatalog(stdout)
	case "encode":
		return runEncode(cfg, rest[1:], stdout)
	case "decode":
		return runDecode(cfg, rest[1:], stdout)
	case "send":
		return runSend(cfg, rest[1:], stdout)
	case "power":
		return runPower(cfg, rest[1:], stdout)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

// fieldFlags collects repeated -set name=value pairs.
type fieldFlags map[string]string

func (f fieldFlags) String() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k+"="+f[k])
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func (f fieldFlags) Set(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("expected name=value, got %q", raw)
	}
	f[strings.TrimSpace(name)] = strings.TrimSpace(value)
	return nil
}

func commandFlags(name string) (*flag.FlagSet, *string, fieldFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	cmd := fs.String("command", "Query", "command name, see catalog")
	fields := fieldFlags{}
	fs.Var(fields, "set", "field value as name=value, repeatable")
	return fs, cmd, fields
}

func runCatalog(stdout io.Writer) error {
	for _, e := range protocol.Catalog() {
		cmd := e.New()
		values := protocol.Values(cmd)
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k+"="+values[k])
		}
		sort.Strings(keys)
		fmt.Fprintf(stdout, "%-12s %-8s %2d bits  %s\n", e.Name, e.Opcode, cmd.Width(), strings.Join(keys, " "))
	}
	return nil
}

func runEncode(cfg config.Config, args []string, stdout io.Writer) error {
	fs, name, fields := commandFlags("encode")
	format := fs.String("format", "pulses", "output: pulses|ints|bytes|samples|capture")
	rate := fs.Float64("rate", cfg.Decoder.SampleRateHz, "sample rate in Hz for samples and capture output")
	idle := fs.Float64("idle", 0, "trailing carrier in µs appended after the command")
	out := fs.String("out", "", "capture file path for -format capture")
	if err := fs.Parse(args); err != nil {
		return err
	}

	enc, err := newEncoder(cfg)
	if err != nil {
		return err
	}
	cmd, err := protocol.Build(*name, fields)
	if err != nil {
		return err
	}
	var pulses []float64
	if *idle > 0 {
		pulses, err = enc.Sequence(*idle, cmd)
	} else {
		pulses, err = enc.Pulses(cmd)
	}
	if err != nil {
		return err
	}

	switch *format {
	case "pulses":
		fmt.Fprintln(stdout, joinFloats(pulses))
	case "ints":
		ints := pie.Ints(pulses)
		parts := make([]string, len(ints))
		for i, v := range ints {
			parts[i] = strconv.Itoa(v)
		}
		fmt.Fprintln(stdout, strings.Join(parts, " "))
	case "bytes":
		raw, err := pie.Bytes(pulses)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "% x\n", raw)
	case "samples":
		samples, err := pie.Samples(pulses, *rate)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, joinFloats(samples))
	case "capture":
		if *out == "" {
			return errors.New("-out is required for capture output")
		}
		samples, err := pie.Samples(pulses, *rate)
		if err != nil {
			return err
		}
		if err := writeCapture(*out, capture{SampleRateHz: *rate, Samples: samples, Note: cmd.String()}); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %d samples of %s to %s\n", len(samples), cmd, *out)
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
	return nil
}

func runDecode(cfg config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	capturePath := fs.String("capture", "", "TOML capture file with samples or edges")
	edgeList := fs.String("edges", "", "comma separated edge durations in µs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	decCfg, err := config.DecoderSettings(cfg.Decoder)
	if err != nil {
		return err
	}
	dec, err := edge.NewDecoder(decCfg, log.Logger)
	if err != nil {
		return err
	}

	var decoded []edge.Command
	switch {
	case *capturePath != "":
		c, err := loadCapture(*capturePath, cfg.Decoder.SampleRateHz)
		if err != nil {
			return err
		}
		if len(c.Samples) > 0 {
			decoded, err = dec.DecodeSamples(c.Samples, c.SampleRateHz)
			if err != nil {
				return err
			}
		} else {
			decoded = dec.DecodeEdges(c.Edges)
		}
	case *edgeList != "":
		edges, err := parseFloats(*edgeList)
		if err != nil {
			return err
		}
		decoded = dec.DecodeEdges(edges)
	default:
		return errors.New("decode needs -capture or -edges")
	}

	for i, d := range decoded {
		if d.Err != nil {
			fmt.Fprintf(stdout, "%d: [%d,%d) bits=%s error: %v\n", i, d.Start, d.End, d.Bits, d.Err)
			continue
		}
		line := fmt.Sprintf("%d: [%d,%d) %s tari=%.2fµs rtcal=%.2fµs", i, d.Start, d.End, d.Message, d.Tari, d.RTcal)
		if d.Extended() {
			line += fmt.Sprintf(" trcal=%.2fµs", d.TRcal)
		}
		if d.BLFkHz > 0 {
			line += fmt.Sprintf(" blf=%.1fkHz", d.BLFkHz)
		}
		fmt.Fprintln(stdout, line)
	}
	return nil
}

func runSend(cfg config.Config, args []string, stdout io.Writer) error {
	fs, name, fields := commandFlags("send")
	if err := fs.Parse(args); err != nil {
		return err
	}
	enc, err := newEncoder(cfg)
	if err != nil {
		return err
	}
	cmd, err := protocol.Build(*name, fields)
	if err != nil {
		return err
	}
	seq, err := openSequencer(cfg)
	if err != nil {
		return err
	}
	defer seq.Close()

	acked, err := seq.SendCommand(enc, cmd)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s acked=%v\n", cmd, acked)
	return nil
}

func runPower(cfg config.Config, args []string, stdout io.Writer) error {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return errors.New("power needs on or off")
	}
	seq, err := openSequencer(cfg)
	if err != nil {
		return err
	}
	defer seq.Close()

	acked := seq.Power(args[0] == "on")
	fmt.Fprintf(stdout, "power %s acked=%v\n", args[0], acked)
	return nil
}

func newEncoder(cfg config.Config) (*pie.Encoder, error) {
	encCfg, err := config.EncoderSettings(cfg.Encoder)
	if err != nil {
		return nil, err
	}
	return pie.NewEncoder(encCfg)
}

func openSequencer(cfg config.Config) (*sequencer.Sequencer, error) {
	seqCfg, err := config.SequencerSettings(cfg.Sequencer)
	if err != nil {
		return nil, err
	}
	return sequencer.Open(seqCfg, log.Logger)
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, " ")
}

func parseFloats(raw string) ([]float64, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("parse edge %q: %w", f, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func createFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
}
