// Package sequencer drives a microcontroller pulse sequencer over a serial link.
//
// Requests are NUL-terminated: "TX " followed by one byte per pulse, "POW ON",
// and "POW OFF". The sequencer answers with a line containing '1' on success.
package sequencer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/danmuck/g2c1/internal/observability"
	"github.com/danmuck/g2c1/internal/pie"
	"github.com/danmuck/g2c1/internal/protocol"
	"github.com/rs/zerolog"
	"github.com/tarm/serial"
)

const (
	RequestTransmit = "tx"
	RequestPowerOn  = "pow_on"
	RequestPowerOff = "pow_off"

	terminator = 0x00
	ackByte    = '1'
)

var ErrNoPort = errors.New("sequencer: serial port name is required")

type Config struct {
	Port        string
	Baud        int
	ReadTimeout time.Duration
	// Retries is the number of extra attempts after an unacknowledged request.
	Retries int
	Backoff Backoff
}

func DefaultConfig() Config {
	return Config{
		Baud:        9600,
		ReadTimeout: 2 * time.Second,
		Retries:     1,
		Backoff:     DefaultBackoff(),
	}
}

// Sequencer serializes requests; the port carries one outstanding request at a time.
type Sequencer struct {
	mu      sync.Mutex
	port    io.ReadWriter
	retries int
	backoff Backoff
	sleep   func(time.Duration)
	logger  zerolog.Logger
}

// Open dials the serial device named in cfg.
func Open(cfg Config, logger zerolog.Logger) (*Sequencer, error) {
	if cfg.Port == "" {
		return nil, ErrNoPort
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Port,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", cfg.Port, err)
	}
	logger.Info().Str("port", cfg.Port).Int("baud", cfg.Baud).Msg("sequencer port open")
	return New(port, cfg.Retries, logger).WithBackoff(cfg.Backoff), nil
}

// New wraps an already open port.
func New(port io.ReadWriter, retries int, logger zerolog.Logger) *Sequencer {
	if retries < 0 {
		retries = 0
	}
	return &Sequencer{
		port:    port,
		retries: retries,
		backoff: DefaultBackoff(),
		sleep:   time.Sleep,
		logger:  logger.With().Str("component", "sequencer").Logger(),
	}
}

func (s *Sequencer) WithBackoff(b Backoff) *Sequencer {
	s.backoff = b
	return s
}

func (s *Sequencer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.port.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Power switches the reader carrier.
func (s *Sequencer) Power(on bool) bool {
	if on {
		return s.request(RequestPowerOn, []byte("POW ON"))
	}
	return s.request(RequestPowerOff, []byte("POW OFF"))
}

// Transmit plays one byte-per-pulse train.
func (s *Sequencer) Transmit(pulses []byte) bool {
	payload := make([]byte, 0, len(pulses)+3)
	payload = append(payload, "TX "...)
	payload = append(payload, pulses...)
	return s.request(RequestTransmit, payload)
}

// SendCommand encodes cmd and transmits it. Encoding failures are errors;
// an unacknowledged transmit is reported as false.
func (s *Sequencer) SendCommand(enc *pie.Encoder, cmd protocol.Command) (bool, error) {
	pulses, err := enc.Pulses(cmd)
	if err != nil {
		return false, err
	}
	raw, err := pie.Bytes(pulses)
	if err != nil {
		return false, err
	}
	return s.Transmit(raw), nil
}

func (s *Sequencer) request(kind string, payload []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	frame := append(append([]byte{}, payload...), terminator)
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			s.sleep(s.backoff.Delay(attempt))
		}
		if _, err := s.port.Write(frame); err != nil {
			s.logger.Warn().Str("request", kind).Int("attempt", attempt).Err(err).Msg("sequencer write failed")
			continue
		}
		resp := make([]byte, 64)
		n, err := s.port.Read(resp)
		if err != nil && !errors.Is(err, io.EOF) {
			s.logger.Warn().Str("request", kind).Int("attempt", attempt).Err(err).Msg("sequencer read failed")
			continue
		}
		if bytes.IndexByte(resp[:n], ackByte) >= 0 {
			observability.RecordSequencer(kind, true)
			s.logger.Debug().Str("request", kind).Int("attempt", attempt).Msg("sequencer ack")
			return true
		}
		s.logger.Warn().Str("request", kind).Int("attempt", attempt).Bytes("response", resp[:n]).Msg("sequencer nack")
	}
	observability.RecordSequencer(kind, false)
	s.logger.Error().Str("request", kind).Int("attempts", s.retries+1).Msg("sequencer request failed")
	return false
}
