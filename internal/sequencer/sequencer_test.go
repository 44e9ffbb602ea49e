package sequencer

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/danmuck/g2c1/internal/pie"
	"github.com/danmuck/g2c1/internal/protocol"
	"github.com/danmuck/g2c1/internal/testutil/testlog"
	"github.com/rs/zerolog/log"
)

// mockPort records writes and replays scripted responses, one per read.
type mockPort struct {
	mu       sync.Mutex
	writes   [][]byte
	replies  [][]byte
	writeErr error
	closed   bool
}

func (p *mockPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.writes = append(p.writes, append([]byte{}, b...))
	return len(b), nil
}

func (p *mockPort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.replies) == 0 {
		return 0, io.EOF
	}
	n := copy(b, p.replies[0])
	p.replies = p.replies[1:]
	return n, nil
}

func (p *mockPort) Close() error {
	p.closed = true
	return nil
}

func TestPowerFrames(t *testing.T) {
	testlog.Start(t)
	port := &mockPort{replies: [][]byte{[]byte("1\n"), []byte("1\n")}}
	seq := New(port, 1, log.Logger)

	if !seq.Power(true) || !seq.Power(false) {
		t.Fatalf("power requests should be acknowledged")
	}
	if len(port.writes) != 2 {
		t.Fatalf("writes = %d, want 2", len(port.writes))
	}
	if string(port.writes[0]) != "POW ON\x00" || string(port.writes[1]) != "POW OFF\x00" {
		t.Fatalf("unexpected frames %q", port.writes)
	}
}

func TestTransmitRetriesOnce(t *testing.T) {
	testlog.Start(t)
	port := &mockPort{replies: [][]byte{[]byte("0\n"), []byte("1\n")}}
	seq := New(port, 1, log.Logger)

	if !seq.Transmit([]byte{12, 6, 6}) {
		t.Fatalf("second attempt should be acknowledged")
	}
	if len(port.writes) != 2 {
		t.Fatalf("writes = %d, want 2", len(port.writes))
	}
	want := []byte{'T', 'X', ' ', 12, 6, 6, 0}
	for _, w := range port.writes {
		if !bytes.Equal(w, want) {
			t.Fatalf("frame = %v, want %v", w, want)
		}
	}
}

func TestFailuresReturnFalse(t *testing.T) {
	testlog.Start(t)
	silent := &mockPort{}
	if New(silent, 1, log.Logger).Power(true) {
		t.Fatalf("silent port must not acknowledge")
	}
	if len(silent.writes) != 2 {
		t.Fatalf("writes = %d, want one retry", len(silent.writes))
	}

	broken := &mockPort{writeErr: errors.New("unplugged")}
	if New(broken, 3, log.Logger).Transmit([]byte{1}) {
		t.Fatalf("write failure must not acknowledge")
	}

	noRetry := &mockPort{replies: [][]byte{[]byte("0"), []byte("1")}}
	if New(noRetry, -2, log.Logger).Power(false) {
		t.Fatalf("zero retries must stop after the first nack")
	}
}

func TestSendCommandEncodesPulses(t *testing.T) {
	testlog.Start(t)
	enc, err := pie.NewEncoder(pie.DefaultConfig())
	if err != nil {
		t.Fatalf("new encoder: %v", err)
	}
	port := &mockPort{replies: [][]byte{[]byte("1")}}
	seq := New(port, 0, log.Logger)

	ok, err := seq.SendCommand(enc, protocol.NewQueryRep(1))
	if err != nil || !ok {
		t.Fatalf("send: ok=%v err=%v", ok, err)
	}
	want := append([]byte("TX "), 12, 6, 6, 30, 6, 6, 6, 6, 6, 6, 6, 18, 6, 0)
	if !bytes.Equal(port.writes[0], want) {
		t.Fatalf("frame = %v, want %v", port.writes[0], want)
	}

	if _, err := seq.SendCommand(enc, protocol.NewQueryRep(7)); !errors.Is(err, protocol.ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	slow, _ := pie.NewEncoder(pie.Config{TariUs: 25, BLFkHz: 40})
	if _, err := seq.SendCommand(slow, protocol.NewQuery(protocol.DefaultQueryParams())); !errors.Is(err, pie.ErrPulseRange) {
		t.Fatalf("expected ErrPulseRange, got %v", err)
	}
	if len(port.writes) != 1 {
		t.Fatalf("failed encodes must not reach the port")
	}
}

func TestCloseAndOpen(t *testing.T) {
	testlog.Start(t)
	port := &mockPort{}
	if err := New(port, 0, log.Logger).Close(); err != nil || !port.closed {
		t.Fatalf("close: err=%v closed=%v", err, port.closed)
	}
	if _, err := Open(Config{}, log.Logger); !errors.Is(err, ErrNoPort) {
		t.Fatalf("expected ErrNoPort, got %v", err)
	}
}

func TestRetriesBackOff(t *testing.T) {
	testlog.Start(t)
	port := &mockPort{}
	seq := New(port, 3, log.Logger).WithBackoff(Backoff{InitialDelay: 10 * time.Millisecond, MaxDelay: 25 * time.Millisecond, Multiplier: 2})
	var slept []time.Duration
	seq.sleep = func(d time.Duration) { slept = append(slept, d) }

	if seq.Power(true) {
		t.Fatalf("silent port must not acknowledge")
	}
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 25 * time.Millisecond}
	if len(slept) != len(want) {
		t.Fatalf("slept %v, want %v", slept, want)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Fatalf("slept %v, want %v", slept, want)
		}
	}
	if len(port.writes) != 4 {
		t.Fatalf("writes = %d, want 4", len(port.writes))
	}
}

func TestBackoffDelay(t *testing.T) {
	testlog.Start(t)
	if (Backoff{}).Delay(3) != 0 {
		t.Fatalf("zero backoff must not delay")
	}
	b := Backoff{InitialDelay: time.Millisecond, Multiplier: 0.5}
	if b.Delay(4) != time.Millisecond {
		t.Fatalf("multiplier below 1 must hold the delay, got %v", b.Delay(4))
	}
	if d := DefaultBackoff().Delay(10); d != 500*time.Millisecond {
		t.Fatalf("default backoff must cap at 500ms, got %v", d)
	}
}
