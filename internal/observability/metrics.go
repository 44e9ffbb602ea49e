package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Decode outcomes recorded per command.
const (
	DecodeDecoded    = "decoded"
	DecodeUnresolved = "unresolved"
	DecodeNoBits     = "no_bits"
	DecodeDispatch   = "dispatch_failed"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "g2c1",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "g2c1",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	encodedCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "g2c1",
			Subsystem: "encoder",
			Name:      "commands_total",
			Help:      "Reader commands rendered to PIE pulses.",
		},
		[]string{"command"},
	)
	encodedPulses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "g2c1",
			Subsystem: "encoder",
			Name:      "pulses_total",
			Help:      "PIE pulses produced.",
		},
	)
	decodedCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "g2c1",
			Subsystem: "decoder",
			Name:      "commands_total",
			Help:      "Edge segments decoded, by outcome.",
		},
		[]string{"command", "result"},
	)
	sequencerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "g2c1",
			Subsystem: "sequencer",
			Name:      "requests_total",
			Help:      "Requests sent to the pulse sequencer.",
		},
		[]string{"request", "acked"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			encodedCommands,
			encodedPulses,
			decodedCommands,
			sequencerRequests,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordEncode(command string, pulses int) {
	RegisterMetrics()
	encodedCommands.WithLabelValues(command).Inc()
	encodedPulses.Add(float64(pulses))
}

// RecordDecode counts one decoded segment. command is empty when dispatch did not resolve one.
func RecordDecode(command, result string) {
	RegisterMetrics()
	if command == "" {
		command = "none"
	}
	decodedCommands.WithLabelValues(command, result).Inc()
}

func RecordSequencer(request string, acked bool) {
	RegisterMetrics()
	sequencerRequests.WithLabelValues(request, strconv.FormatBool(acked)).Inc()
}
