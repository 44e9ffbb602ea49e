package observability

import (
	"testing"
	"time"

	"github.com/danmuck/g2c1/internal/testutil/testlog"
	"github.com/rs/zerolog/log"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("lab-a", "GET", "/health", 200, 12*time.Millisecond)
	RecordEncode("Query", 49)
	RecordDecode("QueryRep", DecodeDecoded)
	RecordDecode("", DecodeUnresolved)
	RecordSequencer("tx", true)
	RecordSequencer("pow_on", false)

	log.Info().Msg("observability/metrics: registration idempotent and recording paths executed")
}
