package lab

import (
	"errors"
	"net/http"

	"github.com/danmuck/g2c1/internal/edge"
	"github.com/danmuck/g2c1/internal/pie"
	"github.com/danmuck/g2c1/internal/protocol"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type CommandInfo struct {
	Name   string            `json:"name"`
	Opcode string            `json:"opcode"`
	Fields map[string]string `json:"fields"`
	Width  int               `json:"width"`
}

type commandRequest struct {
	Command string            `json:"command" binding:"required"`
	Fields  map[string]string `json:"fields"`
}

type encodeRequest struct {
	commandRequest
	// SampleRateHz adds a sample rendering when positive.
	SampleRateHz float64 `json:"sample_rate_hz"`
}

type encodeResponse struct {
	Command string    `json:"command"`
	Bits    string    `json:"bits"`
	Pulses  []float64 `json:"pulses"`
	Ints    []int     `json:"ints"`
	Samples []float64 `json:"samples,omitempty"`
}

type decodeRequest struct {
	Edges        []float64 `json:"edges"`
	Samples      []float64 `json:"samples"`
	SampleRateHz float64   `json:"sample_rate_hz"`
}

type DecodedCommand struct {
	Name    string            `json:"name,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Bits    string            `json:"bits"`
	TariUs  float64           `json:"tari_us"`
	RTcalUs float64           `json:"rtcal_us"`
	TRcalUs float64           `json:"trcal_us"`
	BLFkHz  float64           `json:"blf_khz,omitempty"`
	Start   int               `json:"start"`
	End     int               `json:"end"`
	StartUs float64           `json:"start_us"`
	Error   string            `json:"error,omitempty"`
}

type powerRequest struct {
	On bool `json:"on"`
}

func (s *Server) handleCommands(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"commands": Catalog()})
}

// Catalog lists the dispatchable commands with their default field values.
func Catalog() []CommandInfo {
	entries := protocol.Catalog()
	out := make([]CommandInfo, 0, len(entries))
	for _, e := range entries {
		cmd := e.New()
		out = append(out, CommandInfo{
			Name:   e.Name,
			Opcode: e.Opcode.String(),
			Fields: protocol.Values(cmd),
			Width:  cmd.Width(),
		})
	}
	return out
}

func (s *Server) handleEncode(c *gin.Context) {
	var req encodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd, ok := buildCommand(c, req.commandRequest)
	if !ok {
		return
	}
	bits, err := cmd.ToBits()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pulses, err := s.encoder.Pulses(cmd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp := encodeResponse{
		Command: cmd.String(),
		Bits:    bits.String(),
		Pulses:  pulses,
		Ints:    pie.Ints(pulses),
	}
	if req.SampleRateHz > 0 {
		samples, err := pie.Samples(pulses, req.SampleRateHz)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		resp.Samples = samples
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDecode(c *gin.Context) {
	var req decodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var decoded []edge.Command
	switch {
	case len(req.Samples) > 0:
		rate := req.SampleRateHz
		if rate == 0 {
			rate = s.sampleRate
		}
		out, err := s.decoder.DecodeSamples(req.Samples, rate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		decoded = out
	case len(req.Edges) > 0:
		decoded = s.decoder.DecodeEdges(req.Edges)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "edges or samples required"})
		return
	}

	out := make([]DecodedCommand, 0, len(decoded))
	for _, d := range decoded {
		out = append(out, Describe(d))
	}
	c.JSON(http.StatusOK, gin.H{"commands": out})
}

// Describe flattens a decode result for JSON.
func Describe(d edge.Command) DecodedCommand {
	out := DecodedCommand{
		Bits:    d.Bits.String(),
		TariUs:  d.Tari,
		RTcalUs: d.RTcal,
		TRcalUs: d.TRcal,
		BLFkHz:  d.BLFkHz,
		Start:   d.Start,
		End:     d.End,
		StartUs: d.StartUs,
	}
	if d.Message != nil {
		out.Name = d.Message.Name()
		out.Fields = protocol.Values(d.Message)
	}
	if d.Err != nil {
		out.Error = d.Err.Error()
	}
	return out
}

func (s *Server) handlePower(c *gin.Context) {
	if s.sequencer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": ErrNoSequencer.Error()})
		return
	}
	var req powerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	acked := s.sequencer.Power(req.On)
	log.Info().Str("service", s.ID).Bool("on", req.On).Bool("acked", acked).Msg("sequencer power")
	c.JSON(http.StatusOK, gin.H{"acked": acked})
}

func (s *Server) handleTransmit(c *gin.Context) {
	if s.sequencer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": ErrNoSequencer.Error()})
		return
	}
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd, ok := buildCommand(c, req)
	if !ok {
		return
	}
	acked, err := s.sequencer.SendCommand(s.encoder, cmd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Info().Str("service", s.ID).Str("command", cmd.String()).Bool("acked", acked).Msg("sequencer transmit")
	c.JSON(http.StatusOK, gin.H{"command": cmd.String(), "acked": acked})
}

func buildCommand(c *gin.Context, req commandRequest) (protocol.Command, bool) {
	cmd, err := protocol.Build(req.Command, req.Fields)
	if err != nil {
		status := http.StatusBadRequest
		if _, known := protocol.Lookup(req.Command); !known && errors.Is(err, protocol.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return nil, false
	}
	return cmd, true
}
