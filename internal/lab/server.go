// Package lab exposes the codec and the pulse sequencer over HTTP for bench work.
package lab

import (
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/g2c1/internal/edge"
	"github.com/danmuck/g2c1/internal/observability"
	"github.com/danmuck/g2c1/internal/pie"
	"github.com/danmuck/g2c1/internal/protocol"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const version = "0.1.0"

// Transmitter is the part of the sequencer the lab drives.
type Transmitter interface {
	Power(on bool) bool
	SendCommand(enc *pie.Encoder, cmd protocol.Command) (bool, error)
}

var ErrNoSequencer = errors.New("lab: no sequencer attached")

type Options struct {
	ID           string
	Addr         string
	CorsOrigins  []string
	Encoder      *pie.Encoder
	Decoder      *edge.Decoder
	SampleRateHz float64
	// Sequencer may be nil; the sequencer routes then answer 503.
	Sequencer Transmitter
}

type Server struct {
	ID       string
	Addr     string
	Appeared time.Time

	encoder    *pie.Encoder
	decoder    *edge.Decoder
	sampleRate float64
	sequencer  Transmitter
	router     *gin.Engine
}

func New(opts Options) *Server {
	observability.RegisterMetrics()
	if opts.ID == "" {
		opts.ID = "g2c1lab"
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestObserver(log.Logger, opts.ID))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(opts.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	return &Server{
		ID:         opts.ID,
		Addr:       opts.Addr,
		Appeared:   time.Now(),
		encoder:    opts.Encoder,
		decoder:    opts.Decoder,
		sampleRate: opts.SampleRateHz,
		sequencer:  opts.Sequencer,
		router:     r,
	}
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":     s.encoder != nil && s.decoder != nil,
			"sequencer": s.sequencer != nil,
			"uptime":    time.Since(s.Appeared).String(),
			"service":   s.ID,
			"version":   version,
		})
	})

	s.router.GET("/commands", s.handleCommands)
	s.router.POST("/encode", s.handleEncode)
	s.router.POST("/decode", s.handleDecode)
	s.router.POST("/sequencer/power", s.handlePower)
	s.router.POST("/sequencer/tx", s.handleTransmit)
}

func (s *Server) Serve() error {
	s.RegisterRoutes()
	log.Info().Str("service", s.ID).Str("addr", s.Addr).Msg("lab listening")
	return s.router.Run(s.Addr)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
