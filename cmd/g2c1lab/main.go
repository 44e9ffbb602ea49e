package main

import (
	"flag"
	"os"

	"github.com/danmuck/g2c1/internal/config"
	"github.com/danmuck/g2c1/internal/edge"
	"github.com/danmuck/g2c1/internal/lab"
	"github.com/danmuck/g2c1/internal/observability"
	"github.com/danmuck/g2c1/internal/pie"
	"github.com/danmuck/g2c1/internal/sequencer"
	"github.com/rs/zerolog/log"
)

func main() {
	logger := observability.InitLogger("g2c1lab")
	configPath := flag.String("config", "cmd/g2c1lab/config.toml", "lab config file")
	flag.Parse()

	cfg := config.Default()
	if _, err := os.Stat(*configPath); err == nil {
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load lab config")
		}
		log.Info().Str("path", *configPath).Msg("loaded lab config")
	} else {
		log.Warn().Str("path", *configPath).Msg("no lab config, using defaults")
	}

	encCfg, err := config.EncoderSettings(cfg.Encoder)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid encoder config")
	}
	enc, err := pie.NewEncoder(encCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("encoder")
	}
	decCfg, err := config.DecoderSettings(cfg.Decoder)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid decoder config")
	}
	dec, err := edge.NewDecoder(decCfg, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("decoder")
	}

	opts := lab.Options{
		Addr:         cfg.Lab.Addr,
		CorsOrigins:  cfg.Lab.CorsOrigins,
		Encoder:      enc,
		Decoder:      dec,
		SampleRateHz: cfg.Decoder.SampleRateHz,
	}
	if cfg.Sequencer.Port != "" {
		seqCfg, err := config.SequencerSettings(cfg.Sequencer)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid sequencer config")
		}
		seq, err := sequencer.Open(seqCfg, logger)
		if err != nil {
			log.Fatal().Err(err).Msg("sequencer")
		}
		defer seq.Close()
		opts.Sequencer = seq
	}

	server := lab.New(opts)
	log.Info().Str("id", server.ID).Str("addr", server.Addr).Msg("lab started")
	if err := server.Serve(); err != nil {
		log.Fatal().Err(err).Msg("lab stopped")
	}
}
