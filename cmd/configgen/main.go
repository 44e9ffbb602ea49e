package main

import (
	"flag"

	"github.com/danmuck/g2c1/internal/config"
	"github.com/danmuck/g2c1/internal/observability"
	"github.com/rs/zerolog/log"
)

func main() {
	kind := flag.String("kind", "ctl", "config kind: ctl|lab")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind cmd path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()
	observability.InitLogger("configgen")

	if *validate {
		path := *input
		if path == "" {
			p, err := config.DefaultPath(*kind)
			if err != nil {
				log.Fatal().Err(err).Msg("config path")
			}
			path = p
		}
		if _, err := config.Load(path); err != nil {
			log.Fatal().Err(err).Msg("config validation failed")
		}
		log.Info().Str("kind", *kind).Str("path", path).Msg("validated config")
		return
	}

	target := *output
	if target == "" {
		p, err := config.DefaultPath(*kind)
		if err != nil {
			log.Fatal().Err(err).Msg("config path")
		}
		target = p
	}

	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal().Err(err).Msg("write config template")
	}
	log.Info().Str("kind", *kind).Str("path", target).Msg("wrote config template")
}
