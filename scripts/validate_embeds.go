package main

import (
	"flag"
	"fmt"
	"os"

	"bookwidget/internal/config"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Checks an embeds file before deployment: every entry must carry a valid
// embed contract and client IDs must be unique.

type EmbedsConfig struct {
	Embeds []config.EmbedConfig `yaml:"embeds"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	embedsPath := flag.String("embeds", "configs/embeds.yaml", "path to embeds.yaml")
	flag.Parse()

	data, err := os.ReadFile(*embedsPath)
	if err != nil {
		return fmt.Errorf("read embeds: %w", err)
	}
	var cfg EmbedsConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse embeds: %w", err)
	}
	if len(cfg.Embeds) == 0 {
		return fmt.Errorf("no embeds in yaml")
	}

	seen := make(map[string]bool, len(cfg.Embeds))
	invalid := 0
	for i, embed := range cfg.Embeds {
		if err := embed.Validate(); err != nil {
			logger.Error().Int("index", i).Str("client_id", embed.ClientID).Err(err).Msg("invalid embed")
			invalid++
			continue
		}
		if seen[embed.ClientID] {
			logger.Error().Int("index", i).Str("client_id", embed.ClientID).Msg("duplicate client_id")
			invalid++
			continue
		}
		seen[embed.ClientID] = true
		logger.Info().Str("client_id", embed.ClientID).Str("base_url", embed.BaseURL).Msg("embed ok")
	}

	logger.Info().Int("total", len(cfg.Embeds)).Int("invalid", invalid).Msg("validation finished")
	if invalid > 0 {
		return fmt.Errorf("%d invalid embeds", invalid)
	}
	return nil
}
