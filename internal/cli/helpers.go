// Package cli implements the parley subcommands.
package cli

import (
	"fmt"
	"strings"
	"time"

	"parley/internal/config"
	"parley/internal/embed"
)

// encoderFromConfig builds the configured voice-encoder backend.
func encoderFromConfig(cfg *config.Config) (embed.Encoder, error) {
	switch cfg.Encoder.Backend {
	case "http":
		if cfg.Encoder.URL == "" {
			return nil, fmt.Errorf("encoder.url not configured")
		}
		timeout := time.Duration(cfg.Encoder.TimeoutSec * float64(time.Second))
		return embed.NewHTTPEncoder(cfg.Encoder.URL, timeout), nil
	case "exec":
		if strings.TrimSpace(cfg.Encoder.Command) == "" {
			return nil, fmt.Errorf("encoder.command not configured")
		}
		return embed.NewExecEncoder(cfg.Encoder.Command), nil
	default:
		return nil, fmt.Errorf("unknown encoder.backend %q (want exec or http)", cfg.Encoder.Backend)
	}
}
