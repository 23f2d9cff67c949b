//go:build !whisper

package stt

import (
	"fmt"

	"parley/internal/config"

	"github.com/sirupsen/logrus"
)

// NewWhisperEngine requires the whisper build tag; default builds only
// have the cloud engine.
func NewWhisperEngine(cfg *config.Config, logger *logrus.Logger) (Engine, error) {
	return nil, fmt.Errorf("whisper engine unavailable: build with '-tags whisper'")
}
