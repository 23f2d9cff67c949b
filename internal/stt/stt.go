// Package stt defines the speech-to-text engine interface whose output
// feeds the diarization pipeline. Engines are external: the raw decoding
// happens in whisper.cpp or a cloud API, and parley only consumes the
// timestamped segments that come back.
package stt

import (
	"context"
	"fmt"

	"parley/internal/config"
	"parley/internal/transcript"

	"github.com/sirupsen/logrus"
)

// Result is the raw output of one engine pass over a file.
type Result struct {
	Segments     []transcript.TimedSegment
	Language     string
	LanguageConf float64
	// PreDiarized carries engine-side speaker labels when the backend
	// diarizes itself (cloud engines); nil otherwise.
	PreDiarized []transcript.LabeledSegment
	// Speakers is the engine-detected speaker count for pre-diarized
	// output; zero otherwise.
	Speakers int
}

// Engine converts an audio file into timestamped transcript segments.
type Engine interface {
	Name() string
	Transcribe(ctx context.Context, wavPath string) (*Result, error)
}

// NewEngine builds the configured engine.
func NewEngine(cfg *config.Config, logger *logrus.Logger) (Engine, error) {
	switch cfg.Engine.Name {
	case "whisper":
		return NewWhisperEngine(cfg, logger)
	case "gladia":
		return NewGladiaEngine(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown engine %q (want whisper or gladia)", cfg.Engine.Name)
	}
}
