//go:build whisper

package stt

import (
	"context"
	"errors"
	"io"
	"strings"

	"parley/internal/audio"
	"parley/internal/config"
	"parley/internal/transcript"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/sirupsen/logrus"
)

const whisperSampleRate = 16000

// whisperEngine transcribes locally with whisper.cpp.
type whisperEngine struct {
	modelPath string
	language  string
	logger    *logrus.Logger
}

// NewWhisperEngine loads nothing up front; the model is opened per file so
// concurrent transcriptions do not share a whisper context.
func NewWhisperEngine(cfg *config.Config, logger *logrus.Logger) (Engine, error) {
	return &whisperEngine{
		modelPath: cfg.Engine.ModelPath,
		language:  cfg.Engine.Language,
		logger:    logger,
	}, nil
}

func (e *whisperEngine) Name() string { return "whisper" }

func (e *whisperEngine) Transcribe(ctx context.Context, wavPath string) (*Result, error) {
	buf, err := audio.DecodeWAV(wavPath)
	if err != nil {
		return nil, err
	}
	samples := toWhisperRate(buf.Samples, buf.SampleRate)

	model, err := whisper.New(e.modelPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = model.Close() }()

	wctx, err := model.NewContext()
	if err != nil {
		return nil, err
	}
	lang := strings.TrimSpace(e.language)
	if lang != "" && lang != "auto" {
		if err := wctx.SetLanguage(lang); err != nil {
			e.logger.Warnf("whisper: set language %q: %v", lang, err)
		}
	}
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, err
	}

	res := &Result{Language: wctx.DetectedLanguage(), LanguageConf: 1.0}
	for {
		seg, err := wctx.NextSegment()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		res.Segments = append(res.Segments, transcript.TimedSegment{
			Start: seg.Start.Seconds(),
			End:   seg.End.Seconds(),
			Text:  text,
		})
	}
	return res, nil
}

// toWhisperRate resamples mono float64 audio to 16 kHz float32 with linear
// interpolation.
func toWhisperRate(in []float64, srcRate int) []float32 {
	if len(in) == 0 {
		return nil
	}
	if srcRate == whisperSampleRate {
		out := make([]float32, len(in))
		for i, s := range in {
			out[i] = float32(s)
		}
		return out
	}
	ratio := float64(whisperSampleRate) / float64(srcRate)
	outLen := int(float64(len(in))*ratio + 0.9999)
	out := make([]float32, outLen)
	for i := 0; i < outLen; i++ {
		pos := float64(i) / ratio
		idx := int(pos)
		if idx >= len(in)-1 {
			out[i] = float32(in[len(in)-1])
			continue
		}
		frac := pos - float64(idx)
		out[i] = float32(in[idx]*(1-frac) + in[idx+1]*frac)
	}
	return out
}
