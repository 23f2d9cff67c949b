package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"parley/internal/config"
	"parley/internal/transcript"

	"github.com/sirupsen/logrus"
)

const (
	gladiaPollInterval = 2 * time.Second
	gladiaMaxPolls     = 120
)

// GladiaEngine transcribes through the Gladia v2 REST API: upload the
// file, submit a transcription with diarization enabled, poll for the
// result. Gladia diarizes server-side, so its utterances come back
// pre-labeled and skip the local clustering pipeline.
type GladiaEngine struct {
	apiKey      string
	baseURL     string
	speakers    int // 0 = engine-side auto-detect
	minSpeakers int
	maxSpeakers int
	language    string
	client      *http.Client
	logger      *logrus.Logger
}

// NewGladiaEngine builds the cloud engine from config.
func NewGladiaEngine(cfg *config.Config, logger *logrus.Logger) (Engine, error) {
	if cfg.Gladia.APIKey == "" {
		return nil, fmt.Errorf("gladia.api_key not configured (or set PARLEY_GLADIA_API_KEY)")
	}
	return &GladiaEngine{
		apiKey:      cfg.Gladia.APIKey,
		baseURL:     cfg.Gladia.BaseURL,
		speakers:    cfg.Diarize.Speakers,
		minSpeakers: cfg.Gladia.MinSpeakers,
		maxSpeakers: cfg.Gladia.MaxSpeakers,
		language:    cfg.Engine.Language,
		client:      &http.Client{Timeout: 120 * time.Second},
		logger:      logger,
	}, nil
}

func (e *GladiaEngine) Name() string { return "gladia" }

// SetSpeakers overrides the target speaker count; 0 lets Gladia detect it.
func (e *GladiaEngine) SetSpeakers(n int) { e.speakers = n }

func (e *GladiaEngine) Transcribe(ctx context.Context, wavPath string) (*Result, error) {
	audioURL, err := e.upload(ctx, wavPath)
	if err != nil {
		return nil, err
	}
	resultURL, err := e.submit(ctx, audioURL)
	if err != nil {
		return nil, err
	}
	return e.poll(ctx, resultURL)
}

func (e *GladiaEngine) upload(ctx context.Context, wavPath string) (string, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("audio", filepath.Base(wavPath))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v2/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("x-gladia-key", e.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gladia upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gladia upload status %d: %s", resp.StatusCode, string(body))
	}
	var out struct {
		AudioURL string `json:"audio_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gladia upload response: %w", err)
	}
	return out.AudioURL, nil
}

func (e *GladiaEngine) submit(ctx context.Context, audioURL string) (string, error) {
	payload := map[string]any{
		"audio_url":   audioURL,
		"diarization": true,
		"diarization_config": map[string]any{
			"min_speakers": e.minSpeakers,
			"max_speakers": e.maxSpeakers,
		},
	}
	if e.speakers > 0 {
		payload["diarization_config"].(map[string]any)["number_of_speakers"] = e.speakers
	}
	if e.language != "" && e.language != "auto" {
		payload["language_config"] = map[string]any{"languages": []string{e.language}}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v2/transcription", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-gladia-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gladia submit: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gladia submit status %d: %s", resp.StatusCode, string(msg))
	}
	var out struct {
		ResultURL string `json:"result_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gladia submit response: %w", err)
	}
	return out.ResultURL, nil
}

func (e *GladiaEngine) poll(ctx context.Context, resultURL string) (*Result, error) {
	for attempt := 0; attempt < gladiaMaxPolls; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-gladia-key", e.apiKey)

		resp, err := e.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("gladia poll: %w", err)
		}
		var out gladiaResult
		decodeErr := json.NewDecoder(resp.Body).Decode(&out)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("gladia poll status %d", resp.StatusCode)
		}
		if decodeErr != nil {
			return nil, fmt.Errorf("gladia poll response: %w", decodeErr)
		}

		switch out.Status {
		case "done":
			return e.toResult(&out), nil
		case "error":
			return nil, fmt.Errorf("gladia: %s", out.ErrorCode)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(gladiaPollInterval):
		}
	}
	return nil, fmt.Errorf("gladia: transcription timed out after %d polls", gladiaMaxPolls)
}

type gladiaResult struct {
	Status    string `json:"status"`
	ErrorCode string `json:"error_code,omitempty"`
	Result    struct {
		Transcription struct {
			FullTranscript string `json:"full_transcript"`
			Languages      []string `json:"languages"`
			Utterances     []struct {
				Speaker int     `json:"speaker"`
				Start   float64 `json:"start"`
				End     float64 `json:"end"`
				Text    string  `json:"text"`
			} `json:"utterances"`
		} `json:"transcription"`
	} `json:"result"`
}

func (e *GladiaEngine) toResult(out *gladiaResult) *Result {
	tr := out.Result.Transcription
	res := &Result{LanguageConf: 1.0}
	if len(tr.Languages) > 0 {
		res.Language = tr.Languages[0]
	}
	speakers := map[int]bool{}
	for _, u := range tr.Utterances {
		seg := transcript.TimedSegment{Start: u.Start, End: u.End, Text: u.Text}
		res.Segments = append(res.Segments, seg)
		res.PreDiarized = append(res.PreDiarized, transcript.LabeledSegment{
			TimedSegment: seg,
			Speaker:      u.Speaker,
		})
		speakers[u.Speaker] = true
	}
	res.Speakers = len(speakers)
	return res
}
