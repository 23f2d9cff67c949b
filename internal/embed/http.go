package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"parley/internal/audio"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPEncoder talks to a resemblyzer-style embedding sidecar: POST /embed
// with a multipart WAV, JSON {"embedding": [...]} back.
type HTTPEncoder struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEncoder builds an encoder for the sidecar at baseURL.
func NewHTTPEncoder(baseURL string, timeout time.Duration) *HTTPEncoder {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPEncoder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// IsAvailable checks whether the sidecar answers its health endpoint.
func (e *HTTPEncoder) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Embed sends the clip as a WAV upload and decodes the returned vector.
func (e *HTTPEncoder) Embed(ctx context.Context, samples []float64, sampleRate int) ([]float64, error) {
	tmp, err := os.CreateTemp("", "parley-chunk-*.wav")
	if err != nil {
		return nil, err
	}
	path := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(path)

	if err := audio.EncodeWAV(path, samples, sampleRate); err != nil {
		return nil, err
	}
	wavData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("audio", "chunk.wav")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(wavData); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embed sidecar status %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		Embedding []float64 `json:"embedding"`
		Error     string    `json:"error,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("embed sidecar: %s", out.Error)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("embed sidecar: empty embedding")
	}
	return out.Embedding, nil
}
