package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"parley/internal/audio"
	"parley/internal/config"
	"parley/internal/diarize"
	"parley/internal/logging"
	"parley/internal/report"
)

// altEncoder alternates between two orthogonal voices per call.
type altEncoder struct{ calls int }

func (a *altEncoder) Embed(ctx context.Context, samples []float64, rate int) ([]float64, error) {
	a.calls++
	if a.calls%2 == 1 {
		return []float64{1, 0}, nil
	}
	return []float64{0, 1}, nil
}

// downEncoder always fails, forcing the fallback path.
type downEncoder struct{}

func (downEncoder) Embed(ctx context.Context, samples []float64, rate int) ([]float64, error) {
	return nil, errors.New("encoder down")
}

func testServer(t *testing.T, enc interface {
	Embed(context.Context, []float64, int) ([]float64, error)
}) *Server {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Server.TempDir = t.TempDir()
	logger := logging.NewTestLogger()
	return New(cfg, logger, diarize.New(enc, logger))
}

func makeWAV(t *testing.T, seconds float64, rate int) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	samples := make([]float64, int(seconds*float64(rate)))
	for i := range samples {
		samples[i] = 0.3 * math.Sin(2*math.Pi*150*float64(i)/float64(rate))
	}
	if err := audio.EncodeWAV(path, samples, rate); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func diarizeRequest(t *testing.T, wavData []byte, segments, speakers string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("audio", "meeting.wav")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(wavData); err != nil {
		t.Fatal(err)
	}
	if segments != "" {
		if err := w.WriteField("segments", segments); err != nil {
			t.Fatal(err)
		}
	}
	if speakers != "" {
		if err := w.WriteField("speakers", speakers); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, w.FormDataContentType()
}

func TestDiarizeEndpoint(t *testing.T) {
	srv := testServer(t, &altEncoder{})
	wavData := makeWAV(t, 6, 16000)
	segments := `[{"start":0,"end":2,"text":"bonjour"},{"start":2,"end":4,"text":"comment"},{"start":4,"end":6,"text":"allez vous"}]`

	body, ctype := diarizeRequest(t, wavData, segments, "2")
	req := httptest.NewRequest("POST", "/v1/diarize", body)
	req.Header.Set("Content-Type", ctype)

	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status %d: %s", resp.StatusCode, raw)
	}
	var rep report.Report
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.Diarized == nil {
		t.Fatal("expected diarized result")
	}
	if rep.AudioStats == nil || rep.AudioStats.SampleRate != 16000 {
		t.Fatalf("audio stats missing or wrong: %+v", rep.AudioStats)
	}
	if rep.WordCount != 4 {
		t.Fatalf("word count = %d, want 4", rep.WordCount)
	}
}

func TestDiarizeEndpointFallsBackWhenEncoderDown(t *testing.T) {
	srv := testServer(t, downEncoder{})
	wavData := makeWAV(t, 4, 16000)
	segments := `[{"start":0,"end":2,"text":"un"},{"start":2,"end":4,"text":"deux"}]`

	body, ctype := diarizeRequest(t, wavData, segments, "")
	req := httptest.NewRequest("POST", "/v1/diarize", body)
	req.Header.Set("Content-Type", ctype)

	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("fallback must still answer 200, got %d", resp.StatusCode)
	}
	var rep report.Report
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.Diarized != nil {
		t.Fatalf("expected no diarization, got %+v", rep.Diarized)
	}
	if rep.Transcript != "un deux" {
		t.Fatalf("plain transcript = %q", rep.Transcript)
	}
	if rep.DroppedChunks != 2 {
		t.Fatalf("dropped = %d, want 2", rep.DroppedChunks)
	}
}

func TestDiarizeEndpointRejectsMissingParts(t *testing.T) {
	srv := testServer(t, &altEncoder{})
	wavData := makeWAV(t, 2, 16000)

	// no segments field
	body, ctype := diarizeRequest(t, wavData, "", "")
	req := httptest.NewRequest("POST", "/v1/diarize", body)
	req.Header.Set("Content-Type", ctype)
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	// invalid speakers value
	body, ctype = diarizeRequest(t, wavData, `[{"start":0,"end":1,"text":"x"}]`, "-1")
	req = httptest.NewRequest("POST", "/v1/diarize", body)
	req.Header.Set("Content-Type", ctype)
	resp, err = srv.App().Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDiarizeEndpointRejectsGarbageAudio(t *testing.T) {
	srv := testServer(t, &altEncoder{})
	body, ctype := diarizeRequest(t, []byte("not a wav"), `[{"start":0,"end":1,"text":"x"}]`, "")
	req := httptest.NewRequest("POST", "/v1/diarize", body)
	req.Header.Set("Content-Type", ctype)
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv := testServer(t, &altEncoder{})

	resp, err := srv.App().Test(httptest.NewRequest("GET", "/healthz", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	resp, err = srv.App().Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(raw, []byte("parley_requests_total")) {
		t.Fatalf("metrics output missing counters: %s", raw)
	}
}
