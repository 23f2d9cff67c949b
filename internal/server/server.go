// Package server exposes the diarization pipeline over HTTP. Each request
// is handled independently; the only shared state is the injected encoder,
// which must tolerate concurrent calls.
package server

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"parley/internal/audio"
	"parley/internal/config"
	"parley/internal/diarize"
	"parley/internal/report"
	"parley/internal/transcript"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Server wires the HTTP surface around a Diarizer.
type Server struct {
	cfg      *config.Config
	logger   *logrus.Logger
	diarizer *diarize.Diarizer
	app      *fiber.App
	metrics  metrics
}

// New builds the server and its routes.
func New(cfg *config.Config, logger *logrus.Logger, d *diarize.Diarizer) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		diarizer: d,
	}
	s.app = fiber.New(fiber.Config{
		BodyLimit:             cfg.Server.MaxUploadMB * 1024 * 1024,
		DisableStartupMessage: true,
	})
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	s.app.Get("/metrics", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/plain; charset=utf-8")
		return c.SendString(s.metrics.render())
	})
	s.app.Post("/v1/diarize", s.handleDiarize)
	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves until the listener fails or is closed.
func (s *Server) Listen() error {
	if err := config.MustStatePaths(s.cfg); err != nil {
		return err
	}
	s.logger.Infof("listening on http://%s", s.cfg.Server.Addr)
	return s.app.Listen(s.cfg.Server.Addr)
}

// handleDiarize takes a multipart WAV plus the transcript segments an
// external engine produced for it, and answers with the full report.
// Diarization is best-effort: when it is unavailable the report still
// carries the plain transcript.
func (s *Server) handleDiarize(c *fiber.Ctx) error {
	s.metrics.incRequests()

	file, err := c.FormFile("audio")
	if err != nil {
		return badRequest(c, "no audio file uploaded")
	}
	segsJSON := c.FormValue("segments")
	if segsJSON == "" {
		return badRequest(c, "no segments provided")
	}
	segs, err := transcript.ParseSegments([]byte(segsJSON))
	if err != nil {
		return badRequest(c, err.Error())
	}

	speakers := s.cfg.Diarize.Speakers
	if v := c.FormValue("speakers"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return badRequest(c, "speakers must be a positive integer")
		}
		speakers = n
	}

	// Per-request temp file, removed on every exit path.
	tmpPath := filepath.Join(s.cfg.Server.TempDir, fmt.Sprintf("%s.wav", uuid.New().String()))
	if err := c.SaveFile(file, tmpPath); err != nil {
		s.logger.Errorf("save upload: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save upload"})
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warnf("remove temp file: %v", err)
		}
	}()

	buf, err := audio.DecodeWAV(tmpPath)
	if err != nil {
		return badRequest(c, fmt.Sprintf("unreadable wav: %v", err))
	}
	stats := audio.Analyze(buf)

	var result *transcript.Result
	dropped := 0
	outcome, err := s.diarizer.Run(c.UserContext(), buf, segs, diarize.Options{
		Speakers:      speakers,
		MaxSegmentSec: s.cfg.Diarize.MaxSegmentSec,
	})
	switch {
	case err == nil:
		result = outcome.Result
		dropped = outcome.DroppedChunks
		s.metrics.incDiarized()
	case errors.Is(err, diarize.ErrUnavailable):
		dropped = outcome.DroppedChunks
		s.metrics.incFallbacks()
		s.logger.Infof("diarize %s: unavailable, serving plain transcript", file.Filename)
	default:
		s.logger.Errorf("diarize %s: %v", file.Filename, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "diarization failed"})
	}
	s.metrics.addDropped(dropped)

	rep := report.New(file.Filename, "external", segs, result, &stats, dropped)
	return c.JSON(rep)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
