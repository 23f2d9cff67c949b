package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultSpeakers      = 2
	defaultMaxSegmentSec = 5.0
	defaultStateDirLinux = ".local/state/parley"
	defaultConfigDir     = ".config/parley"
)

// Config holds user configuration loaded from TOML.
type Config struct {
	Diarize struct {
		Speakers      int     `toml:"speakers"`
		MaxSegmentSec float64 `toml:"max_segment_sec"`
	} `toml:"diarize"`

	Encoder struct {
		Backend    string  `toml:"backend"` // exec, http
		Command    string  `toml:"command"` // exec: embedding tool command line
		URL        string  `toml:"url"`     // http: sidecar base URL
		TimeoutSec float64 `toml:"timeout_sec"`
	} `toml:"encoder"`

	Engine struct {
		Name      string `toml:"name"` // whisper, gladia
		ModelPath string `toml:"model_path"`
		Language  string `toml:"language"`
	} `toml:"engine"`

	Gladia struct {
		APIKey      string `toml:"api_key"`
		BaseURL     string `toml:"base_url"`
		MinSpeakers int    `toml:"min_speakers"`
		MaxSpeakers int    `toml:"max_speakers"`
	} `toml:"gladia"`

	Logging struct {
		Level  string `toml:"level"`  // debug, info, warn, error
		Format string `toml:"format"` // text, json
		Stdout bool   `toml:"stdout"`
	} `toml:"logging"`

	Server struct {
		Addr        string `toml:"addr"`
		MaxUploadMB int    `toml:"max_upload_mb"`
		TempDir     string `toml:"temp_dir"`
	} `toml:"server"`

	Paths struct {
		StateDir   string `toml:"state_dir"`
		LogPath    string `toml:"log_path"`
		ConfigPath string `toml:"-"`
	} `toml:"paths"`
}

// Default returns Config populated with defaults.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	stateDir := filepath.Join(home, defaultStateDirLinux)
	// macOS prefers ~/Library/Application Support/parley for state/logs
	if isMac() {
		stateDir = filepath.Join(home, "Library", "Application Support", "parley")
	}

	cfg := &Config{}

	cfg.Diarize.Speakers = defaultSpeakers
	cfg.Diarize.MaxSegmentSec = defaultMaxSegmentSec

	cfg.Encoder.Backend = "http"
	cfg.Encoder.URL = "http://127.0.0.1:8388"
	cfg.Encoder.TimeoutSec = 30

	cfg.Engine.Name = "whisper"
	cfg.Engine.ModelPath = filepath.Join(stateDir, "models", "ggml-base-q5_1.bin")
	cfg.Engine.Language = "auto"

	cfg.Gladia.BaseURL = "https://api.gladia.io"
	cfg.Gladia.MinSpeakers = 1
	cfg.Gladia.MaxSpeakers = 10

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"

	cfg.Server.Addr = "127.0.0.1:8377"
	cfg.Server.MaxUploadMB = 200
	cfg.Server.TempDir = filepath.Join(stateDir, "tmp")

	cfg.Paths.StateDir = stateDir
	cfg.Paths.LogPath = filepath.Join(stateDir, "parley.log")

	return cfg, nil
}

// Load loads config from file, applying defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path == "" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, defaultConfigDir, "config.toml")
	}

	// Read if exists; otherwise write template.
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, err
			}
			if err := Save(cfg, path); err != nil {
				return nil, err
			}
			cfg.Paths.ConfigPath = path
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Paths.ConfigPath = path
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Save writes cfg to path.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

func isMac() bool {
	return runtime.GOOS == "darwin"
}

// MustStatePaths ensures state dirs exist.
func MustStatePaths(cfg *Config) error {
	for _, p := range []string{cfg.Paths.StateDir, filepath.Dir(cfg.Paths.LogPath), cfg.Server.TempDir} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PARLEY_SPEAKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Diarize.Speakers = n
		}
	}
	if v := os.Getenv("PARLEY_ENCODER_URL"); v != "" {
		cfg.Encoder.URL = v
		cfg.Encoder.Backend = "http"
	}
	if v := os.Getenv("PARLEY_GLADIA_API_KEY"); v != "" {
		cfg.Gladia.APIKey = v
	}
	if v := os.Getenv("PARLEY_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("PARLEY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PARLEY_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("PARLEY_LOG_STDOUT"); v != "" {
		cfg.Logging.Stdout = v != "0" && strings.ToLower(v) != "false"
	}
}
