// Package doctor runs environment diagnostics: config, encoder backend,
// engine prerequisites.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"parley/internal/config"
	"parley/internal/embed"

	"github.com/google/shlex"
)

// Result represents a diagnostic check.
type Result struct {
	Name   string
	Pass   bool
	Detail string
}

// Run executes doctor checks.
func Run(cfg *config.Config) []Result {
	results := []Result{
		checkFile("config path", cfg.Paths.ConfigPath),
		checkEncoder(cfg),
	}
	switch cfg.Engine.Name {
	case "whisper":
		results = append(results, checkFile("whisper model", cfg.Engine.ModelPath))
	case "gladia":
		results = append(results, checkGladiaKey(cfg))
	default:
		results = append(results, Result{Name: "engine", Pass: false, Detail: fmt.Sprintf("unknown engine %q", cfg.Engine.Name)})
	}
	return results
}

func checkFile(label, path string) Result {
	if path == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	if _, err := os.Stat(os.ExpandEnv(path)); err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: path}
}

func checkEncoder(cfg *config.Config) Result {
	switch cfg.Encoder.Backend {
	case "http":
		label := "encoder sidecar"
		if cfg.Encoder.URL == "" {
			return Result{Name: label, Pass: false, Detail: "encoder.url not set"}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		enc := embed.NewHTTPEncoder(cfg.Encoder.URL, 3*time.Second)
		if !enc.IsAvailable(ctx) {
			return Result{Name: label, Pass: false, Detail: fmt.Sprintf("%s/health not answering", cfg.Encoder.URL)}
		}
		return Result{Name: label, Pass: true, Detail: cfg.Encoder.URL}
	case "exec":
		return checkEncoderCommand(cfg.Encoder.Command)
	default:
		return Result{Name: "encoder", Pass: false, Detail: fmt.Sprintf("unknown backend %q (want exec or http)", cfg.Encoder.Backend)}
	}
}

func checkEncoderCommand(command string) Result {
	label := "encoder.command"
	if strings.TrimSpace(command) == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	argv, err := shlex.Split(command)
	if err != nil || len(argv) == 0 {
		return Result{Name: label, Pass: false, Detail: "cannot parse command line"}
	}
	bin := os.ExpandEnv(argv[0])
	if strings.Contains(bin, "/") {
		info, err := os.Stat(bin)
		if err != nil {
			return Result{Name: label, Pass: false, Detail: err.Error()}
		}
		if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
			return Result{Name: label, Pass: false, Detail: "not an executable file"}
		}
		return Result{Name: label, Pass: true, Detail: bin}
	}
	if _, err := exec.LookPath(bin); err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: bin}
}

func checkGladiaKey(cfg *config.Config) Result {
	if cfg.Gladia.APIKey == "" {
		return Result{Name: "gladia api key", Pass: false, Detail: "gladia.api_key not set (or PARLEY_GLADIA_API_KEY)"}
	}
	return Result{Name: "gladia api key", Pass: true, Detail: "configured"}
}
