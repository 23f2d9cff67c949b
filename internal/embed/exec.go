package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"parley/internal/audio"

	"github.com/google/shlex"
)

// ExecEncoder shells out to an external embedding tool. The configured
// command line is shlex-parsed, the chunk is written to a temporary WAV
// whose path is appended as the final argument, and the tool must print a
// JSON array of floats on stdout.
type ExecEncoder struct {
	Command string
}

// NewExecEncoder builds an encoder around command (e.g.
// "resemblyzer-embed --model small").
func NewExecEncoder(command string) *ExecEncoder {
	return &ExecEncoder{Command: command}
}

// Embed writes the clip to a temp WAV, runs the tool, and parses its output.
// The temp file is removed on every exit path.
func (e *ExecEncoder) Embed(ctx context.Context, samples []float64, sampleRate int) ([]float64, error) {
	argv, err := shlex.Split(e.Command)
	if err != nil {
		return nil, fmt.Errorf("encoder.command: %w", err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("encoder.command not configured")
	}

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

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("encoder %s: %w: %s", argv[0], err, msg)
		}
		return nil, fmt.Errorf("encoder %s: %w", argv[0], err)
	}

	var vec []float64
	if err := json.Unmarshal(out, &vec); err != nil {
		return nil, fmt.Errorf("encoder %s: invalid JSON output: %w", argv[0], err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("encoder %s: empty embedding", argv[0])
	}
	return vec, nil
}
