package main

import (
	"fmt"
	"os"

	"parley/internal/cli"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root := &cobra.Command{
		Use:   "parley",
		Short: "Parley — offline speaker diarization for transcripts",
		Long: `Parley attributes transcript segments to speakers: it re-segments the
transcript, embeds each chunk with an external voice encoder, clusters the
embeddings, and reassembles a speaker-labeled transcript. Audio statistics
ride along in the report.

Key commands:
  transcribe <wav>          Run an STT engine, then diarize its output
  diarize <wav>             Diarize from an existing segments JSON
  stats <wav>               Duration/loudness/voice-activity report
  serve                     HTTP service (upload wav + segments, get report)
  doctor                    Check config, encoder backend, engine

Env overrides: PARLEY_SPEAKERS, PARLEY_ENCODER_URL, PARLEY_GLADIA_API_KEY,
               PARLEY_SERVER_ADDR, PARLEY_LOG_LEVEL/FORMAT/STDOUT

Speaker labels are cluster ids only: speaker 0 in one run is not
necessarily speaker 0 in the next run over the same audio.`,
		Example: `  parley diarize meeting.wav --segments meeting.json --speakers 2
  parley transcribe meeting.wav --engine gladia --json
  parley stats meeting.wav
  parley serve --addr 127.0.0.1:8377`,
		DisableFlagsInUseLine: true,
	}

	root.Version = version
	root.SetVersionTemplate("Parley v{{.Version}}\n")

	cfgPath := root.PersistentFlags().StringP("config", "c", "", "Path to config file (TOML). Defaults to ~/.config/parley/config.toml")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(cli.NewTranscribeCmd(cfgPath))
	root.AddCommand(cli.NewDiarizeCmd(cfgPath))
	root.AddCommand(cli.NewStatsCmd(cfgPath))
	root.AddCommand(cli.NewServeCmd(cfgPath))
	root.AddCommand(cli.NewDoctorCmd(cfgPath))

	return root.Execute()
}
