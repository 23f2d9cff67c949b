package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"parley/internal/audio"
	"parley/internal/config"
	"parley/internal/diarize"
	"parley/internal/logging"
	"parley/internal/report"
	"parley/internal/stt"
	"parley/internal/transcript"

	"github.com/spf13/cobra"
)

// NewTranscribeCmd runs the full pipeline: engine transcription, then
// diarization of the resulting segments.
func NewTranscribeCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe <wavfile>",
		Short: "Transcribe and diarize a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if name, _ := cmd.Flags().GetString("engine"); name != "" {
				cfg.Engine.Name = name
			}
			logger, err := logging.Configure(cfg)
			if err != nil {
				return err
			}
			file := args[0]
			speakers, _ := cmd.Flags().GetInt("speakers")
			noDiarize, _ := cmd.Flags().GetBool("no-diarize")
			jsonOut, _ := cmd.Flags().GetBool("json")
			if speakers < 1 {
				speakers = cfg.Diarize.Speakers
			}

			eng, err := stt.NewEngine(cfg, logger)
			if err != nil {
				return err
			}
			res, err := eng.Transcribe(cmd.Context(), file)
			if err != nil {
				return err
			}

			var result *transcript.Result
			dropped := 0
			switch {
			case noDiarize:
			case res.PreDiarized != nil:
				// Cloud engines label speakers server-side; assemble
				// their utterances directly.
				result = transcript.Assemble(res.PreDiarized)
			default:
				buf, err := audio.DecodeWAV(file)
				if err != nil {
					return err
				}
				enc, err := encoderFromConfig(cfg)
				if err != nil {
					return err
				}
				outcome, err := diarize.New(enc, logger).Run(cmd.Context(), buf, res.Segments, diarize.Options{
					Speakers:      speakers,
					MaxSegmentSec: cfg.Diarize.MaxSegmentSec,
				})
				switch {
				case err == nil:
					result = outcome.Result
					dropped = outcome.DroppedChunks
				case errors.Is(err, diarize.ErrUnavailable):
					dropped = outcome.DroppedChunks
					fmt.Fprintln(cmd.ErrOrStderr(), "diarization unavailable; printing plain transcript")
				default:
					return err
				}
			}

			rep := report.New(filepath.Base(file), eng.Name(), res.Segments, result, audio.AnalyzeFile(file), dropped)
			rep.Language = res.Language
			rep.LanguageConf = res.LanguageConf
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(rep)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rep.Render())
			return nil
		},
	}
	cmd.Flags().String("engine", "", "override configured engine (whisper, gladia)")
	cmd.Flags().Int("speakers", 0, "target speaker count (default from config)")
	cmd.Flags().Bool("no-diarize", false, "skip speaker diarization")
	cmd.Flags().Bool("json", false, "output JSON report")
	return cmd
}
