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
	"parley/internal/transcript"

	"github.com/spf13/cobra"
)

// NewDiarizeCmd diarizes a WAV file using transcript segments an external
// engine already produced.
func NewDiarizeCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diarize <wavfile>",
		Short: "Diarize a WAV file from existing transcript segments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			logger, err := logging.Configure(cfg)
			if err != nil {
				return err
			}
			file := args[0]
			segPath, _ := cmd.Flags().GetString("segments")
			speakers, _ := cmd.Flags().GetInt("speakers")
			jsonOut, _ := cmd.Flags().GetBool("json")
			if speakers < 1 {
				speakers = cfg.Diarize.Speakers
			}

			segs, err := transcript.LoadSegments(segPath)
			if err != nil {
				return err
			}
			buf, err := audio.DecodeWAV(file)
			if err != nil {
				return err
			}
			enc, err := encoderFromConfig(cfg)
			if err != nil {
				return err
			}

			var result *transcript.Result
			dropped := 0
			outcome, err := diarize.New(enc, logger).Run(cmd.Context(), buf, segs, diarize.Options{
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

			stats := audio.Analyze(buf)
			rep := report.New(filepath.Base(file), "external", segs, result, &stats, dropped)
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(rep)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rep.Render())
			return nil
		},
	}
	cmd.Flags().String("segments", "", "JSON file with transcript segments (required)")
	cmd.Flags().Int("speakers", 0, "target speaker count (default from config)")
	cmd.Flags().Bool("json", false, "output JSON report")
	_ = cmd.MarkFlagRequired("segments")
	return cmd
}
