package cli

import (
	"encoding/json"
	"fmt"

	"parley/internal/audio"

	"github.com/spf13/cobra"
)

// NewStatsCmd prints waveform statistics for a WAV file.
func NewStatsCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <wavfile>",
		Short: "Show audio statistics for a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats := audio.AnalyzeFile(args[0])
			if stats == nil {
				return fmt.Errorf("cannot decode %s", args[0])
			}
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(stats)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "duration: %.1fs (%.1fmin)\n", stats.DurationSec, stats.DurationSec/60)
			fmt.Fprintf(out, "sample rate: %d Hz\n", stats.SampleRate)
			fmt.Fprintf(out, "channels: %d\n", stats.Channels)
			fmt.Fprintf(out, "loudness: %.1f dB\n", stats.LoudnessDB)
			fmt.Fprintf(out, "voice activity: %.1f%%\n", stats.VoiceActivityPct)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "output JSON")
	return cmd
}
