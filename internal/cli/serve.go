package cli

import (
	"parley/internal/config"
	"parley/internal/diarize"
	"parley/internal/logging"
	"parley/internal/server"

	"github.com/spf13/cobra"
)

// NewServeCmd runs the HTTP diarization service in the foreground.
func NewServeCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP diarization service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Server.Addr = addr
			}
			logger, err := logging.Configure(cfg)
			if err != nil {
				return err
			}
			enc, err := encoderFromConfig(cfg)
			if err != nil {
				return err
			}
			return server.New(cfg, logger, diarize.New(enc, logger)).Listen()
		},
	}
	cmd.Flags().String("addr", "", "listen address (default from config)")
	return cmd
}
