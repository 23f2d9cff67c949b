package cli

import (
	"fmt"

	"parley/internal/config"
	"parley/internal/doctor"

	"github.com/spf13/cobra"
)

// NewDoctorCmd runs environment diagnostics.
func NewDoctorCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check config, encoder backend, and engine prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			failed := 0
			for _, r := range doctor.Run(cfg) {
				mark := "ok"
				if !r.Pass {
					mark = "FAIL"
					failed++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-4s %-18s %s\n", mark, r.Name, r.Detail)
			}
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
}
