package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chaz8081/transcribe-latest/internal/device"
	"github.com/chaz8081/transcribe-latest/internal/diagnostics"
)

var errChecksFailed = errors.New("diagnostic checks failed")

func newDoctorCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check tools, model files, directories and device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd.ErrOrStderr(), opts)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return err
			}
			logger.Debug("Host", "info", device.Describe(cmd.Context()))

			report := diagnostics.NewChecker().Run(cfg)
			fmt.Fprint(cmd.OutOrStdout(), diagnostics.Render(report))
			if report.HasFailures {
				return errChecksFailed
			}
			return nil
		},
	}
}
