package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chaz8081/transcribe-latest/internal/models"
)

func newModelsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage whisper.cpp model files",
	}
	cmd.AddCommand(newModelsDownloadCmd(opts), newModelsListCmd(opts))
	return cmd
}

func newModelsDownloadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "download [name]",
		Short: "Download a ggml model (default: the configured model)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd.ErrOrStderr(), opts)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return err
			}

			name := cfg.Model
			if len(args) == 1 {
				name = args[0]
			}
			d := models.NewDownloader(cmd.ErrOrStderr(), logger)
			if err := d.Download(cmd.Context(), cfg.Whisper.ModelsDir, name); err != nil {
				logger.Error("Download failed", "model", name, "err", err)
				return err
			}
			return nil
		},
	}
}

func newModelsListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known models and whether they are downloaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd.ErrOrStderr(), opts)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Models directory: %s\n\n", cfg.Whisper.ModelsDir)
			for _, m := range models.Catalog {
				status := ""
				if models.Exists(cfg.Whisper.ModelsDir, m.Name) {
					status = "downloaded"
				}
				marker := " "
				if m.Name == cfg.Model {
					marker = "*"
				}
				fmt.Fprintf(w, "%s %-16s %-8s %s\n", marker, m.Name, m.SizeLabel, status)
			}
			return nil
		},
	}
}
