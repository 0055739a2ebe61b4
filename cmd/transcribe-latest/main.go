// Command transcribe-latest transcribes the newest media file in a directory.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chaz8081/transcribe-latest/internal/app"
	"github.com/chaz8081/transcribe-latest/internal/config"
	"github.com/chaz8081/transcribe-latest/internal/device"
	"github.com/chaz8081/transcribe-latest/internal/logging"
	"github.com/chaz8081/transcribe-latest/internal/transcribe"
)

// options holds the persistent flags shared by every command.
type options struct {
	configPath string
	verbose    bool
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "transcribe-latest",
		Short: "Transcribe the most recent media file in a directory",
		Long: `transcribe-latest picks the most recently modified audio or video file in the
input directory, runs a whisper speech-to-text model over it on the best
available device and writes <name>_transcript.txt to the output directory.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (default: ~/.config/transcribe-latest/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "V", false, "enable debug logging")

	cmd.AddCommand(
		newDoctorCmd(opts),
		newModelsCmd(opts),
		newConfigCmd(),
		newVersionCmd(),
	)
	return cmd
}

func runTranscribe(cmd *cobra.Command, opts *options) error {
	cfg, logger, err := setup(cmd.ErrOrStderr(), opts)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}

	printBanner(cmd.OutOrStdout(), cfg)
	logger.Debug("Host", "info", device.Describe(cmd.Context()))

	loader, err := transcribe.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to create transcriber", "err", err)
		return err
	}

	// The runner logs its own failures.
	_, err = app.New(cfg, loader, device.CurrentHost(), logger).Run(cmd.Context())
	return err
}

// setup loads the environment and configuration and builds the logger.
func setup(logOut io.Writer, opts *options) (*config.Config, *slog.Logger, error) {
	envFile, err := config.LoadEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("env: %w", err)
	}

	cfg, source, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation: %w", err)
	}

	level := config.ParseLogLevel(cfg.LogLevel)
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(logOut, level)

	logger.Debug("Configuration loaded", "source", source)
	if envFile != "" {
		logger.Debug("Environment loaded", "file", envFile)
	}
	return cfg, logger, nil
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults. The second return
// value names where the config came from.
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		return cfg, path, err
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, "", fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		return cfg, defaultPath, nil
	}

	return config.Default(), "built-in defaults", nil
}

// printBanner displays the startup configuration summary.
func printBanner(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "=== transcribe-latest ===")
	fmt.Fprintf(w, "  Model:    %s (%s)\n", cfg.ModelName(), cfg.Backend)
	fmt.Fprintf(w, "  Input:    %s [%s]\n", cfg.InputDir, strings.Join(cfg.Extensions, " "))
	fmt.Fprintf(w, "  Output:   %s\n", cfg.OutputDir)
	fmt.Fprintf(w, "  Language: %s\n", cfg.Language)
	fmt.Fprintln(w, "=========================")
}
