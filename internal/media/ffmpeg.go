package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Converter turns arbitrary audio/video input into 16 kHz mono PCM WAV.
type Converter struct {
	binary string
	runner Runner
	logger *slog.Logger
}

// NewConverter creates a converter that shells out to the given ffmpeg binary.
func NewConverter(binary string, logger *slog.Logger) *Converter {
	return NewConverterWithRunner(binary, ExecRunner{}, logger)
}

// NewConverterWithRunner creates a converter with an injectable runner.
func NewConverterWithRunner(binary string, runner Runner, logger *slog.Logger) *Converter {
	return &Converter{binary: binary, runner: runner, logger: logger}
}

// ToWAV converts inputPath to a 16 kHz mono PCM WAV at outPath.
func (c *Converter) ToWAV(ctx context.Context, inputPath, outPath string) error {
	args := buildFFmpegArgs(inputPath, outPath)
	c.logger.Debug("Converting media", "cmd", c.binary, "args", strings.Join(args, " "))

	res, err := c.runner.Run(ctx, c.binary, args...)
	if err != nil {
		return fmt.Errorf("media: ffmpeg conversion failed (exit=%d): %w: %s",
			res.ExitCode, err, LastLine(res.Stderr))
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("media: ffmpeg completed but output file is missing: %w", err)
	}
	return nil
}

// Prepare returns a path to a 16 kHz mono PCM WAV version of inputPath.
// Inputs already in that format are returned unchanged; everything else is
// converted into workDir.
func (c *Converter) Prepare(ctx context.Context, inputPath, workDir string) (string, error) {
	if strings.EqualFold(filepath.Ext(inputPath), ".wav") {
		ok, err := IsPCM16kMono(inputPath)
		if err == nil && ok {
			c.logger.Debug("Input is already 16kHz mono PCM", "file", inputPath)
			return inputPath, nil
		}
	}

	outPath := filepath.Join(workDir, "preprocessed-16k-mono.wav")
	if err := c.ToWAV(ctx, inputPath, outPath); err != nil {
		return "", err
	}
	return outPath, nil
}

// buildFFmpegArgs builds preprocessing CLI args for mono 16k PCM WAV output.
func buildFFmpegArgs(inputPath, outPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		outPath,
	}
}

// LastLine returns the last non-empty line of s, which for ffmpeg and
// whisper.cpp is usually the actual error.
func LastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
