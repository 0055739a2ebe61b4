// Package output persists transcripts.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chaz8081/transcribe-latest/internal/device"
	"github.com/chaz8081/transcribe-latest/internal/transcribe"
)

// Suffix is appended to the input's base name to form the transcript name.
const Suffix = "_transcript.txt"

// FileName returns the transcript file name for an input path:
// "talks/sample.mp3" becomes "sample_transcript.txt".
func FileName(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + Suffix
}

// Header returns the first line of a transcript file.
func Header(model string, dev device.Device, language string) string {
	return fmt.Sprintf("--- Detected Language (Model %s) on %s: %s ---",
		model, dev.Upper(), strings.ToUpper(language))
}

// Format renders the full transcript file content.
func Format(model string, dev device.Device, res transcribe.Result) string {
	return Header(model, dev, res.Language) + "\n\n" + res.Text
}

// Write stores the transcript in outputDir and returns its path. An existing
// transcript for the same input is replaced.
func Write(outputDir, inputPath, model string, dev device.Device, res transcribe.Result) (string, error) {
	path := filepath.Join(outputDir, FileName(inputPath))

	tmp, err := os.CreateTemp(outputDir, "."+FileName(inputPath)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("output: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(Format(model, dev, res)); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("output: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("output: write %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("output: chmod %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("output: rename to %s: %w", path, err)
	}
	return path, nil
}
