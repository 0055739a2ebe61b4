// Package transcribe hosts the speech-to-text models.
//
// Supported backends:
//   - whisper-cli: whisper.cpp executable (default)
//   - embedded: whisper.cpp linked in-process (requires the whispercpp build tag)
//   - openai: OpenAI transcription API
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chaz8081/transcribe-latest/internal/config"
	"github.com/chaz8081/transcribe-latest/internal/device"
	"github.com/chaz8081/transcribe-latest/internal/media"
)

// ErrBackendUnavailable is returned by Load when the backend cannot run on
// this machine at all (missing binary, missing API key, not compiled in).
var ErrBackendUnavailable = errors.New("backend unavailable")

// Result is the output of one transcription.
type Result struct {
	Text     string
	Language string // detected language code, e.g. "en"
}

// Model is a loaded speech-to-text model.
type Model interface {
	// Transcribe converts the media file at path to text.
	Transcribe(ctx context.Context, path string) (Result, error)
	// Close releases backend resources.
	Close() error
}

// Loader loads a named model onto a compute device.
type Loader interface {
	Load(ctx context.Context, name string, dev device.Device) (Model, error)
}

// IsRemote reports whether loader runs models off this machine, where the
// local device plays no part.
func IsRemote(loader Loader) bool {
	r, ok := loader.(interface{ Remote() bool })
	return ok && r.Remote()
}

// New creates a Loader based on the config backend setting.
func New(cfg *config.Config, logger *slog.Logger) (Loader, error) {
	switch cfg.Backend {
	case config.BackendWhisperCLI, "":
		return NewCLILoader(cfg, logger), nil
	case config.BackendEmbedded:
		return NewEmbeddedLoader(cfg, logger), nil
	case config.BackendOpenAI:
		return NewOpenAILoader(cfg.OpenAI, cfg.Language, logger), nil
	default:
		return nil, fmt.Errorf("transcribe: unknown backend %q (supported: %s, %s, %s)",
			cfg.Backend, config.BackendWhisperCLI, config.BackendEmbedded, config.BackendOpenAI)
	}
}

// checkInput rejects files whose content is clearly not audio or video.
func checkInput(logger *slog.Logger, path string) error {
	mime, err := media.Sniff(path)
	if err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}
	logger.Debug("Detected media type", "file", path, "mime", mime)
	if err := media.CheckSupported(mime); err != nil {
		return fmt.Errorf("transcribe: %s: %w", path, err)
	}
	return nil
}
