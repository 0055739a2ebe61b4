//go:build !whispercpp

package transcribe

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chaz8081/transcribe-latest/internal/config"
	"github.com/chaz8081/transcribe-latest/internal/device"
)

// EmbeddedLoader is a placeholder used when the binary is built without
// the whispercpp tag.
type EmbeddedLoader struct{}

// NewEmbeddedLoader returns a loader whose Load always fails.
func NewEmbeddedLoader(cfg *config.Config, logger *slog.Logger) *EmbeddedLoader {
	return &EmbeddedLoader{}
}

func (l *EmbeddedLoader) Load(ctx context.Context, name string, dev device.Device) (Model, error) {
	return nil, fmt.Errorf("transcribe: %w: embedded backend not compiled in (rebuild with -tags whispercpp)", ErrBackendUnavailable)
}
