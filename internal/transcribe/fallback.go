package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chaz8081/transcribe-latest/internal/device"
)

// LoadWithFallback loads the model on the preferred device and, if that
// fails, makes exactly one more attempt on CPU. It returns the device the
// model actually loaded on.
func LoadWithFallback(ctx context.Context, loader Loader, name string, preferred device.Device, logger *slog.Logger) (Model, device.Device, error) {
	logger.Info("Loading model", "model", name, "device", preferred)
	model, err := loader.Load(ctx, name, preferred)
	if err == nil {
		return model, preferred, nil
	}

	logger.Warn("Failed to load model, falling back to cpu", "device", preferred, "err", err)
	model, cpuErr := loader.Load(ctx, name, device.CPU)
	if cpuErr != nil {
		return nil, "", fmt.Errorf("transcribe: load model %q: %w", name, errors.Join(err, cpuErr))
	}
	return model, device.CPU, nil
}
