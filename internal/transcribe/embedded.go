//go:build whispercpp

package transcribe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/chaz8081/transcribe-latest/internal/config"
	"github.com/chaz8081/transcribe-latest/internal/device"
	"github.com/chaz8081/transcribe-latest/internal/media"
	"github.com/chaz8081/transcribe-latest/internal/models"
)

// EmbeddedLoader links whisper.cpp into the process. Whether a GPU is used
// is decided when libwhisper is built; dev only affects logging.
type EmbeddedLoader struct {
	modelsDir    string
	language     string
	threads      uint
	autoDownload bool
	downloader   *models.Downloader
	converter    *media.Converter
	logger       *slog.Logger
}

// NewEmbeddedLoader builds the in-process loader from config.
func NewEmbeddedLoader(cfg *config.Config, logger *slog.Logger) *EmbeddedLoader {
	return &EmbeddedLoader{
		modelsDir:    cfg.Whisper.ModelsDir,
		language:     cfg.Language,
		threads:      cfg.Whisper.Threads,
		autoDownload: cfg.Whisper.AutoDownload,
		downloader:   models.NewDownloader(os.Stderr, logger),
		converter:    media.NewConverter(cfg.FFmpeg.Binary, logger),
		logger:       logger,
	}
}

// Load reads the ggml model file into memory.
func (l *EmbeddedLoader) Load(ctx context.Context, name string, dev device.Device) (Model, error) {
	modelPath, err := models.Resolve(ctx, l.downloader, l.modelsDir, name, l.autoDownload)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	l.logger.Debug("Loading whisper.cpp model in-process", "path", modelPath, "device", dev)
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe: load whisper model %q: %w", modelPath, err)
	}
	l.logger.Debug("Model loaded", "multilingual", model.IsMultilingual())

	threads := l.threads
	if threads == 0 {
		threads = uint(device.PhysicalCores(ctx))
	}
	return &embeddedModel{
		model:     model,
		language:  languageArg(l.language),
		threads:   threads,
		converter: l.converter,
		logger:    l.logger,
	}, nil
}

type embeddedModel struct {
	model     whisper.Model
	language  string
	threads   uint
	converter *media.Converter
	logger    *slog.Logger
}

// Close releases the whisper model resources.
func (m *embeddedModel) Close() error {
	if m.model != nil {
		return m.model.Close()
	}
	return nil
}

// Transcribe decodes the file to 16 kHz mono samples and runs the model.
func (m *embeddedModel) Transcribe(ctx context.Context, path string) (Result, error) {
	if err := checkInput(m.logger, path); err != nil {
		return Result{}, err
	}

	workDir, err := os.MkdirTemp("", "transcribe-latest-*")
	if err != nil {
		return Result{}, fmt.Errorf("transcribe: create workspace: %w", err)
	}
	defer os.RemoveAll(workDir)

	wav, err := m.converter.Prepare(ctx, path, workDir)
	if err != nil {
		return Result{}, fmt.Errorf("transcribe: %w", err)
	}
	samples, err := media.ReadSamples(wav)
	if err != nil {
		return Result{}, fmt.Errorf("transcribe: %w", err)
	}
	m.logger.Debug("Audio decoded", "samples", len(samples), "seconds", float64(len(samples))/media.SampleRate)

	wctx, err := m.model.NewContext()
	if err != nil {
		return Result{}, fmt.Errorf("transcribe: create context: %w", err)
	}
	if err := wctx.SetLanguage(m.language); err != nil {
		m.logger.Warn("Failed to set language", "language", m.language, "err", err)
	}
	if m.threads > 0 {
		wctx.SetThreads(m.threads)
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return Result{}, fmt.Errorf("transcribe: process: %w", err)
	}

	var text strings.Builder
	for {
		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("transcribe: next segment: %w", err)
		}
		text.WriteString(seg.Text)
	}

	lang := wctx.DetectedLanguage()
	if lang == "" {
		lang = "unknown"
	}
	return Result{Text: strings.TrimSpace(text.String()), Language: lang}, nil
}
