package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/chaz8081/transcribe-latest/internal/config"
	"github.com/chaz8081/transcribe-latest/internal/device"
	"github.com/chaz8081/transcribe-latest/internal/media"
	"github.com/chaz8081/transcribe-latest/internal/models"
)

// probeDuration is the length of the silent clip used to prove a model
// loads on a device.
const probeDuration = time.Second

// CLILoader runs whisper.cpp through its command-line executable.
type CLILoader struct {
	binary       string
	modelsDir    string
	language     string
	threads      uint
	autoDownload bool
	downloader   *models.Downloader
	converter    *media.Converter
	runner       media.Runner
	lookPath     func(string) (string, error)
	logger       *slog.Logger
}

// NewCLILoader builds the production loader from config.
func NewCLILoader(cfg *config.Config, logger *slog.Logger) *CLILoader {
	return &CLILoader{
		binary:       cfg.Whisper.Binary,
		modelsDir:    cfg.Whisper.ModelsDir,
		language:     cfg.Language,
		threads:      cfg.Whisper.Threads,
		autoDownload: cfg.Whisper.AutoDownload,
		downloader:   models.NewDownloader(os.Stderr, logger),
		converter:    media.NewConverter(cfg.FFmpeg.Binary, logger),
		runner:       media.ExecRunner{},
		lookPath:     exec.LookPath,
		logger:       logger,
	}
}

// NewCLILoaderForTests builds a loader with injectable process execution.
// Models are never downloaded.
func NewCLILoaderForTests(cfg *config.Config, runner media.Runner, lookPath func(string) (string, error), logger *slog.Logger) *CLILoader {
	l := NewCLILoader(cfg, logger)
	l.autoDownload = false
	l.runner = runner
	l.lookPath = lookPath
	l.converter = media.NewConverterWithRunner(cfg.FFmpeg.Binary, runner, logger)
	return l
}

// Load resolves the model file and proves it loads on dev by transcribing
// a short silent clip.
func (l *CLILoader) Load(ctx context.Context, name string, dev device.Device) (Model, error) {
	bin, err := l.lookPath(l.binary)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w: %s not found on PATH", ErrBackendUnavailable, l.binary)
	}

	modelPath, err := models.Resolve(ctx, l.downloader, l.modelsDir, name, l.autoDownload)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	threads := l.threads
	if threads == 0 {
		threads = uint(device.PhysicalCores(ctx))
	}

	m := &cliModel{
		binary:    bin,
		modelPath: modelPath,
		language:  l.language,
		threads:   threads,
		device:    dev,
		converter: l.converter,
		runner:    l.runner,
		logger:    l.logger,
	}
	if err := m.probe(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

type cliModel struct {
	binary    string
	modelPath string
	language  string
	threads   uint
	device    device.Device
	converter *media.Converter
	runner    media.Runner
	logger    *slog.Logger
}

// probe runs the model once over silence on the target device.
func (m *cliModel) probe(ctx context.Context) error {
	workDir, err := os.MkdirTemp("", "transcribe-latest-probe-*")
	if err != nil {
		return fmt.Errorf("transcribe: create probe workspace: %w", err)
	}
	defer os.RemoveAll(workDir)

	clip := filepath.Join(workDir, "silence.wav")
	if err := media.WriteSilence(clip, probeDuration); err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}

	args := m.args(clip, "")
	m.logger.Debug("Probing model", "cmd", m.binary, "args", strings.Join(args, " "))
	res, err := m.runner.Run(ctx, m.binary, args...)
	if err != nil {
		return fmt.Errorf("transcribe: load %s on %s: %w: %s", filepath.Base(m.modelPath), m.device, err, media.LastLine(res.Stderr))
	}
	if m.device.IsGPU() && strings.Contains(res.Stderr, "no GPU found") {
		return fmt.Errorf("transcribe: load %s on %s: whisper.cpp found no GPU", filepath.Base(m.modelPath), m.device)
	}
	return nil
}

// Transcribe converts the file to 16 kHz WAV and runs whisper.cpp over it.
func (m *cliModel) Transcribe(ctx context.Context, path string) (Result, error) {
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

	outBase := filepath.Join(workDir, "transcript")
	args := m.args(wav, outBase)
	m.logger.Debug("Running whisper.cpp", "cmd", m.binary, "args", strings.Join(args, " "))
	res, err := m.runner.Run(ctx, m.binary, args...)
	if err != nil {
		return Result{}, fmt.Errorf("transcribe: whisper.cpp failed (exit=%d): %w: %s", res.ExitCode, err, media.LastLine(res.Stderr))
	}

	data, err := os.ReadFile(outBase + ".json")
	if err != nil {
		return Result{}, fmt.Errorf("transcribe: whisper.cpp completed but JSON output is missing: %w", err)
	}
	return parseCLIOutput(data)
}

// Close is a no-op; every run is a separate process.
func (m *cliModel) Close() error {
	return nil
}

// args builds whisper-cli arguments. An empty outBase requests a probe run
// with logging left on so GPU initialization can be inspected.
func (m *cliModel) args(audioPath, outBase string) []string {
	args := []string{
		"-m", m.modelPath,
		"-f", audioPath,
		"-l", languageArg(m.language),
	}
	if m.threads > 0 {
		args = append(args, "-t", strconv.FormatUint(uint64(m.threads), 10))
	}
	if !m.device.IsGPU() {
		args = append(args, "-ng")
	}
	if outBase == "" {
		return append(args, "-nt")
	}
	return append(args, "-np", "-oj", "-of", outBase)
}

// languageArg maps an empty language to whisper.cpp auto-detection;
// whisper-cli would otherwise assume English.
func languageArg(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return "auto"
	}
	return lang
}

// parseCLIOutput reads whisper-cli's -oj document.
func parseCLIOutput(data []byte) (Result, error) {
	if !gjson.ValidBytes(data) {
		return Result{}, fmt.Errorf("transcribe: whisper.cpp produced invalid JSON")
	}

	var text strings.Builder
	gjson.GetBytes(data, "transcription.#.text").ForEach(func(_, seg gjson.Result) bool {
		text.WriteString(seg.String())
		return true
	})

	lang := gjson.GetBytes(data, "result.language").String()
	if lang == "" {
		lang = "unknown"
	}

	return Result{
		Text:     strings.TrimSpace(text.String()),
		Language: lang,
	}, nil
}
