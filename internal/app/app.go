// Package app runs one select-transcribe-write cycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chaz8081/transcribe-latest/internal/config"
	"github.com/chaz8081/transcribe-latest/internal/device"
	"github.com/chaz8081/transcribe-latest/internal/locate"
	"github.com/chaz8081/transcribe-latest/internal/output"
	"github.com/chaz8081/transcribe-latest/internal/transcribe"
)

// State is the furthest point a run reached.
type State int

const (
	StateInit State = iota
	StateDirectoriesEnsured
	StateFileSelected
	StateNoFileFound
	StateModelLoaded
	StateFallbackLoaded
	StateLoadFailed
	StateTranscribed
	StateTranscribeFailed
	StateWriteFailed
	StateWritten
	StateDone
)

var stateNames = map[State]string{
	StateInit:               "init",
	StateDirectoriesEnsured: "directories-ensured",
	StateFileSelected:       "file-selected",
	StateNoFileFound:        "no-file-found",
	StateModelLoaded:        "model-loaded",
	StateFallbackLoaded:     "fallback-loaded",
	StateLoadFailed:         "load-failed",
	StateTranscribed:        "transcribed",
	StateTranscribeFailed:   "transcribe-failed",
	StateWriteFailed:        "write-failed",
	StateWritten:            "written",
	StateDone:               "done",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Report summarizes a run.
type Report struct {
	State    State
	Input    string
	Output   string
	Device   device.Device
	Fallback bool // model loaded on CPU after the preferred device failed
	Language string
}

// Runner drives a single pass. It holds no state between runs.
type Runner struct {
	cfg    *config.Config
	loader transcribe.Loader
	host   device.Host
	logger *slog.Logger
}

// New creates a Runner. host decides the preferred device.
func New(cfg *config.Config, loader transcribe.Loader, host device.Host, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, loader: loader, host: host, logger: logger}
}

// Run selects the newest media file, transcribes it and writes the transcript.
// Finding nothing to transcribe is not an error. Every failure is logged here
// before being returned.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	rep := Report{State: StateInit}

	if err := locate.EnsureDirs(r.logger, r.cfg.InputDir, r.cfg.OutputDir); err != nil {
		r.logger.Error("Failed to prepare directories", "err", err)
		return rep, err
	}
	rep.State = StateDirectoriesEnsured

	file, ok, err := locate.Latest(r.cfg.InputDir, r.cfg.Extensions)
	if err != nil {
		r.logger.Error("Failed to scan input directory", "dir", r.cfg.InputDir, "err", err)
		return rep, err
	}
	if !ok {
		rep.State = StateNoFileFound
		r.logger.Info("No media files found", "dir", r.cfg.InputDir,
			"extensions", strings.Join(r.cfg.Extensions, " "))
		return rep, nil
	}
	rep.State = StateFileSelected
	rep.Input = file.Path
	r.logger.Info("Found latest media file", "file", file.Name(), "modified", file.ModTime.Format(time.DateTime))

	sel := r.selectDevice()
	r.logger.Info("Selected device", "device", sel.Device, "reason", sel.Reason)

	modelName := r.cfg.ModelName()
	loadStart := time.Now()
	model, dev, err := transcribe.LoadWithFallback(ctx, r.loader, modelName, sel.Device, r.logger)
	if err != nil {
		rep.State = StateLoadFailed
		r.logger.Error("Failed to load model", "model", modelName, "err", err)
		return rep, err
	}
	defer model.Close()

	rep.Device = dev
	rep.State = StateModelLoaded
	if dev != sel.Device {
		rep.State = StateFallbackLoaded
		rep.Fallback = true
	}
	r.logger.Info("Model loaded", "model", modelName, "device", dev,
		"elapsed", time.Since(loadStart).Round(time.Millisecond))

	r.logger.Info("Transcribing", "file", file.Name())
	start := time.Now()
	res, err := model.Transcribe(ctx, file.Path)
	if err != nil {
		rep.State = StateTranscribeFailed
		r.logger.Error("Transcription failed", "file", file.Name(), "err", err)
		return rep, err
	}
	rep.State = StateTranscribed
	rep.Language = res.Language
	r.logger.Debug("Transcription complete", "chars", len(res.Text),
		"elapsed", time.Since(start).Round(time.Millisecond))

	path, err := output.Write(r.cfg.OutputDir, file.Path, modelName, dev, res)
	if err != nil {
		rep.State = StateWriteFailed
		r.logger.Error("Failed to write transcript", "err", err)
		return rep, err
	}
	rep.State = StateWritten
	rep.Output = path

	r.logger.Info("Transcript saved", "path", path)
	r.logger.Info("Detected language", "language", strings.ToUpper(res.Language))
	rep.State = StateDone
	return rep, nil
}

// selectDevice picks the preferred device. Remote backends never touch a
// local accelerator, so they are reported as CPU.
func (r *Runner) selectDevice() device.Selection {
	if transcribe.IsRemote(r.loader) {
		return device.Selection{Device: device.CPU, Reason: "remote backend, no local accelerator used"}
	}
	return device.Select(r.host)
}
