// Package diagnostics checks that the tools, files and directories a run
// depends on are in place.
package diagnostics

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/chaz8081/transcribe-latest/internal/config"
	"github.com/chaz8081/transcribe-latest/internal/device"
	"github.com/chaz8081/transcribe-latest/internal/models"
)

// Status indicates whether a single check passed.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Item is one check result with an optional hint.
type Item struct {
	ID      string
	Name    string
	Status  Status
	Message string
	Hint    string
}

// Report aggregates the results of a Run.
type Report struct {
	GeneratedAt time.Time
	HasFailures bool
	Items       []Item
}

// Checker validates external tools and required filesystem paths.
type Checker struct {
	lookPath   func(string) (string, error)
	stat       func(string) (os.FileInfo, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
	host       device.Host
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		stat:       os.Stat,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
		host:       device.CurrentHost(),
	}
}

// NewCheckerForTests creates a checker with injectable dependencies.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	stat func(string) (os.FileInfo, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
	host device.Host,
) *Checker {
	return &Checker{
		lookPath:   lookPath,
		stat:       stat,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
		host:       host,
	}
}

// Run executes the checks relevant to cfg's backend.
func (c *Checker) Run(cfg *config.Config) Report {
	var items []Item
	switch cfg.Backend {
	case config.BackendOpenAI:
		items = append(items, c.checkAPIKey(cfg.OpenAI.APIKey))
	case config.BackendEmbedded:
		items = append(items,
			c.checkTool("ffmpeg", cfg.FFmpeg.Binary),
			c.checkModel(cfg.Whisper.ModelsDir, cfg.Model, cfg.Whisper.AutoDownload),
		)
	default:
		items = append(items,
			c.checkTool("whisper-cli", cfg.Whisper.Binary),
			c.checkTool("ffmpeg", cfg.FFmpeg.Binary),
			c.checkModel(cfg.Whisper.ModelsDir, cfg.Model, cfg.Whisper.AutoDownload),
		)
	}
	items = append(items,
		c.checkDir("input_dir", "Input directory", cfg.InputDir),
		c.checkDir("output_dir", "Output directory", cfg.OutputDir),
		c.checkDevice(),
	)

	return Report{
		GeneratedAt: time.Now().UTC(),
		HasFailures: lo.SomeBy(items, func(it Item) bool { return it.Status == StatusFail }),
		Items:       items,
	}
}

// checkTool verifies a required executable is on PATH.
func (c *Checker) checkTool(name, binary string) Item {
	item := Item{ID: "tool_" + name, Name: name}

	path, err := c.lookPath(binary)
	if err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Tool not found in PATH: %s", binary)
		item.Hint = "Install it and ensure the binary is available on PATH, or set its full path in the config file."
		return item
	}

	item.Status = StatusPass
	item.Message = fmt.Sprintf("Found at %s", path)
	return item
}

// checkModel validates that the configured ggml model is present.
func (c *Checker) checkModel(dir, name string, autoDownload bool) Item {
	item := Item{ID: "model", Name: "Model " + name}
	path := models.Path(dir, name)

	info, err := c.stat(path)
	if err == nil && info.Mode().IsRegular() && info.Size() > 0 {
		item.Status = StatusPass
		item.Message = fmt.Sprintf("Model file found: %s", path)
		return item
	}

	item.Message = fmt.Sprintf("Model file missing: %s", path)
	item.Hint = fmt.Sprintf("Run 'transcribe-latest models download %s'.", name)
	if _, known := models.Lookup(name); known && autoDownload {
		item.Status = StatusWarn
		item.Message += " (downloaded on first run)"
		return item
	}
	item.Status = StatusFail
	return item
}

// checkDir validates directory existence and write access.
func (c *Checker) checkDir(id, name, dir string) Item {
	item := Item{ID: id, Name: name}

	if strings.TrimSpace(dir) == "" {
		item.Status = StatusFail
		item.Message = "Directory is empty."
		item.Hint = "Set it in the config file."
		return item
	}

	if err := c.mkdirAll(dir, 0o755); err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Cannot create directory: %s", dir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmp, err := c.createTemp(dir, ".write-check-*")
	if err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Directory is not writable: %s", dir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	_ = c.remove(tmpPath)

	item.Status = StatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", dir)
	return item
}

// checkDevice reports the device a run would prefer. It never fails.
func (c *Checker) checkDevice() Item {
	sel := device.Select(c.host)
	return Item{
		ID:      "device",
		Name:    "Device",
		Status:  StatusPass,
		Message: fmt.Sprintf("%s (%s)", sel.Device.Upper(), sel.Reason),
	}
}

func (c *Checker) checkAPIKey(key string) Item {
	item := Item{ID: "openai_api_key", Name: "OpenAI API key"}
	if key == "" {
		item.Status = StatusFail
		item.Message = "No API key configured."
		item.Hint = "Set OPENAI_API_KEY in the environment or a .env file, or openai.api_key in the config file."
		return item
	}
	item.Status = StatusPass
	item.Message = "API key configured."
	return item
}
