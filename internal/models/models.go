// Package models resolves and fetches ggml whisper model files.
package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknownModel is returned for model names missing from the catalog
// when a download is required.
var ErrUnknownModel = errors.New("unknown model")

// baseURL hosts the ggml conversions of the whisper checkpoints.
const baseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

// Model describes one downloadable whisper.cpp model.
type Model struct {
	Name      string // e.g. "medium"
	SizeLabel string // approximate download size
	SizeBytes int64  // used for progress when the server omits Content-Length
}

// FileName returns the ggml file name for the model.
func (m Model) FileName() string {
	return FileName(m.Name)
}

// Catalog lists the models known to be published as ggml files.
var Catalog = []Model{
	{Name: "tiny", SizeLabel: "75 MB", SizeBytes: 77_691_713},
	{Name: "tiny.en", SizeLabel: "75 MB", SizeBytes: 77_704_715},
	{Name: "base", SizeLabel: "142 MB", SizeBytes: 147_951_465},
	{Name: "base.en", SizeLabel: "142 MB", SizeBytes: 147_964_211},
	{Name: "small", SizeLabel: "466 MB", SizeBytes: 487_601_967},
	{Name: "small.en", SizeLabel: "466 MB", SizeBytes: 487_614_201},
	{Name: "medium", SizeLabel: "1.5 GB", SizeBytes: 1_533_763_059},
	{Name: "medium.en", SizeLabel: "1.5 GB", SizeBytes: 1_533_774_781},
	{Name: "large-v3", SizeLabel: "2.9 GB", SizeBytes: 3_095_033_483},
	{Name: "large-v3-turbo", SizeLabel: "1.5 GB", SizeBytes: 1_624_555_275},
}

// Lookup finds a catalog entry by name.
func Lookup(name string) (Model, bool) {
	for _, m := range Catalog {
		if m.Name == name {
			return m, true
		}
	}
	return Model{}, false
}

// FileName maps a model name such as "medium" to "ggml-medium.bin". Names
// that already look like a file name are returned unchanged.
func FileName(name string) string {
	if strings.HasSuffix(name, ".bin") || strings.HasSuffix(name, ".gguf") {
		return name
	}
	return "ggml-" + name + ".bin"
}

// Path returns where the model lives inside dir.
func Path(dir, name string) string {
	return filepath.Join(dir, FileName(name))
}

// Exists reports whether a non-empty model file is present in dir.
func Exists(dir, name string) bool {
	info, err := os.Stat(Path(dir, name))
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// Resolve returns the model path, downloading it first when it is missing
// and download is allowed.
func Resolve(ctx context.Context, d *Downloader, dir, name string, download bool) (string, error) {
	path := Path(dir, name)
	if Exists(dir, name) {
		return path, nil
	}
	if !download {
		return "", fmt.Errorf("models: %s not found (run 'transcribe-latest models download %s')", path, name)
	}
	if err := d.Download(ctx, dir, name); err != nil {
		return "", err
	}
	return path, nil
}
