package models

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Downloader fetches model files over HTTP with a terminal progress bar.
type Downloader struct {
	client  *http.Client
	baseURL string
	out     io.Writer // progress bar output; nil disables the bar
	logger  *slog.Logger
}

// NewDownloader creates a downloader rendering progress to out.
func NewDownloader(out io.Writer, logger *slog.Logger) *Downloader {
	return &Downloader{
		client:  &http.Client{Timeout: 2 * time.Hour},
		baseURL: baseURL,
		out:     out,
		logger:  logger,
	}
}

// NewDownloaderForTests creates a downloader against a custom base URL.
func NewDownloaderForTests(client *http.Client, base string, out io.Writer, logger *slog.Logger) *Downloader {
	return &Downloader{client: client, baseURL: base, out: out, logger: logger}
}

// Download fetches the named model into dir. Existing non-empty files are
// kept. The file is written to a temporary name and renamed into place, so
// an interrupted download never leaves a truncated model behind.
func (d *Downloader) Download(ctx context.Context, dir, name string) error {
	m, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("models: %w %q (known: %s)", ErrUnknownModel, name, knownNames())
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("models: creating models dir: %w", err)
	}

	destPath := filepath.Join(dir, m.FileName())
	if info, err := os.Stat(destPath); err == nil && info.Size() > 0 {
		d.logger.Info("Model already present", "path", destPath, "size_mb", info.Size()/(1024*1024))
		return nil
	}

	url := d.baseURL + m.FileName()
	d.logger.Info("Downloading model", "model", m.Name, "size", m.SizeLabel, "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("models: create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("models: downloading %s: %w", m.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("models: download failed: HTTP %d", resp.StatusCode)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = m.SizeBytes
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("models: creating temp file: %w", err)
	}

	written, err := d.copyWithProgress(f, resp.Body, total, m.FileName())
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("models: writing model file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("models: moving model file: %w", err)
	}

	d.logger.Info("Model downloaded", "path", destPath, "size_mb", written/(1024*1024))
	return nil
}

func (d *Downloader) copyWithProgress(dst io.Writer, src io.Reader, total int64, label string) (int64, error) {
	if d.out == nil {
		return io.Copy(dst, src)
	}

	p := mpb.New(mpb.WithOutput(d.out), mpb.WithRefreshRate(150*time.Millisecond))
	bar := p.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(label+" ", decor.WC{C: decor.DindentRight}),
			decor.Counters(decor.SizeB1024(0), "% .1f / % .1f", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.NewPercentage("%.0f", decor.WCSyncSpace),
			decor.OnComplete(decor.EwmaETA(decor.ET_STYLE_GO, 30, decor.WCSyncWidth), " done"),
		),
	)

	proxy := bar.ProxyReader(src)
	written, err := io.Copy(dst, proxy)
	proxy.Close()
	if err != nil || !bar.Completed() {
		bar.Abort(false)
	}
	p.Wait()
	return written, err
}

func knownNames() string {
	return strings.Join(lo.Map(Catalog, func(m Model, _ int) string { return m.Name }), ", ")
}
