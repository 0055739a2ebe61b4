package models

import (
	"context"
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaz8081/transcribe-latest/internal/logging"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "ggml-medium.bin", FileName("medium"))
	assert.Equal(t, "ggml-large-v3-turbo.bin", FileName("large-v3-turbo"))
	assert.Equal(t, "custom.bin", FileName("custom.bin"))
	assert.Equal(t, "model.gguf", FileName("model.gguf"))
}

func TestLookup(t *testing.T) {
	m, ok := Lookup("medium")
	require.True(t, ok)
	assert.Equal(t, "ggml-medium.bin", m.FileName())

	_, ok = Lookup("gigantic")
	assert.False(t, ok)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Exists(dir, "tiny"))

	require.NoError(t, os.WriteFile(Path(dir, "tiny"), nil, 0644))
	assert.False(t, Exists(dir, "tiny"), "empty file should not count")

	require.NoError(t, os.WriteFile(Path(dir, "tiny"), []byte("ggml"), 0644))
	assert.True(t, Exists(dir, "tiny"))
}

func newTestServer(t *testing.T, body string, hits *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		if r.URL.Path != "/ggml-tiny.bin" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownload(t *testing.T) {
	hits := 0
	srv := newTestServer(t, "fake-model-weights", &hits)
	dir := filepath.Join(t.TempDir(), "models")

	var progress bytes.Buffer
	d := NewDownloaderForTests(srv.Client(), srv.URL+"/", &progress, logging.Discard())
	require.NoError(t, d.Download(context.Background(), dir, "tiny"))

	data, err := os.ReadFile(filepath.Join(dir, "ggml-tiny.bin"))
	require.NoError(t, err)
	assert.Equal(t, "fake-model-weights", string(data))
	assert.Equal(t, 1, hits)

	_, err = os.Stat(filepath.Join(dir, "ggml-tiny.bin.tmp"))
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	// Second call keeps the existing file.
	require.NoError(t, d.Download(context.Background(), dir, "tiny"))
	assert.Equal(t, 1, hits)
}

func TestDownloadWithoutProgressOutput(t *testing.T) {
	hits := 0
	srv := newTestServer(t, "weights", &hits)
	dir := t.TempDir()

	d := NewDownloaderForTests(srv.Client(), srv.URL+"/", nil, logging.Discard())
	require.NoError(t, d.Download(context.Background(), dir, "tiny"))
	assert.True(t, Exists(dir, "tiny"))
}

func TestDownloadHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	dir := t.TempDir()

	d := NewDownloaderForTests(srv.Client(), srv.URL+"/", nil, logging.Discard())
	err := d.Download(context.Background(), dir, "tiny")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503")
	assert.False(t, Exists(dir, "tiny"))
}

func TestDownloadUnknownModel(t *testing.T) {
	d := NewDownloaderForTests(http.DefaultClient, "http://127.0.0.1:0/", nil, logging.Discard())
	err := d.Download(context.Background(), t.TempDir(), "gigantic")
	require.ErrorIs(t, err, ErrUnknownModel)
	assert.True(t, strings.Contains(err.Error(), "medium"), "error should list known models")
}

func TestResolve(t *testing.T) {
	hits := 0
	srv := newTestServer(t, "weights", &hits)
	d := NewDownloaderForTests(srv.Client(), srv.URL+"/", nil, logging.Discard())

	dir := t.TempDir()
	_, err := Resolve(context.Background(), d, dir, "tiny", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "models download tiny")
	assert.Zero(t, hits)

	path, err := Resolve(context.Background(), d, dir, "tiny", true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ggml-tiny.bin"), path)
	assert.Equal(t, 1, hits)

	path, err = Resolve(context.Background(), d, dir, "tiny", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ggml-tiny.bin"), path)
}

func TestDownloadCanceled(t *testing.T) {
	hits := 0
	srv := newTestServer(t, "weights", &hits)
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDownloaderForTests(srv.Client(), srv.URL+"/", nil, logging.Discard())
	err := d.Download(ctx, dir, "tiny")
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, hits)
	assert.False(t, Exists(dir, "tiny"))
}
