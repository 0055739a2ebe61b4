package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaz8081/transcribe-latest/internal/device"
	"github.com/chaz8081/transcribe-latest/internal/transcribe"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"sample.mp3", "sample_transcript.txt"},
		{"AUDIOS/talk.final.m4a", "talk.final_transcript.txt"},
		{"/abs/path/clip.wav", "clip_transcript.txt"},
		{"noext", "noext_transcript.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.input))
		})
	}
}

func TestHeader(t *testing.T) {
	assert.Equal(t,
		"--- Detected Language (Model medium) on CPU: EN ---",
		Header("medium", device.CPU, "en"))
	assert.Equal(t,
		"--- Detected Language (Model large-v3) on MPS: UNKNOWN ---",
		Header("large-v3", device.MPS, "unknown"))
}

func TestWriteExactContent(t *testing.T) {
	dir := t.TempDir()

	path, err := Write(dir, "AUDIOS/sample.mp3", "medium", device.CPU,
		transcribe.Result{Text: "hello world", Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sample_transcript.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "--- Detected Language (Model medium) on CPU: EN ---\n\nhello world", string(data))
}

func TestWriteOverwrites(t *testing.T) {
	dir := t.TempDir()
	res := transcribe.Result{Text: "first run", Language: "en"}

	_, err := Write(dir, "sample.mp3", "medium", device.CUDA, res)
	require.NoError(t, err)

	res.Text = "second run"
	path, err := Write(dir, "sample.mp3", "medium", device.CPU, res)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "--- Detected Language (Model medium) on CPU: EN ---\n\nsecond run", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files should be left behind")
}

func TestWriteIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	res := transcribe.Result{Text: "same", Language: "fr"}

	path, err := Write(dir, "a.wav", "small", device.MPS, res)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = Write(dir, "a.wav", "small", device.MPS, res)
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestWriteMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")

	_, err := Write(dir, "sample.mp3", "medium", device.CPU, transcribe.Result{Text: "x", Language: "en"})
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "sample_transcript.txt"))
	assert.True(t, os.IsNotExist(statErr))
}
