package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the command tree with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigExplicitPath(t *testing.T) {
	path := writeConfig(t, "model: small\n")

	cfg, source, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "small", cfg.Model)
	assert.Equal(t, path, source)
}

func TestLoadConfigDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".config", "transcribe-latest")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("model: base\n"), 0644))

	cfg, source, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "base", cfg.Model)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), source)
}

func TestLoadConfigBuiltInDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, source, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "medium", cfg.Model)
	assert.Equal(t, "built-in defaults", source)
}

func TestVersionCmd(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestConfigInitCmd(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	stdout, _, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote default config")
	assert.FileExists(t, filepath.Join(home, ".config", "transcribe-latest", "config.yaml"))

	stdout, _, err = execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Config already exists")
}

func TestModelsListCmd(t *testing.T) {
	modelsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(modelsDir, "ggml-medium.bin"), []byte("stub"), 0644))
	path := writeConfig(t, "whisper:\n  models_dir: "+modelsDir+"\n")

	stdout, _, err := execute(t, "--config", path, "models", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, modelsDir)
	assert.Regexp(t, `\* medium\s+1\.5 GB\s+downloaded`, stdout)
	assert.Regexp(t, `  tiny\s+75 MB\s+\n`, stdout)
}

func TestRootNoMediaFiles(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "AUDIOS")
	out := filepath.Join(root, "TRANSCRIPTIONS")
	path := writeConfig(t, "input_dir: "+in+"\noutput_dir: "+out+"\n")

	stdout, stderr, err := execute(t, "-c", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "=== transcribe-latest ===")
	assert.Contains(t, stderr, "No media files found")
	assert.DirExists(t, in)
	assert.DirExists(t, out)
}

func TestRootInvalidConfig(t *testing.T) {
	path := writeConfig(t, "backend: vosk\n")

	_, stderr, err := execute(t, "-c", path)
	require.Error(t, err)
	assert.Contains(t, stderr, "config validation")
}

func TestRootRejectsArgs(t *testing.T) {
	_, _, err := execute(t, "AUDIOS")
	assert.Error(t, err)
}
