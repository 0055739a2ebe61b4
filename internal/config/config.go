package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. It is built once at startup
// and treated as read-only for the rest of the run.
type Config struct {
	Model      string        `yaml:"model"`
	Backend    string        `yaml:"backend"` // "whisper-cli", "embedded" or "openai"
	InputDir   string        `yaml:"input_dir"`
	OutputDir  string        `yaml:"output_dir"`
	Extensions []string      `yaml:"extensions"`
	Language   string        `yaml:"language"`
	LogLevel   string        `yaml:"log_level"`
	Whisper    WhisperConfig `yaml:"whisper"`
	FFmpeg     FFmpegConfig  `yaml:"ffmpeg"`
	OpenAI     OpenAIConfig  `yaml:"openai"`
}

// WhisperConfig holds settings shared by the whisper.cpp backends.
type WhisperConfig struct {
	Binary       string `yaml:"binary"`
	ModelsDir    string `yaml:"models_dir"`
	Threads      uint   `yaml:"threads"` // 0 = physical core count
	AutoDownload bool   `yaml:"auto_download"`
}

// FFmpegConfig holds media preprocessing settings.
type FFmpegConfig struct {
	Binary string `yaml:"binary"`
}

// OpenAIConfig holds settings for the remote transcription backend.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// Backend names accepted in the backend field.
const (
	BackendWhisperCLI = "whisper-cli"
	BackendEmbedded   = "embedded"
	BackendOpenAI     = "openai"
)

// DefaultExtensions is the media allow-list. Matching is case-sensitive.
var DefaultExtensions = []string{".mp3", ".mp4", ".wav", ".flac", ".m4a", ".ogg", ".mov", ".avi"}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "transcribe-latest")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultModelsDir returns the directory ggml model files are stored in.
func DefaultModelsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("models")
	}
	return filepath.Join(home, ".local", "share", "transcribe-latest", "models")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Model:      "medium",
		Backend:    BackendWhisperCLI,
		InputDir:   "AUDIOS",
		OutputDir:  "TRANSCRIPTIONS",
		Extensions: append([]string(nil), DefaultExtensions...),
		Language:   "auto",
		LogLevel:   "info",
		Whisper: WhisperConfig{
			Binary:       "whisper-cli",
			ModelsDir:    DefaultModelsDir(),
			AutoDownload: true,
		},
		FFmpeg: FFmpegConfig{
			Binary: "ffmpeg",
		},
		OpenAI: OpenAIConfig{
			Model: "whisper-1",
		},
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in directory paths is expanded to the user's home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.InputDir = expandTilde(cfg.InputDir)
	cfg.OutputDir = expandTilde(cfg.OutputDir)
	cfg.Whisper.ModelsDir = expandTilde(cfg.Whisper.ModelsDir)

	return cfg, nil
}

// envFiles are tried in order; the first one found is loaded.
var envFiles = []string{".env", ".env.local"}

// LoadEnv loads environment variables from a .env file in the working
// directory if one exists. Variables already set in the process win.
func LoadEnv() (string, error) {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return "", fmt.Errorf("loading %s: %w", name, err)
		}
		return name, nil
	}
	return "", nil
}

// ApplyEnv fills secrets the config file left empty from the environment.
func (c *Config) ApplyEnv() {
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model must not be empty")
	}

	if c.InputDir == "" {
		return fmt.Errorf("input_dir must not be empty")
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}

	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions must not be empty")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}

	switch c.Backend {
	case BackendWhisperCLI:
		if c.Whisper.Binary == "" {
			return fmt.Errorf("whisper.binary must not be empty for backend %q", c.Backend)
		}
		if c.Whisper.ModelsDir == "" {
			return fmt.Errorf("whisper.models_dir must not be empty for backend %q", c.Backend)
		}
		if c.FFmpeg.Binary == "" {
			return fmt.Errorf("ffmpeg.binary must not be empty for backend %q", c.Backend)
		}
	case BackendEmbedded:
		if c.Whisper.ModelsDir == "" {
			return fmt.Errorf("whisper.models_dir must not be empty for backend %q", c.Backend)
		}
		if c.FFmpeg.Binary == "" {
			return fmt.Errorf("ffmpeg.binary must not be empty for backend %q", c.Backend)
		}
	case BackendOpenAI:
		if c.OpenAI.Model == "" {
			return fmt.Errorf("openai.model must not be empty")
		}
	default:
		return fmt.Errorf("backend must be %q, %q or %q, got %q",
			BackendWhisperCLI, BackendEmbedded, BackendOpenAI, c.Backend)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// ModelName returns the model identifier passed to the active backend and
// printed in transcript headers.
func (c *Config) ModelName() string {
	if c.Backend == BackendOpenAI {
		return c.OpenAI.Model
	}
	return c.Model
}

// ParseLogLevel maps a config log level string to slog.Level.
// Unknown values fall back to info.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const defaultHeader = `# transcribe-latest configuration
# Transcribes the newest media file in input_dir into output_dir.
# Delete a key to fall back to its built-in default.
`

// WriteDefault writes the default config to DefaultConfigPath. If a config
// file already exists it is left untouched and ("", nil) is returned.
func WriteDefault() (string, error) {
	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return "", nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(defaultHeader), data...), 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
