package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/chaz8081/transcribe-latest/internal/config"
	"github.com/chaz8081/transcribe-latest/internal/device"
)

// OpenAILoader transcribes through the OpenAI audio API. The device is
// irrelevant to a remote model and is ignored.
type OpenAILoader struct {
	cfg      config.OpenAIConfig
	language string
	logger   *slog.Logger
}

// NewOpenAILoader creates a loader for the remote backend.
func NewOpenAILoader(cfg config.OpenAIConfig, language string, logger *slog.Logger) *OpenAILoader {
	return &OpenAILoader{cfg: cfg, language: language, logger: logger}
}

// Remote marks the loader as device independent.
func (l *OpenAILoader) Remote() bool {
	return true
}

// Load builds an API client. No request is made until Transcribe.
func (l *OpenAILoader) Load(ctx context.Context, name string, dev device.Device) (Model, error) {
	if l.cfg.APIKey == "" {
		return nil, fmt.Errorf("transcribe: %w: OPENAI_API_KEY is not set", ErrBackendUnavailable)
	}

	clientConfig := openai.DefaultConfig(l.cfg.APIKey)
	if l.cfg.BaseURL != "" {
		clientConfig.BaseURL = l.cfg.BaseURL
	}

	model := name
	if model == "" {
		model = string(openai.Whisper1)
	}
	l.logger.Debug("Using OpenAI transcription", "model", model, "base_url", clientConfig.BaseURL)

	return &openAIModel{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    model,
		language: l.language,
		logger:   l.logger,
	}, nil
}

type openAIModel struct {
	client   *openai.Client
	model    string
	language string
	logger   *slog.Logger
}

// Transcribe uploads the file and returns the text with the detected language.
func (m *openAIModel) Transcribe(ctx context.Context, path string) (Result, error) {
	if err := checkInput(m.logger, path); err != nil {
		return Result{}, err
	}

	req := openai.AudioRequest{
		Model:    m.model,
		FilePath: path,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}
	if lang := languageArg(m.language); lang != "auto" {
		req.Language = lang
	}

	resp, err := m.client.CreateTranscription(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("transcribe: openai: %w", describeAPIError(err))
	}

	lang := languageCode(resp.Language)
	if lang == "" {
		lang = req.Language
	}
	if lang == "" {
		lang = "unknown"
	}
	return Result{Text: strings.TrimSpace(resp.Text), Language: lang}, nil
}

func (m *openAIModel) Close() error {
	return nil
}

// describeAPIError adds an actionable hint to common API failures.
func describeAPIError(err error) error {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.HTTPStatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w (check OPENAI_API_KEY)", err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w (rate limited, try again later)", err)
	default:
		return err
	}
}
