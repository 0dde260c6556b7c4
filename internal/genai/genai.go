// Package genai provides GenAI-enhanced operations using the OpenAI API.
package genai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Default generation parameters.
const (
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gpt-4o-mini"
	// DefaultTemperature balances variety against coherence for short
	// patient-facing text.
	DefaultTemperature = 0.8
	// DefaultMaxCompletionTokens bounds the upstream response size.
	DefaultMaxCompletionTokens = 600
	// DefaultSpeechModel is the text-to-speech model used for story audio.
	DefaultSpeechModel = "gpt-4o-mini-tts"
)

// Error variables for better error handling and testability
var (
	ErrAPIKeyNotSet      = errors.New("OPENAI_API_KEY not set")
	ErrNoChoicesReturned = errors.New("no choices returned")
	ErrEmptyAudio        = errors.New("empty audio returned")
)

// chatService defines minimal interface for chat completions.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// openaiChatService adapts the OpenAI SDK client to the chatService interface.
type openaiChatService struct {
	client openai.Client
}

func (s *openaiChatService) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// speechService defines minimal interface for speech synthesis.
type speechService interface {
	Create(ctx context.Context, params openai.AudioSpeechNewParams) (*http.Response, error)
}

// openaiSpeechService adapts the OpenAI SDK client to the speechService interface.
type openaiSpeechService struct {
	client openai.Client
}

func (s *openaiSpeechService) Create(ctx context.Context, params openai.AudioSpeechNewParams) (*http.Response, error) {
	return s.client.Audio.Speech.New(ctx, params)
}

// Opts holds configuration for the GenAI client.
type Opts struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Option configures GenAI client construction.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key, overriding the environment.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithBaseURL points the client at an alternate API endpoint.
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithModel overrides the default chat model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// Client wraps the OpenAI chat completion and speech synthesis services.
type Client struct {
	chat                chatService
	speech              speechService
	model               string
	speechModel         string
	temperature         float64
	maxCompletionTokens int
}

// NewClient initializes a new GenAI client. The API key comes from options or
// the OPENAI_API_KEY environment variable; without one, ErrAPIKeyNotSet is
// returned so callers can degrade gracefully instead of crashing.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	cli := openai.NewClient(reqOpts...)

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	slog.Debug("genai.NewClient: client initialized", "model", model, "base_url_set", cfg.BaseURL != "")

	return &Client{
		chat:                &openaiChatService{client: cli},
		speech:              &openaiSpeechService{client: cli},
		model:               model,
		speechModel:         DefaultSpeechModel,
		temperature:         DefaultTemperature,
		maxCompletionTokens: DefaultMaxCompletionTokens,
	}, nil
}

// GeneratePrompt generates a response based on the provided system and user prompts.
func (c *Client) GeneratePrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(userPrompt),
	}
	return c.GenerateWithMessages(ctx, messages)
}

// GenerateWithMessages generates a response from a full message history.
func (c *Client) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(c.model),
		Messages:            messages,
		Temperature:         openai.Float(c.temperature),
		MaxCompletionTokens: openai.Int(int64(c.maxCompletionTokens)),
	}
	resp, err := c.chat.Create(ctx, params)
	if err != nil {
		slog.Error("genai.GenerateWithMessages: chat completion failed", "error", err, "model", c.model)
		return "", err
	}
	if len(resp.Choices) == 0 {
		slog.Error("genai.GenerateWithMessages: response contained no choices", "model", c.model)
		return "", ErrNoChoicesReturned
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateSpeech synthesizes the given text into WAV audio bytes.
func (c *Client) GenerateSpeech(ctx context.Context, text string) ([]byte, error) {
	resp, err := c.speech.Create(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(c.speechModel),
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoiceAlloy,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatWAV,
	})
	if err != nil {
		slog.Error("genai.GenerateSpeech: speech synthesis failed", "error", err, "model", c.speechModel)
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("genai.GenerateSpeech: failed to read audio stream", "error", err)
		return nil, err
	}
	if len(data) == 0 {
		slog.Error("genai.GenerateSpeech: response contained no audio", "model", c.speechModel)
		return nil, ErrEmptyAudio
	}
	return data, nil
}
