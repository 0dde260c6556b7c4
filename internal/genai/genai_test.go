package genai

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/openai/openai-go"
)

// mockChatService implements chatService for testing.
type mockChatService struct {
	resp openai.ChatCompletion
	err  error

	gotParams openai.ChatCompletionNewParams
}

func (m *mockChatService) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	m.gotParams = params
	return m.resp, m.err
}

func TestGeneratePrompt_Success(t *testing.T) {
	// Prepare a mock response with one choice
	mockResp := openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "Hello World"}},
		},
	}
	mock := &mockChatService{resp: mockResp}
	client := &Client{chat: mock, model: "test-model", temperature: 0.1, maxCompletionTokens: 100}
	out, err := client.GeneratePrompt(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "Hello World" {
		t.Errorf("expected 'Hello World', got '%s'", out)
	}
	if len(mock.gotParams.Messages) != 2 {
		t.Errorf("expected system and user messages, got %d messages", len(mock.gotParams.Messages))
	}
	if string(mock.gotParams.Model) != "test-model" {
		t.Errorf("expected configured model forwarded, got %q", mock.gotParams.Model)
	}
}

func TestGeneratePrompt_ServiceError(t *testing.T) {
	client := &Client{chat: &mockChatService{err: errors.New("service failure")}, model: "test-model"}
	_, err := client.GeneratePrompt(context.Background(), "sys", "usr")
	if err == nil || !strings.Contains(err.Error(), "service failure") {
		t.Errorf("expected service failure error, got %v", err)
	}
}

func TestGeneratePrompt_NoChoices(t *testing.T) {
	// Empty choices slice
	mockResp := openai.ChatCompletion{Choices: []openai.ChatCompletionChoice{}}
	client := &Client{chat: &mockChatService{resp: mockResp}, model: "test-model"}
	_, err := client.GeneratePrompt(context.Background(), "sys", "usr")
	if err != ErrNoChoicesReturned {
		t.Errorf("expected no choices returned error, got %v", err)
	}
}

// mockSpeechService implements speechService for testing.
type mockSpeechService struct {
	audio []byte
	err   error

	gotParams openai.AudioSpeechNewParams
}

func (m *mockSpeechService) Create(ctx context.Context, params openai.AudioSpeechNewParams) (*http.Response, error) {
	m.gotParams = params
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(m.audio)),
	}, nil
}

func TestGenerateSpeech_Success(t *testing.T) {
	mock := &mockSpeechService{audio: []byte("RIFF fake audio")}
	client := &Client{speech: mock, speechModel: "test-tts"}
	data, err := client.GenerateSpeech(context.Background(), "Every small step counts.")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(data) != "RIFF fake audio" {
		t.Errorf("unexpected audio payload %q", data)
	}
	if mock.gotParams.Input != "Every small step counts." {
		t.Errorf("expected story text forwarded, got %q", mock.gotParams.Input)
	}
	if string(mock.gotParams.Model) != "test-tts" {
		t.Errorf("expected configured speech model forwarded, got %q", mock.gotParams.Model)
	}
}

func TestGenerateSpeech_ServiceError(t *testing.T) {
	client := &Client{speech: &mockSpeechService{err: errors.New("service failure")}, speechModel: "test-tts"}
	_, err := client.GenerateSpeech(context.Background(), "text")
	if err == nil || !strings.Contains(err.Error(), "service failure") {
		t.Errorf("expected service failure error, got %v", err)
	}
}

func TestGenerateSpeech_EmptyAudio(t *testing.T) {
	client := &Client{speech: &mockSpeechService{}, speechModel: "test-tts"}
	_, err := client.GenerateSpeech(context.Background(), "text")
	if !errors.Is(err, ErrEmptyAudio) {
		t.Errorf("expected ErrEmptyAudio, got %v", err)
	}
}

func TestNewClient_NoKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient()
	if !errors.Is(err, ErrAPIKeyNotSet) {
		t.Errorf("expected ErrAPIKeyNotSet when API key not provided, got %v", err)
	}
}

func TestNewClient_WithKey(t *testing.T) {
	cli, err := NewClient(WithAPIKey("test-key"), WithModel("test-model"))
	if err != nil {
		t.Fatalf("expected no error with API key, got %v", err)
	}
	if cli == nil {
		t.Fatal("expected client instance, got nil")
	}
	if cli.model != "test-model" {
		t.Errorf("expected model override, got %q", cli.model)
	}
}
