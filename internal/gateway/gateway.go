// Package gateway wraps calls to the external language model for the two
// generation operations the backend exposes: motivational story generation
// and task schedule generation.
//
// The gateway is stateless per call. It owns request construction, response
// parsing, and translation of upstream failures into the error taxonomy the
// HTTP layer maps to status codes.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/viberehab/backend/internal/models"
)

// DefaultUpstreamTimeout bounds a single round trip to the model. The
// original prototype used a 30 second request timeout.
const DefaultUpstreamTimeout = 30 * time.Second

// Error variables for better error handling and testability
var (
	// ErrEmptyTaskList is returned before any upstream call is made.
	ErrEmptyTaskList = errors.New("task list cannot be empty")
	// ErrUpstreamUnavailable covers network, auth, and timeout failures.
	ErrUpstreamUnavailable = errors.New("upstream model unavailable")
	// ErrMalformedUpstreamResponse covers model output that does not match
	// the requested structure. No retry is attempted.
	ErrMalformedUpstreamResponse = errors.New("malformed upstream response")
)

const storySystemPrompt = `You are a gentle motivational coach for a rehabilitation patient.
Write a short inspirational story of at most 100 words.
Use short sentences and plain words so the text reads well aloud.
Themes: patience, resilience, small victories.
Do not use markup, emoji, lists, or quotation marks. Respond with the story text only.`

const storyUserPrompt = "Write a short motivational story for today's recovery session."

const scheduleSystemPrompt = `You slot a rehabilitation patient's exercise tasks into a daily time plan.
Respond with a JSON array only, no prose and no code fences.
Each element must be an object with exactly two string fields: "time" and "task".
Times use the form "H:MM AM" or "H:MM PM" and should progress through a single day starting around 9:00 AM.
Every task from the list must appear at least once; recurring tasks such as posture checks may appear several times.
Task values must be copied verbatim from the list.`

// Generator produces patient-facing content from the upstream model.
// Tests substitute a deterministic implementation.
type Generator interface {
	GenerateStory(ctx context.Context) (string, error)
	GenerateSchedule(ctx context.Context, tasks []string) ([]models.ScheduleSlot, error)
	SynthesizeSpeech(ctx context.Context, text string) ([]byte, error)
}

// promptClient is the minimal surface the gateway needs from the GenAI client.
type promptClient interface {
	GeneratePrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// speechClient is the optional speech synthesis surface of the GenAI client.
type speechClient interface {
	GenerateSpeech(ctx context.Context, text string) ([]byte, error)
}

// Gateway implements Generator against an OpenAI-backed prompt client.
// A Gateway with a nil client is valid and reports every call as upstream
// unavailable, so a missing API key degrades the AI endpoints instead of
// crashing the process.
type Gateway struct {
	llm promptClient
	tts speechClient
}

// New creates a gateway around the given prompt client. llm may be nil.
// When the client also supports speech synthesis, story audio becomes
// available through SynthesizeSpeech.
func New(llm promptClient) *Gateway {
	g := &Gateway{llm: llm}
	if tts, ok := llm.(speechClient); ok {
		g.tts = tts
	}
	return g
}

// GenerateStory asks the model for a short motivational narrative suitable
// for speech synthesis.
func (g *Gateway) GenerateStory(ctx context.Context) (string, error) {
	if g.llm == nil {
		return "", fmt.Errorf("%w: no model API key configured", ErrUpstreamUnavailable)
	}
	raw, err := g.llm.GeneratePrompt(ctx, storySystemPrompt, storyUserPrompt)
	if err != nil {
		slog.Error("Gateway.GenerateStory: upstream call failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	story := strings.TrimSpace(raw)
	if story == "" {
		slog.Error("Gateway.GenerateStory: upstream returned empty story")
		return "", fmt.Errorf("%w: empty story text", ErrUpstreamUnavailable)
	}
	slog.Debug("Gateway.GenerateStory: story generated", "length", len(story))
	return story, nil
}

// GenerateSchedule asks the model to slot the given task names into a daily
// time plan and returns the parsed slots. The input list must be non-empty;
// duplicates are permitted.
func (g *Gateway) GenerateSchedule(ctx context.Context, tasks []string) ([]models.ScheduleSlot, error) {
	if len(tasks) == 0 {
		return nil, ErrEmptyTaskList
	}
	if g.llm == nil {
		return nil, fmt.Errorf("%w: no model API key configured", ErrUpstreamUnavailable)
	}
	raw, err := g.llm.GeneratePrompt(ctx, scheduleSystemPrompt, buildScheduleUserPrompt(tasks))
	if err != nil {
		slog.Error("Gateway.GenerateSchedule: upstream call failed", "error", err, "task_count", len(tasks))
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	slots, err := parseSchedule(raw, tasks)
	if err != nil {
		slog.Error("Gateway.GenerateSchedule: failed to parse upstream response", "error", err)
		return nil, err
	}
	slog.Debug("Gateway.GenerateSchedule: schedule generated", "task_count", len(tasks), "slot_count", len(slots))
	return slots, nil
}

// SynthesizeSpeech turns story text into audio bytes for playback. The
// returned bytes are WAV-encoded.
func (g *Gateway) SynthesizeSpeech(ctx context.Context, text string) ([]byte, error) {
	if g.tts == nil {
		return nil, fmt.Errorf("%w: speech synthesis not configured", ErrUpstreamUnavailable)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no text to synthesize", ErrUpstreamUnavailable)
	}
	data, err := g.tts.GenerateSpeech(ctx, text)
	if err != nil {
		slog.Error("Gateway.SynthesizeSpeech: upstream call failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	if len(data) == 0 {
		slog.Error("Gateway.SynthesizeSpeech: upstream returned empty audio")
		return nil, fmt.Errorf("%w: empty audio payload", ErrUpstreamUnavailable)
	}
	slog.Debug("Gateway.SynthesizeSpeech: audio synthesized", "size_bytes", len(data))
	return data, nil
}

// buildScheduleUserPrompt renders the task list into the model instruction.
func buildScheduleUserPrompt(tasks []string) string {
	var b strings.Builder
	b.WriteString("Schedule the following tasks across today, starting at 9:00 AM. Prefer walks in the afternoon and stretches after long sitting periods.\nTasks:\n")
	for _, task := range tasks {
		b.WriteString("- ")
		b.WriteString(task)
		b.WriteByte('\n')
	}
	return b.String()
}

// parseSchedule extracts and validates the slot array from the model output.
// Both a bare array and a {"schedule": [...]} wrapper are accepted, with or
// without surrounding code fences.
func parseSchedule(raw string, tasks []string) ([]models.ScheduleSlot, error) {
	payload := extractJSON(raw)

	var slots []models.ScheduleSlot
	if err := json.Unmarshal([]byte(payload), &slots); err != nil {
		var wrapper struct {
			Schedule []models.ScheduleSlot `json:"schedule"`
		}
		if err := json.Unmarshal([]byte(payload), &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedUpstreamResponse, err)
		}
		slots = wrapper.Schedule
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: empty schedule", ErrMalformedUpstreamResponse)
	}

	known := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		known[task] = false
	}
	for _, slot := range slots {
		if slot.Time == "" || slot.Task == "" {
			return nil, fmt.Errorf("%w: slot missing time or task", ErrMalformedUpstreamResponse)
		}
		if _, ok := known[slot.Task]; !ok {
			return nil, fmt.Errorf("%w: unknown task %q in schedule", ErrMalformedUpstreamResponse, slot.Task)
		}
		known[slot.Task] = true
	}
	for task, seen := range known {
		if !seen {
			return nil, fmt.Errorf("%w: task %q missing from schedule", ErrMalformedUpstreamResponse, task)
		}
	}
	return slots, nil
}

// extractJSON strips markdown code fences some models wrap around JSON.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
