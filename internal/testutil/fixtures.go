package testutil

import (
	"time"

	"github.com/alexanderramin/waypoint/internal/llm"
	"github.com/google/uuid"
)

// Call event options
type CallOption func(*llm.LLMCallEvent)

func WithRunID(id string) CallOption {
	return func(e *llm.LLMCallEvent) {
		e.RunID = id
	}
}

func WithCallFailure(code string) CallOption {
	return func(e *llm.LLMCallEvent) {
		e.Success = false
		e.ErrorCode = code
	}
}

func WithCallAt(t time.Time) CallOption {
	return func(e *llm.LLMCallEvent) {
		e.At = t
	}
}

func WithAttempts(n int) CallOption {
	return func(e *llm.LLMCallEvent) {
		e.Attempts = n
	}
}

func NewTestCallEvent(task llm.TaskType, opts ...CallOption) *llm.LLMCallEvent {
	e := &llm.LLMCallEvent{
		CallID:    uuid.New().String(),
		Task:      task,
		Provider:  llm.ProviderGemini,
		Model:     "gemini-2.0-flash",
		Attempts:  1,
		LatencyMs: 420,
		Success:   true,
		At:        time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
