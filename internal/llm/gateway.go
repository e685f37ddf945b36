package llm

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// CompletionRequest holds the parameters for one schema-constrained completion.
type CompletionRequest struct {
	Task        TaskType
	Prompt      string
	Schema      *Schema
	Temperature *float64 // nil uses task default
	MaxTokens   *int     // nil uses task default
}

// Completion is the raw text returned by the upstream, uninterpreted.
type Completion struct {
	Text      string
	Model     string
	LatencyMs int64
}

// Gateway performs schema-constrained completions against an external model.
type Gateway interface {
	// Complete sends one prompt with its output schema and returns the raw text.
	// Failures are reported as *UpstreamError.
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)

	// Available checks whether the completion service is reachable.
	Available(ctx context.Context) bool
}

// callParams are the resolved request parameters handed to a provider attempt.
type callParams struct {
	Prompt      string
	Schema      *Schema
	Temperature float64
	MaxTokens   int
}

type attemptFunc func(ctx context.Context, p callParams) (*Completion, error)

// caller holds the behaviour shared by every provider: parameter resolution,
// per-attempt timeouts, bounded retries of transient failures and observation.
type caller struct {
	cfg      LLMConfig
	provider Provider
	observer Observer
}

func (c caller) complete(ctx context.Context, req CompletionRequest, attempt attemptFunc) (*Completion, error) {
	start := time.Now()

	taskCfg := c.cfg.Tasks[req.Task]
	params := callParams{
		Prompt:      req.Prompt,
		Schema:      req.Schema,
		Temperature: taskCfg.Temperature,
		MaxTokens:   taskCfg.MaxTokens,
	}
	if req.Temperature != nil {
		params.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		params.MaxTokens = *req.MaxTokens
	}
	timeout := time.Duration(c.cfg.TaskTimeout(req.Task)) * time.Millisecond

	event := LLMCallEvent{
		CallID:   uuid.NewString(),
		RunID:    RunIDFrom(ctx),
		Task:     req.Task,
		Provider: c.provider,
		Model:    c.cfg.Model,
		At:       start.UTC(),
	}

	var lastErr error
	maxAttempts := 1 + c.cfg.MaxRetries

	for event.Attempts < maxAttempts {
		event.Attempts++
		resp, err := c.attemptWithTimeout(ctx, timeout, params, attempt)
		if err == nil {
			resp.LatencyMs = time.Since(start).Milliseconds()
			if resp.Model == "" {
				resp.Model = c.cfg.Model
			}
			event.Model = resp.Model
			event.LatencyMs = resp.LatencyMs
			event.Success = true
			c.observer.OnCallComplete(event)
			return resp, nil
		}
		lastErr = err

		// Don't retry once the caller has gone away or the failure is permanent.
		if ctx.Err() != nil {
			break
		}
		var upErr *UpstreamError
		if errors.As(err, &upErr) && !upErr.Kind.Transient() {
			break
		}
	}

	if ctx.Err() != nil && !errors.Is(lastErr, ErrTimeout) {
		lastErr = &UpstreamError{Provider: string(c.provider), Kind: UpstreamTimeout, Err: ctx.Err()}
	}
	var upErr *UpstreamError
	if !errors.As(lastErr, &upErr) {
		lastErr = &UpstreamError{Provider: string(c.provider), Kind: UpstreamUnknown, Err: lastErr}
	}

	event.LatencyMs = time.Since(start).Milliseconds()
	event.ErrorCode = errorCode(lastErr)
	c.observer.OnCallComplete(event)

	return nil, lastErr
}

func (c caller) attemptWithTimeout(ctx context.Context, timeout time.Duration, p callParams, attempt attemptFunc) (*Completion, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	resp, err := attempt(ctx, p)
	if err != nil && ctx.Err() != nil {
		return nil, &UpstreamError{Provider: string(c.provider), Kind: UpstreamTimeout, Err: ctx.Err()}
	}
	return resp, err
}
