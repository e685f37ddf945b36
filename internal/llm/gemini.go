package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models used by GeminiGateway.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGateway implements Gateway using Google's Gemini API with
// ResponseSchema-constrained JSON output.
type GeminiGateway struct {
	cfg    LLMConfig
	models contentGenerator
	caller caller
}

// NewGeminiGateway creates the process-wide Gemini client. The API key is read
// once here; the gateway is safe for concurrent use afterwards.
func NewGeminiGateway(ctx context.Context, cfg LLMConfig, observer Observer) (*GeminiGateway, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingCredential
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGeminiGateway(cfg, client.Models, observer), nil
}

func newGeminiGateway(cfg LLMConfig, models contentGenerator, observer Observer) *GeminiGateway {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &GeminiGateway{
		cfg:    cfg,
		models: models,
		caller: caller{cfg: cfg, provider: ProviderGemini, observer: observer},
	}
}

func (g *GeminiGateway) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	return g.caller.complete(ctx, req, g.attempt)
}

func (g *GeminiGateway) attempt(ctx context.Context, p callParams) (*Completion, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(p.Temperature)),
		ResponseMIMEType: "application/json",
		ResponseSchema:   p.Schema.GenAI(),
	}
	if p.MaxTokens > 0 {
		config.MaxOutputTokens = int32(p.MaxTokens)
	}

	result, err := g.models.GenerateContent(ctx, g.cfg.Model, genai.Text(p.Prompt), config)
	if err != nil {
		return nil, classifyGenAIError(err)
	}

	model := result.ModelVersion
	if model == "" {
		model = g.cfg.Model
	}
	return &Completion{Text: result.Text(), Model: model}, nil
}

// Available reports whether a client is configured. Gemini has no cheap
// unauthenticated health endpoint, so reachability is not probed.
func (g *GeminiGateway) Available(ctx context.Context) bool {
	return g.models != nil && ctx.Err() == nil
}

func classifyGenAIError(err error) error {
	provider := string(ProviderGemini)

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{Provider: provider, Kind: classifyStatus(apiErr.Code), StatusCode: apiErr.Code, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamError{Provider: provider, Kind: UpstreamTimeout, Err: err}
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return &UpstreamError{Provider: provider, Kind: UpstreamUnavailable, Err: err}
	}
	return &UpstreamError{Provider: provider, Kind: UpstreamUnknown, Err: err}
}
