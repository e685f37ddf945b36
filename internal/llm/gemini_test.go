package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	calls  int
	model  string
	config *genai.GenerateContentConfig
	prompt string
	resp   *genai.GenerateContentResponse
	err    error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}, Role: genai.RoleModel},
		}},
	}
}

func geminiTestConfig() LLMConfig {
	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.Model = "gemini-test"
	return cfg
}

func TestGeminiGateway_Complete_SendsSchemaAndTemperature(t *testing.T) {
	fake := &fakeModels{resp: textResponse(`{"name":"go"}`)}
	gw := newGeminiGateway(geminiTestConfig(), fake, NoopObserver{})

	temp := 0.7
	resp, err := gw.Complete(context.Background(), CompletionRequest{
		Task:        TaskRoadmap,
		Prompt:      "build me a plan",
		Schema:      testPayloadSchema(),
		Temperature: &temp,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"name":"go"}`, resp.Text)
	assert.Equal(t, "gemini-test", resp.Model)
	assert.Equal(t, "gemini-test", fake.model)
	assert.Equal(t, "build me a plan", fake.prompt)
	assert.Equal(t, "application/json", fake.config.ResponseMIMEType)
	require.NotNil(t, fake.config.ResponseSchema)
	assert.Equal(t, genai.TypeObject, fake.config.ResponseSchema.Type)
	require.NotNil(t, fake.config.Temperature)
	assert.InDelta(t, 0.7, *fake.config.Temperature, 0.0001)
	assert.Equal(t, int32(8192), fake.config.MaxOutputTokens)
}

func TestGeminiGateway_Complete_APIErrorClassified(t *testing.T) {
	cases := []struct {
		code int
		kind UpstreamKind
	}{
		{400, UpstreamRejected},
		{403, UpstreamAuth},
		{429, UpstreamRateLimited},
		{503, UpstreamServer},
	}
	for _, tc := range cases {
		fake := &fakeModels{err: genai.APIError{Code: tc.code, Message: "boom"}}
		gw := newGeminiGateway(geminiTestConfig(), fake, NoopObserver{})

		_, err := gw.Complete(context.Background(), CompletionRequest{Task: TaskRoadmap, Prompt: "p"})

		var upErr *UpstreamError
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, tc.kind, upErr.Kind)
		assert.Equal(t, tc.code, upErr.StatusCode)
		assert.ErrorIs(t, err, ErrUpstreamFailure)
	}
}

func TestGeminiGateway_Complete_RetriesRateLimit(t *testing.T) {
	fake := &fakeModels{err: genai.APIError{Code: 429, Message: "slow down"}}
	cfg := geminiTestConfig()
	cfg.MaxRetries = 2
	gw := newGeminiGateway(cfg, fake, NoopObserver{})

	_, err := gw.Complete(context.Background(), CompletionRequest{Task: TaskRoadmap, Prompt: "p"})

	assert.ErrorIs(t, err, ErrUpstreamFailure)
	assert.Equal(t, 3, fake.calls)
}

func TestGeminiGateway_Complete_UnknownErrorWrapped(t *testing.T) {
	fake := &fakeModels{err: errors.New("socket closed")}
	gw := newGeminiGateway(geminiTestConfig(), fake, NoopObserver{})

	_, err := gw.Complete(context.Background(), CompletionRequest{Task: TaskRoadmap, Prompt: "p"})

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, UpstreamUnknown, upErr.Kind)
	assert.Contains(t, err.Error(), "socket closed")
}

func TestNewGeminiGateway_RequiresCredential(t *testing.T) {
	cfg := geminiTestConfig()
	cfg.APIKey = ""
	_, err := NewGeminiGateway(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, ErrMissingCredential)
}
