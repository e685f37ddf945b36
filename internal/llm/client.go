package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// OllamaGateway implements Gateway using the Ollama HTTP API. The output
// schema is sent in the "format" field so the server constrains decoding.
type OllamaGateway struct {
	cfg    LLMConfig
	http   *http.Client
	caller caller
}

// NewOllamaGateway creates a Gateway that talks to an Ollama instance.
func NewOllamaGateway(cfg LLMConfig, observer Observer) *OllamaGateway {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &OllamaGateway{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		caller: caller{cfg: cfg, provider: ProviderOllama, observer: observer},
	}
}

// ollamaRequest is the JSON body sent to POST /api/generate.
type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Format  map[string]any `json:"format,omitempty"`
	Stream  bool           `json:"stream"`
	Options ollamaOptions  `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// ollamaResponse is the JSON body returned by POST /api/generate (non-streaming).
type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

func (g *OllamaGateway) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	return g.caller.complete(ctx, req, g.attempt)
}

func (g *OllamaGateway) attempt(ctx context.Context, p callParams) (*Completion, error) {
	body := ollamaRequest{
		Model:  g.cfg.Model,
		Prompt: p.Prompt,
		Format: p.Schema.JSONSchema(),
		Stream: false,
		Options: ollamaOptions{
			Temperature: p.Temperature,
			NumPredict:  p.MaxTokens,
		},
	}

	resp, err := g.doRequest(ctx, body)
	if err != nil {
		return nil, err
	}
	return &Completion{Text: resp.Response, Model: resp.Model}, nil
}

func (g *OllamaGateway) doRequest(ctx context.Context, body ollamaRequest) (*ollamaResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, g.upstreamErr(UpstreamRejected, 0, fmt.Errorf("marshaling request: %w", err))
	}

	url := g.cfg.Endpoint + "/api/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, g.upstreamErr(UpstreamRejected, 0, fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.http.Do(httpReq)
	if err != nil {
		if isConnectionError(err) {
			return nil, g.upstreamErr(UpstreamUnavailable, 0, err)
		}
		return nil, g.upstreamErr(UpstreamUnknown, 0, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, g.upstreamErr(UpstreamUnknown, 0, fmt.Errorf("reading response: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, g.upstreamErr(classifyStatus(httpResp.StatusCode), httpResp.StatusCode,
			fmt.Errorf("ollama returned: %s", string(respBody)))
	}

	var resp ollamaResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, g.upstreamErr(UpstreamUnknown, httpResp.StatusCode, fmt.Errorf("decoding response: %w", err))
	}

	return &resp, nil
}

func (g *OllamaGateway) upstreamErr(kind UpstreamKind, status int, err error) error {
	return &UpstreamError{Provider: string(ProviderOllama), Kind: kind, StatusCode: status, Err: err}
}

func (g *OllamaGateway) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	url := g.cfg.Endpoint + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
