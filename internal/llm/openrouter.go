package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Request wraps the standard OpenAI chat-completion request with the
// OpenRouter gateway-extension channel (`reasoning`, `min_p`, `top_a`,
// `repetition_penalty`) spec.md §4.1/§6 requires be sent outside the
// standard schema. go-openai's ChatCompletionRequest has no such field, so
// the OpenRouter call path marshals ExtraBody's keys directly into the
// request's top-level JSON object rather than fabricating a field on the
// vendored type.
type Request struct {
	openai.ChatCompletionRequest
	ExtraBody map[string]any
}

// OpenRouterProvider issues chat completions against an OpenRouter-style
// endpoint, per spec.md §4.1's "routed ALL through the OpenRouter-compatible
// endpoint" requirement. It is a thin net/http JSON client rather than a
// go-openai Client because go-openai cannot express the extra_body
// extension channel.
type OpenRouterProvider struct {
	HTTPClient *http.Client
	BaseURL    string // e.g. https://openrouter.ai/api/v1
	APIKey     string
}

func (p *OpenRouterProvider) CreateChatCompletion(ctx context.Context, req Request) (openai.ChatCompletionResponse, error) {
	body, err := mergeExtraBody(req.ChatCompletionRequest, req.ExtraBody)
	if err != nil {
		return openai.ChatCompletionResponse{}, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(body))
	if err != nil {
		return openai.ChatCompletionResponse{}, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.APIKey)

	client := p.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return openai.ChatCompletionResponse{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return openai.ChatCompletionResponse{}, &openai.APIError{HTTPStatusCode: resp.StatusCode, Message: string(raw)}
	}

	var out openai.ChatCompletionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return openai.ChatCompletionResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func (p *OpenRouterProvider) endpoint() string {
	base := p.BaseURL
	if base == "" {
		base = "https://openrouter.ai/api/v1"
	}
	return base + "/chat/completions"
}

func mergeExtraBody(req openai.ChatCompletionRequest, extra map[string]any) ([]byte, error) {
	base, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return base, nil
	}
	var merged map[string]any
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range extra {
		merged[k] = v
	}
	return json.Marshal(merged)
}
