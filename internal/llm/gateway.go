// Package llm implements the parameter-aware LLM gateway of spec.md §4.1:
// message preparation, model-family parameter filtering, retrying
// transient provider failures, the `now()` tool, response parsing, and
// automatic citation verification after generation.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/litassist-core/internal/apierr"
	"github.com/hyperifyio/litassist-core/internal/audit"
	"github.com/hyperifyio/litassist-core/internal/citation"
)

// Usage normalizes a chat completion's token accounting, defaulting every
// field to 0 when the provider omits it, per spec.md §4.1.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionResult is what Complete returns: the generated text, its token
// usage, and any lenient-mode citation warnings collected during automatic
// verification.
type CompletionResult struct {
	Content  string
	Usage    Usage
	Warnings []string
}

// Overrides carries per-call parameter and behaviour overrides layered atop
// a Client's defaults, per spec.md §4.1.
type Overrides struct {
	Params                    map[string]any
	SkipCitationVerification  bool
	ToolsEnabled              bool
	StrictCitations           bool
}

// Client is a command-bound LLM gateway: one (model, default-parameter)
// pair plus the collaborators needed for retry logging, tool dispatch, and
// automatic citation verification, per spec.md §3's client ownership model.
type Client struct {
	Provider ChatCompleter
	Model    string
	Defaults map[string]any

	Logger       *audit.Logger
	CommandTag   string
	Verifier     *citation.Verifier

	// StrictCitations mirrors the client-level `_enforce_citations` flag of
	// spec.md §4.1. Strict mode applies when either this flag or a call's
	// Overrides.StrictCitations is true; a call cannot turn it off.
	StrictCitations bool
}

// ChatCompleter is the minimal OpenAI-compatible surface the gateway
// calls through, matching the teacher's internal/llm/provider.go Client
// interface (kept unmodified; this package only adds a distinct name to
// avoid colliding with the gateway's own Client type).
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request Request) (openai.ChatCompletionResponse, error)
}

// Complete runs the full gateway pipeline of spec.md §4.1: message
// preparation, parameter filtering, retrying API call, tool dispatch,
// response parsing, and (unless skipped) automatic citation verification.
func (c *Client) Complete(ctx context.Context, messages []openai.ChatCompletionMessage, overrides Overrides) (CompletionResult, error) {
	family := ClassifyModel(c.Model)
	toolsEnabled := overrides.ToolsEnabled

	prepared := PrepareMessages(family, messages, toolsEnabled)
	params, extraBody := PrepareParams(family, c.Defaults, overrides.Params)

	resp, conversation, err := c.callWithRetry(ctx, family, prepared, params, extraBody, toolsEnabled)
	if err != nil {
		return CompletionResult{}, err
	}

	content, usage, err := parseResponse(resp)
	if err != nil {
		return CompletionResult{}, err
	}

	_ = conversation

	if overrides.SkipCitationVerification || c.Verifier == nil {
		c.logSuccess(prepared, params, content, usage)
		return CompletionResult{Content: content, Usage: usage}, nil
	}

	strict := c.StrictCitations || overrides.StrictCitations
	result, verr := citation.VerifyAll(ctx, content, c.Verifier, c.Logger, strict)
	if verr != nil {
		var citeErr *apierr.CitationVerificationError
		if errors.As(verr, &citeErr) {
			retryResult, retryErr := c.retryWithStrictInstruction(ctx, family, prepared, params, extraBody, toolsEnabled, strict)
			if retryErr == nil {
				return retryResult, nil
			}
		}
		return CompletionResult{}, verr
	}
	c.logSuccess(prepared, params, result.Cleaned, usage)
	return CompletionResult{Content: result.Cleaned, Usage: usage, Warnings: result.Warnings}, nil
}

// retryWithStrictInstruction implements spec.md §4.1's single retry on
// strict-mode citation failure: append a "strict citation" instruction to
// the last user message, resubmit, and re-verify.
func (c *Client) retryWithStrictInstruction(ctx context.Context, family ModelFamily, messages []openai.ChatCompletionMessage, params, extraBody map[string]any, toolsEnabled, strict bool) (CompletionResult, error) {
	enhanced := make([]openai.ChatCompletionMessage, len(messages))
	copy(enhanced, messages)
	lastUser := -1
	for i, m := range enhanced {
		if m.Role == openai.ChatMessageRoleUser {
			lastUser = i
		}
	}
	if lastUser >= 0 {
		enhanced[lastUser].Content += "\n\n" + strictCitationInstruction
	}

	resp, _, err := c.callWithRetry(ctx, family, enhanced, params, extraBody, toolsEnabled)
	if err != nil {
		return CompletionResult{}, err
	}
	content, usage, err := parseResponse(resp)
	if err != nil {
		return CompletionResult{}, err
	}
	result, verr := citation.VerifyAll(ctx, content, c.Verifier, c.Logger, strict)
	if verr != nil {
		return CompletionResult{}, verr
	}
	c.logSuccess(enhanced, params, result.Cleaned, usage)
	return CompletionResult{Content: result.Cleaned, Usage: usage, Warnings: result.Warnings}, nil
}

// strictCitationInstruction is the prompt-registry entry spec.md §4.1 says
// is "fetched from the prompt registry" for the single strict-mode retry.
const strictCitationInstruction = "Every legal citation in your answer must be verifiable in an Australian case-law or legislation database. Remove or replace any citation you cannot confirm exists."

// callWithRetry issues the chat completion with the retry policy of spec.md
// §4.1: up to 5 attempts, exponential backoff, audit logging of every retry
// and the final failure, and tool-rejection fallback.
func (c *Client) callWithRetry(ctx context.Context, family ModelFamily, messages []openai.ChatCompletionMessage, params, extraBody map[string]any, toolsEnabled bool) (openai.ChatCompletionResponse, []openai.ChatCompletionMessage, error) {
	conversation := messages
	tools := toolsForCall(toolsEnabled)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		req := buildRequest(c.Model, conversation, params, extraBody, tools)
		resp, err := c.Provider.CreateChatCompletion(ctx, req)
		if err == nil {
			if toolsEnabled {
				updated, dispatchErr := dispatchToolCalls(conversation, resp)
				if dispatchErr != nil {
					if mentionsTools(dispatchErr.Error()) {
						return c.callWithRetry(ctx, family, messages, params, extraBody, false)
					}
					return openai.ChatCompletionResponse{}, conversation, dispatchErr
				}
				if len(updated) > len(conversation) {
					followUp, followErr := c.Provider.CreateChatCompletion(ctx, buildRequest(c.Model, updated, params, extraBody, nil))
					if followErr != nil {
						return openai.ChatCompletionResponse{}, updated, classifyAPIError(followErr)
					}
					return followUp, updated, nil
				}
			}
			return resp, conversation, nil
		}

		classified := classifyAPIError(err)
		if mentionsTools(err.Error()) && toolsEnabled {
			return c.callWithRetry(ctx, family, messages, params, extraBody, false)
		}
		if apierr.IsNonRetryable(classified) {
			c.logRetry(conversation, params, attempt, classified)
			return openai.ChatCompletionResponse{}, conversation, classified
		}
		var authErr *apierr.AuthenticationError
		if errors.As(classified, &authErr) {
			c.logRetry(conversation, params, attempt, classified)
			return openai.ChatCompletionResponse{}, conversation, classified
		}
		if !apierr.IsRetryable(classified) {
			c.logRetry(conversation, params, attempt, classified)
			return openai.ChatCompletionResponse{}, conversation, classified
		}

		lastErr = classified
		c.logRetry(conversation, params, attempt, classified)
		if attempt < maxAttempts-1 {
			time.Sleep(backoffDelay(attempt))
		}
	}

	c.logFinalFailure(conversation, params, lastErr)
	return openai.ChatCompletionResponse{}, conversation, fmt.Errorf("llm call failed after %d attempts: %w", maxAttempts, lastErr)
}

func buildRequest(model string, messages []openai.ChatCompletionMessage, params, extraBody map[string]any, tools []openai.Tool) Request {
	req := Request{ChatCompletionRequest: openai.ChatCompletionRequest{Model: model, Messages: messages, N: 1}, ExtraBody: extraBody}
	if tools != nil {
		req.Tools = tools
	}
	applyParams(&req.ChatCompletionRequest, params)
	return req
}

// applyParams copies the filtered parameter map onto the typed request
// fields the go-openai client understands.
func applyParams(req *openai.ChatCompletionRequest, params map[string]any) {
	if v, ok := params["max_tokens"].(int); ok {
		req.MaxTokens = v
	}
	if v, ok := params["max_completion_tokens"].(int); ok {
		req.MaxCompletionTokens = v
	}
	if v, ok := params["temperature"].(float64); ok {
		req.Temperature = float32(v)
	}
	if v, ok := params["top_p"].(float64); ok {
		req.TopP = float32(v)
	}
	if v, ok := params["presence_penalty"].(float64); ok {
		req.PresencePenalty = float32(v)
	}
	if v, ok := params["frequency_penalty"].(float64); ok {
		req.FrequencyPenalty = float32(v)
	}
}

func (c *Client) logRetry(messages []openai.ChatCompletionMessage, params map[string]any, attempt int, err error) {
	if c.Logger == nil {
		return
	}
	payload := audit.LogPayload{
		"messages_sent": summarizeMessages(messages),
		"model":         c.Model,
		"params":        params,
		"attempt":       attempt + 1,
		"error":         err.Error(),
	}
	_, _ = c.Logger.SaveLog(tagged(c.CommandTag, "llm_retry"), payload)
}

// logSuccess persists the one audit record spec.md §8's testable property
// requires for every successful LLM call: tagged llm_<model-sanitised>
// (command-tag-suffixed via tagged, matching logRetry/logFinalFailure's
// convention).
func (c *Client) logSuccess(messages []openai.ChatCompletionMessage, params map[string]any, response string, usage Usage) {
	if c.Logger == nil {
		return
	}
	payload := audit.LogPayload{
		"messages_sent": summarizeMessages(messages),
		"model":         c.Model,
		"params":        params,
		"response":      response,
		"usage": map[string]int{
			"prompt_tokens":     usage.PromptTokens,
			"completion_tokens": usage.CompletionTokens,
			"total_tokens":      usage.TotalTokens,
		},
	}
	_, _ = c.Logger.SaveLog(tagged(c.CommandTag, "llm_"+sanitizeModel(c.Model)), payload)
}

// sanitizeModel replaces every character outside [A-Za-z0-9] with an
// underscore so a provider-prefixed model id (e.g.
// "anthropic/claude-sonnet-4.5") is safe to embed in a log tag / filename.
func sanitizeModel(model string) string {
	var b strings.Builder
	b.Grow(len(model))
	for _, r := range model {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func (c *Client) logFinalFailure(messages []openai.ChatCompletionMessage, params map[string]any, err error) {
	if c.Logger == nil {
		return
	}
	payload := audit.LogPayload{
		"messages_sent": summarizeMessages(messages),
		"model":         c.Model,
		"params":        params,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	_, _ = c.Logger.SaveLog(tagged(c.CommandTag, "llm_final_failure"), payload)
}

func tagged(commandTag, base string) string {
	if commandTag == "" {
		return base
	}
	return base + "_" + commandTag
}

func summarizeMessages(messages []openai.ChatCompletionMessage) []map[string]string {
	out := make([]map[string]string, 0, len(messages))
	for _, m := range messages {
		out = append(out, map[string]string{"role": m.Role, "content": m.Content})
	}
	return out
}

// parseResponse extracts content and normalized usage from resp, per
// spec.md §4.1's response-parsing rules.
func parseResponse(resp openai.ChatCompletionResponse) (string, Usage, error) {
	usage := Usage{PromptTokens: resp.Usage.PromptTokens, CompletionTokens: resp.Usage.CompletionTokens, TotalTokens: resp.Usage.TotalTokens}
	if len(resp.Choices) == 0 {
		return "", usage, fmt.Errorf("llm response contained no choices")
	}
	choice := resp.Choices[0]
	if strings.EqualFold(string(choice.FinishReason), "error") {
		return "", usage, fmt.Errorf("llm finished with an in-body error")
	}
	return choice.Message.Content, usage, nil
}
