package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// nowToolSpec describes the gateway's single built-in tool, per spec.md
// §4.1/§6: a no-parameter `now()` returning the current Australia/Sydney
// timestamp.
var nowToolSpec = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        "now",
		Description: "Returns the current date and time in the Australia/Sydney timezone.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
	},
}

// toolsForCall returns the tool definitions to attach to a request, per
// spec.md §4.1: only `now`, and only when tools are enabled for this call.
func toolsForCall(enabled bool) []openai.Tool {
	if !enabled {
		return nil
	}
	return []openai.Tool{nowToolSpec}
}

// dispatchToolCalls executes every supported tool call in resp, appending
// the assistant message and one tool-role reply per call. Only `now` is
// supported; any other tool name is rejected since it would not appear in
// the gateway's own tool definitions.
func dispatchToolCalls(conversation []openai.ChatCompletionMessage, resp openai.ChatCompletionResponse) ([]openai.ChatCompletionMessage, error) {
	if len(resp.Choices) == 0 {
		return conversation, nil
	}
	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) == 0 {
		return conversation, nil
	}

	conversation = append(conversation, msg)
	for _, tc := range msg.ToolCalls {
		if tc.Type != openai.ToolTypeFunction || tc.Function.Name != "now" {
			return conversation, fmt.Errorf("unsupported tool call: %s", tc.Function.Name)
		}
		result := formatNowResult()
		conversation = append(conversation, openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			Content:    result,
			ToolCallID: tc.ID,
		})
	}
	return conversation, nil
}

func formatNowResult() string {
	now := time.Now().In(sydneyLocation)
	payload, _ := json.Marshal(map[string]string{
		"iso":      now.Format(time.RFC3339),
		"timezone": "Australia/Sydney",
	})
	return string(payload)
}

// mentionsTools reports whether an error message indicates the model
// rejected tool definitions or tool_choice, per spec.md §4.1's
// tool-rejection fallback trigger.
func mentionsTools(errMsg string) bool {
	lower := strings.ToLower(errMsg)
	return strings.Contains(lower, "tools") || strings.Contains(lower, "tool_choice")
}
