// Command openai-stub is a minimal OpenRouter-compatible HTTP server for
// exercising cmd/litassist and internal/llm without a live OpenRouter key.
// It answers /v1/chat/completions with canned responses keyed off the
// system prompt's content, including the now() tool-call round trip
// internal/llm/tools.go drives.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type chatMessage struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	ToolCallID string `json:"tool_call_id,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []any         `json:"tools,omitempty"`
}

func main() {
	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "anthropic/claude-sonnet-4.5"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		if calledNow(req.Messages) {
			writeCompletion(w, "Today's date (Australia/Sydney) is "+time.Now().Format("2 January 2006")+".")
			return
		}
		if len(req.Tools) > 0 {
			writeToolCall(w)
			return
		}

		sys := firstSystemContent(req.Messages)
		var content string
		switch {
		case strings.Contains(sys, "numbered list of specific"):
			content = "1. Does [2020] HCA 45 support the proposition cited?\n2. Is the quoted statutory provision still in force?"
		case strings.Contains(sys, "legal research assistant"):
			content = "1. Yes, the authority supports the proposition as cited.\n2. Yes, the provision remains in force."
		case strings.Contains(sys, "Compare the independently-derived answers"):
			content = "No issues found"
		case strings.Contains(sys, "litigation drafting assistant"):
			content = lastUserContent(req.Messages)
		case strings.Contains(sys, "## Issues Found"):
			content = "## Issues Found\nNo issues found.\n\n## Verified and Corrected Document\n" + lastUserContent(req.Messages)
		default:
			content = "Based on the available Australian authorities, " + lastUserContent(req.Messages)
		}
		writeCompletion(w, content)
	})

	log.Printf("openai-stub (OpenRouter-compatible) listening on %s (model=%s)", addr, model)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

func firstSystemContent(messages []chatMessage) string {
	for _, m := range messages {
		if m.Role == "system" {
			return m.Content
		}
	}
	return ""
}

func lastUserContent(messages []chatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return strings.TrimSpace(messages[i].Content)
		}
	}
	return ""
}

func calledNow(messages []chatMessage) bool {
	for _, m := range messages {
		if m.Role == "tool" && strings.Contains(m.Content, "iso") {
			return true
		}
	}
	return false
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
		"usage": map[string]int{"prompt_tokens": 200, "completion_tokens": 50, "total_tokens": 250},
	})
}

func writeToolCall(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{
				"message": map[string]any{
					"role":    "assistant",
					"content": "",
					"tool_calls": []map[string]any{
						{
							"id":   "call_now_1",
							"type": "function",
							"function": map[string]string{
								"name":      "now",
								"arguments": "{}",
							},
						},
					},
				},
				"finish_reason": "tool_calls",
			},
		},
		"usage": map[string]int{"prompt_tokens": 150, "completion_tokens": 10, "total_tokens": 160},
	})
}
