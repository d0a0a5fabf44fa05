package audit

import (
	"fmt"
	"sort"
	"strings"
)

// renderMarkdown dispatches to a specialised writer based on tag and payload
// shape, per spec.md §4.6's "Markdown detection" rules.
func renderMarkdown(tag string, payload LogPayload) string {
	switch {
	case tag == "fetch_attempt":
		return renderFetchLog(tag, payload)
	case tag == "citation_verification_session" || hasKey(payload, "citations_found"):
		return renderCitationVerificationLog(tag, payload)
	case tag == "citation_validation" || stringField(payload, "method") == "validate_citation_patterns":
		return renderValidationLog(tag, payload)
	case tag == "austlii_http_validation" || stringField(payload, "method") == "check_url_exists":
		return renderHTTPCheckLog(tag, payload)
	case tag == "austlii_search_validation":
		return renderSearchLog(tag, payload)
	case strings.HasPrefix(tag, "llm_") || strings.HasPrefix(tag, "cove_") ||
		hasKey(payload, "messages_sent") || (hasKey(payload, "messages") && hasKey(payload, "model")):
		return renderLLMConversationLog(tag, payload)
	case hasKey(payload, "response") || hasKey(payload, "inputs"):
		return renderCommandOutputLog(tag, payload)
	default:
		return renderGenericLog(tag, payload)
	}
}

func hasKey(p LogPayload, k string) bool {
	_, ok := p[k]
	return ok
}

func stringField(p LogPayload, k string) string {
	if v, ok := p[k]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

const truncateAt = 4000

func truncateLong(v any) string {
	s := fmt.Sprintf("%v", v)
	if len(s) > truncateAt {
		return s[:truncateAt] + fmt.Sprintf("\n... [truncated %d chars]", len(s)-truncateAt)
	}
	return s
}

func sortedKeys(p LogPayload) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func header(tag string) string {
	return fmt.Sprintf("# %s\n\n", tag)
}

func renderFetchLog(tag string, p LogPayload) string {
	var b strings.Builder
	b.WriteString(header(tag))
	b.WriteString("## Summary\n\n")
	for _, k := range []string{"url", "method", "success", "http_status", "content_size", "error"} {
		if v, ok := p[k]; ok {
			fmt.Fprintf(&b, "- **%s**: %v\n", k, v)
		}
	}
	if v, ok := p["content"]; ok {
		b.WriteString("\n## Fetched content\n\n```\n")
		b.WriteString(fmt.Sprintf("%v", v))
		b.WriteString("\n```\n")
	}
	return b.String()
}

func renderCitationVerificationLog(tag string, p LogPayload) string {
	var b strings.Builder
	b.WriteString(header(tag))
	for _, k := range []string{"citations_found", "verified_count", "unverified_count"} {
		if v, ok := p[k]; ok {
			fmt.Fprintf(&b, "- **%s**: %v\n", k, v)
		}
	}
	if v, ok := p["unverified"]; ok {
		b.WriteString("\n## Unverified\n\n")
		fmt.Fprintf(&b, "%v\n", v)
	}
	if v, ok := p["settings"]; ok {
		b.WriteString("\n## Settings\n\n")
		fmt.Fprintf(&b, "%v\n", v)
	}
	if v, ok := p["errors"]; ok {
		b.WriteString("\n## Errors\n\n")
		fmt.Fprintf(&b, "%v\n", v)
	}
	return b.String()
}

func renderValidationLog(tag string, p LogPayload) string {
	var b strings.Builder
	b.WriteString(header(tag))
	b.WriteString("## Validation report\n\n")
	for _, k := range sortedKeys(p) {
		fmt.Fprintf(&b, "- **%s**: %v\n", k, truncateLong(p[k]))
	}
	return b.String()
}

func renderHTTPCheckLog(tag string, p LogPayload) string {
	var b strings.Builder
	b.WriteString(header(tag))
	b.WriteString("## HTTP check\n\n")
	for _, k := range []string{"url", "status", "exists", "elapsed_ms"} {
		if v, ok := p[k]; ok {
			fmt.Fprintf(&b, "- **%s**: %v\n", k, v)
		}
	}
	return b.String()
}

func renderSearchLog(tag string, p LogPayload) string {
	var b strings.Builder
	b.WriteString(header(tag))
	b.WriteString("## Search report\n\n")
	for _, k := range sortedKeys(p) {
		fmt.Fprintf(&b, "- **%s**: %v\n", k, truncateLong(p[k]))
	}
	return b.String()
}

func renderLLMConversationLog(tag string, p LogPayload) string {
	var b strings.Builder
	b.WriteString(header(tag))
	if v, ok := p["model"]; ok {
		fmt.Fprintf(&b, "- **model**: %v\n", v)
	}
	if v, ok := p["params"]; ok {
		fmt.Fprintf(&b, "- **params**: %v\n", v)
	}
	if v, ok := p["usage"]; ok {
		fmt.Fprintf(&b, "- **usage**: %v\n", v)
	}
	b.WriteString("\n## Messages\n\n")
	msgs, _ := p["messages_sent"]
	if msgs == nil {
		msgs = p["messages"]
	}
	fmt.Fprintf(&b, "```\n%s\n```\n", truncateLong(msgs))
	if v, ok := p["response"]; ok {
		b.WriteString("\n## Response\n\n```\n")
		b.WriteString(truncateLong(v))
		b.WriteString("\n```\n")
	}
	if v, ok := p["error"]; ok {
		fmt.Fprintf(&b, "\n## Error\n\n%v\n", v)
	}
	return b.String()
}

func renderCommandOutputLog(tag string, p LogPayload) string {
	var b strings.Builder
	b.WriteString(header(tag))
	if v, ok := p["inputs"]; ok {
		b.WriteString("## Inputs\n\n```\n")
		b.WriteString(truncateLong(v))
		b.WriteString("\n```\n")
	}
	if v, ok := p["response"]; ok {
		b.WriteString("\n## Response\n\n```\n")
		b.WriteString(truncateLong(v))
		b.WriteString("\n```\n")
	}
	if v, ok := p["usage"]; ok {
		fmt.Fprintf(&b, "\n## Usage\n\n%v\n", v)
	}
	return b.String()
}

func renderGenericLog(tag string, p LogPayload) string {
	var b strings.Builder
	b.WriteString(header(tag))
	for _, k := range sortedKeys(p) {
		fmt.Fprintf(&b, "- **%s**: %v\n", k, truncateLong(p[k]))
	}
	return b.String()
}
