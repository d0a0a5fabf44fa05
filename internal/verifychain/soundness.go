package verifychain

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/litassist-core/internal/llm"
)

const soundnessSystemPrompt = "You are a senior Australian litigation soundness reviewer. Examine the supplied legal document for unsupported claims, hallucinated citations, and reasoning errors. Respond with a '## Issues Found' section (either the literal text 'No issues found' or a numbered list of issues) and, only if you propose corrections, a '## Verified and Corrected Document' section containing the full corrected document."

// VerifySoundness implements spec.md §4.5's soundness (verify) prompt
// contract: the primary text plus optional citation and reasoning
// contexts, separated by literal "=== PRIOR VERIFICATION: X ===" markers.
// It returns the extracted issues, the corrected document body (empty if
// none was returned), and the model name used.
func (c *Chain) VerifySoundness(ctx context.Context, content, citationContext, reasoningContext string) (issues []string, corrected string, modelName string, err error) {
	return c.verifyWith(ctx, c.VerifyLLM, content, citationContext, reasoningContext)
}

// VerifyWithLevel implements spec.md §4.1's verify_with_level contract,
// selecting a lighter or heavier-weight LLM configuration per level.
func (c *Chain) VerifyWithLevel(ctx context.Context, content string, level Level) (issues []string, modelName string, err error) {
	caller := c.VerifyLLM
	switch level {
	case LevelLight:
		if c.LightLLM != nil {
			caller = c.LightLLM
		}
	case LevelHeavy:
		if c.HeavyLLM != nil {
			caller = c.HeavyLLM
		}
	}
	issues, _, modelName, err = c.verifyWith(ctx, caller, content, "", "")
	return issues, modelName, err
}

func (c *Chain) verifyWith(ctx context.Context, caller LLMCaller, content, citationContext, reasoningContext string) ([]string, string, string, error) {
	if caller == nil {
		return nil, "", "", fmt.Errorf("verifychain: no LLM configured for soundness verification")
	}
	prompt := buildSoundnessPrompt(content, citationContext, reasoningContext)
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: soundnessSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}
	result, err := caller.Complete(ctx, messages, llm.Overrides{SkipCitationVerification: true})
	if err != nil {
		return nil, "", "", fmt.Errorf("soundness verification call: %w", err)
	}
	issues := ExtractIssues(result.Content)
	corrected := ExtractCorrectedDocument(result.Content)
	modelName := ""
	if client, ok := caller.(*llm.Client); ok {
		modelName = client.Model
	}
	return issues, corrected, modelName, nil
}

// buildSoundnessPrompt assembles the primary text plus optional prior
// contexts, separated by the literal markers spec.md §4.5 specifies.
func buildSoundnessPrompt(content, citationContext, reasoningContext string) string {
	var b strings.Builder
	b.WriteString(content)
	if strings.TrimSpace(citationContext) != "" {
		b.WriteString("\n\n=== PRIOR VERIFICATION: CITATIONS ===\n")
		b.WriteString(citationContext)
	}
	if strings.TrimSpace(reasoningContext) != "" {
		b.WriteString("\n\n=== PRIOR VERIFICATION: REASONING ===\n")
		b.WriteString(reasoningContext)
	}
	return b.String()
}

var (
	issuesHeadingRe    = regexp.MustCompile(`(?is)##\s*Issues Found\s*\n(.*?)(?:\n##\s|\z)`)
	correctedHeadingRe = regexp.MustCompile(`(?is)##\s*Verified and Corrected Document\s*\n(.*?)(?:\n##\s|\z)`)
	numberedItemRe     = regexp.MustCompile(`(?m)^\s*\d+[.)]\s*(.+)$`)
)

// ExtractIssues pulls the "## Issues Found" section's items out of a
// soundness response; "No issues found" (or no section at all) yields an
// empty slice.
func ExtractIssues(response string) []string {
	m := issuesHeadingRe.FindStringSubmatch(response)
	if m == nil {
		return nil
	}
	body := strings.TrimSpace(m[1])
	if body == "" || strings.Contains(strings.ToLower(body), "no issues found") {
		return nil
	}
	matches := numberedItemRe.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return []string{body}
	}
	out := make([]string, 0, len(matches))
	for _, mm := range matches {
		out = append(out, strings.TrimSpace(mm[1]))
	}
	return out
}

// ExtractCorrectedDocument pulls the body of the "## Verified and Corrected
// Document" section, or "" if the response carries none.
func ExtractCorrectedDocument(response string) string {
	m := correctedHeadingRe.FindStringSubmatch(response)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
