package verifychain

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/litassist-core/internal/llm"
	"github.com/hyperifyio/litassist-core/internal/truncation"
)

// ReasoningTrace is the IRAC-structured block spec.md §4.5 says a
// generated document may contain: issue, applicable law, application,
// conclusion, a 0-100 confidence score, sources, and the command that
// produced it.
type ReasoningTrace struct {
	Issue          string
	ApplicableLaw  string
	Application    string
	Conclusion     string
	Confidence     int
	Sources        []string
	Command        string
}

var iracSectionRe = regexp.MustCompile(`(?is)##\s*Issue\s*\n(.*?)\n##\s*Applicable Law\s*\n(.*?)\n##\s*Application\s*\n(.*?)\n##\s*Conclusion\s*\n(.*?)\n##\s*Confidence\s*\n(.*?)(?:\n##\s*Sources\s*\n(.*?))?(?:\n##\s|\z)`)

// ExtractReasoningTrace pulls an IRAC block out of document, returning
// ok=false if no such block is present.
func ExtractReasoningTrace(document, command string) (ReasoningTrace, bool) {
	m := iracSectionRe.FindStringSubmatch(document)
	if m == nil {
		return ReasoningTrace{}, false
	}
	confidence, _ := strconv.Atoi(strings.TrimSpace(extractLeadingNumber(m[5])))
	trace := ReasoningTrace{
		Issue:         strings.TrimSpace(m[1]),
		ApplicableLaw: strings.TrimSpace(m[2]),
		Application:   strings.TrimSpace(m[3]),
		Conclusion:    strings.TrimSpace(m[4]),
		Confidence:    confidence,
		Command:       command,
	}
	if len(m) > 6 && strings.TrimSpace(m[6]) != "" {
		for _, line := range strings.Split(m[6], "\n") {
			line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
			if line != "" {
				trace.Sources = append(trace.Sources, line)
			}
		}
	}
	return trace, true
}

var leadingNumberRe = regexp.MustCompile(`\d+`)

func extractLeadingNumber(s string) string {
	return leadingNumberRe.FindString(s)
}

// ValidateReasoningTrace checks the length and range invariants spec.md
// §4.5 specifies (issue >= 10 chars, applicable law >= 20, application >=
// 30, conclusion >= 10, confidence in [0,100], sources non-empty).
func ValidateReasoningTrace(t ReasoningTrace) []string {
	var problems []string
	if len(t.Issue) < 10 {
		problems = append(problems, "issue must be at least 10 characters")
	}
	if len(t.ApplicableLaw) < 20 {
		problems = append(problems, "applicable law must be at least 20 characters")
	}
	if len(t.Application) < 30 {
		problems = append(problems, "application must be at least 30 characters")
	}
	if len(t.Conclusion) < 10 {
		problems = append(problems, "conclusion must be at least 10 characters")
	}
	if t.Confidence < 0 || t.Confidence > 100 {
		problems = append(problems, "confidence must be between 0 and 100")
	}
	if len(t.Sources) == 0 {
		problems = append(problems, "sources must be non-empty")
	}
	return problems
}

const reasoningGenerationSystemPrompt = "You are an Australian litigation reasoning assistant. Produce an IRAC-structured reasoning trace for the supplied document using exactly these headings: '## Issue', '## Applicable Law', '## Application', '## Conclusion', '## Confidence' (a single integer 0-100), and '## Sources' (a bullet list)."

// GenerateReasoningTrace calls ReasoningLLM to produce a trace when one is
// absent from document, dropping the largest appended legal-context piece
// on a token-limit error and retrying up to 5 times, per spec.md §4.5.
func (c *Chain) GenerateReasoningTrace(ctx context.Context, document, command string, legalContext []truncation.Document) (ReasoningTrace, error) {
	if c.ReasoningLLM == nil {
		return ReasoningTrace{}, fmt.Errorf("verifychain: no ReasoningLLM configured")
	}
	mgr := truncation.NewManager(legalContext)
	mgr.MaxAttempts = 5

	result, err := mgr.ExecuteWithTruncation(
		func(docs []truncation.Document) (string, string) {
			return buildReasoningPrompt(document, docs), reasoningGenerationSystemPrompt
		},
		func(prompt, system string) (any, error) {
			messages := []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			}
			res, callErr := c.ReasoningLLM.Complete(ctx, messages, llm.Overrides{SkipCitationVerification: true})
			if callErr != nil {
				return nil, callErr
			}
			return res.Content, nil
		},
		nil,
	)
	if err != nil {
		return ReasoningTrace{}, fmt.Errorf("generate reasoning trace: %w", err)
	}
	text, _ := result.(string)
	trace, ok := ExtractReasoningTrace(text, command)
	if !ok {
		return ReasoningTrace{}, fmt.Errorf("reasoning LLM response did not contain a parseable IRAC trace")
	}
	return trace, nil
}

func buildReasoningPrompt(document string, legalContext []truncation.Document) string {
	var b strings.Builder
	b.WriteString(document)
	if len(legalContext) > 0 {
		b.WriteString("\n\n=== LEGAL AUTHORITIES (FULL TEXT) ===\n")
		for _, d := range legalContext {
			b.WriteString(fmt.Sprintf("\n-- %s --\n%s\n", d.Name, d.Content))
		}
	}
	return b.String()
}
