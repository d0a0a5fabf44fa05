package verifychain

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/litassist-core/internal/audit"
	"github.com/hyperifyio/litassist-core/internal/citation"
	"github.com/hyperifyio/litassist-core/internal/llm"
	"github.com/hyperifyio/litassist-core/internal/truncation"
)

// CoVeResult is the outcome of a 4-stage Chain-of-Verification run, per
// spec.md §3's CoVeResult data model.
type CoVeResult struct {
	Questions             []string
	Answers               []string
	Issues                string
	Passed                bool
	Regenerated           bool
	FinalContentLength    int
	OriginalContentLength int
	FinalContent          string
	TotalTokens           int
}

// PriorContexts records which prior verification stages already ran over
// content, used to build stage 1's context summary, per spec.md §4.5.
type PriorContexts struct {
	PatternsRan      bool
	DatabaseRan      bool
	CitationContext  string
	ReasoningContext string
}

// ReferenceFile is a (name, content) pair included in stage 2's prompt
// under the "=== REFERENCE DOCUMENTS ===" delimiter, per spec.md §4.5.
type ReferenceFile struct {
	Name    string
	Content string
}

// RunCoVe runs the four Chain-of-Verification stages in the fixed order
// spec.md §4.5 specifies: questions -> answers -> inconsistency detection
// -> regeneration (only if issues were found). Every stage's full prompt
// and response is persisted to audit via logger, and start/llm_call/
// llm_response/end task events are emitted via emitter, plus a
// cove_<command>_summary record.
func (c *Chain) RunCoVe(ctx context.Context, command, content string, prior PriorContexts, referenceFiles []ReferenceFile, fetcher *citation.ContextFetcher, logger *audit.Logger, emitter *audit.EventEmitter) (CoVeResult, error) {
	result := CoVeResult{OriginalContentLength: len(content), FinalContent: content, FinalContentLength: len(content)}

	var totalTokens int

	emitStage(emitter, command, "cove_stage1_questions", "start", "generating verification questions")
	emitStage(emitter, command, "cove_stage1_questions", "llm_call", "calling questions LLM")
	questions, tok, err := c.coveQuestions(ctx, command, content, prior, logger)
	totalTokens += tok
	if err != nil {
		emitStage(emitter, command, "cove_stage1_questions", "error", err.Error())
		return result, fmt.Errorf("cove stage 1 (questions): %w", err)
	}
	result.Questions = questions
	emitStage(emitter, command, "cove_stage1_questions", "llm_response", fmt.Sprintf("%d tokens", tok))
	emitStage(emitter, command, "cove_stage1_questions", "end", fmt.Sprintf("%d questions", len(questions)))

	legalContext := c.fetchQuestionCitations(ctx, questions, fetcher, logger)

	emitStage(emitter, command, "cove_stage2_answers", "start", "answering verification questions independently")
	emitStage(emitter, command, "cove_stage2_answers", "llm_call", "calling answers LLM")
	answers, tok, err := c.coveAnswers(ctx, command, questions, legalContext, referenceFiles, logger)
	totalTokens += tok
	if err != nil {
		emitStage(emitter, command, "cove_stage2_answers", "error", err.Error())
		return result, fmt.Errorf("cove stage 2 (answers): %w", err)
	}
	result.Answers = answers
	emitStage(emitter, command, "cove_stage2_answers", "llm_response", fmt.Sprintf("%d tokens", tok))
	emitStage(emitter, command, "cove_stage2_answers", "end", fmt.Sprintf("%d answers", len(answers)))

	emitStage(emitter, command, "cove_stage3_inconsistency", "start", "comparing answers against original document")
	emitStage(emitter, command, "cove_stage3_inconsistency", "llm_call", "calling inconsistency LLM")
	issues, tok, err := c.coveInconsistency(ctx, command, content, answers, logger)
	totalTokens += tok
	if err != nil {
		emitStage(emitter, command, "cove_stage3_inconsistency", "error", err.Error())
		return result, fmt.Errorf("cove stage 3 (inconsistency): %w", err)
	}
	result.Issues = issues
	result.Passed = isNoIssuesFound(issues)
	emitStage(emitter, command, "cove_stage3_inconsistency", "llm_response", fmt.Sprintf("%d tokens", tok))
	emitStage(emitter, command, "cove_stage3_inconsistency", "end", fmt.Sprintf("passed=%v", result.Passed))

	if result.Passed {
		result.Regenerated = false
	} else {
		emitStage(emitter, command, "cove_stage4_regeneration", "start", "regenerating corrected document")
		emitStage(emitter, command, "cove_stage4_regeneration", "llm_call", "calling regeneration LLM")
		regenerated, tok, err := c.coveRegenerate(ctx, command, content, issues, answers, logger)
		totalTokens += tok
		if err != nil {
			emitStage(emitter, command, "cove_stage4_regeneration", "error", err.Error())
			return result, fmt.Errorf("cove stage 4 (regeneration): %w", err)
		}
		result.FinalContent = regenerated
		result.Regenerated = true
		emitStage(emitter, command, "cove_stage4_regeneration", "llm_response", fmt.Sprintf("%d tokens", tok))
		emitStage(emitter, command, "cove_stage4_regeneration", "end", "regenerated document produced")
	}
	result.FinalContentLength = len(result.FinalContent)
	result.TotalTokens = totalTokens

	emitSummary(logger, command, result, prior, totalTokens)
	return result, nil
}

func (c *Chain) coveQuestions(ctx context.Context, command, content string, prior PriorContexts, logger *audit.Logger) ([]string, int, error) {
	if c.QuestionsLLM == nil {
		return nil, 0, fmt.Errorf("no QuestionsLLM configured")
	}
	system := "You are a legal verification assistant. Given a document, produce a numbered list of specific, checkable verification questions about its claims and citations. Respond with the numbered list only."
	prompt := fmt.Sprintf("%s\n\n%s", contextSummary(prior), content)
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}
	res, err := c.QuestionsLLM.Complete(ctx, messages, llm.Overrides{SkipCitationVerification: true})
	logStage(logger, command, "cove", 1, "questions", messages, res.Content, err)
	if err != nil {
		return nil, 0, err
	}
	return parseNumberedList(res.Content), res.Usage.TotalTokens, nil
}

func contextSummary(prior PriorContexts) string {
	var parts []string
	if prior.PatternsRan {
		parts = append(parts, "offline pattern validation already ran")
	}
	if prior.DatabaseRan {
		parts = append(parts, "online database citation verification already ran")
	}
	if len(parts) == 0 {
		return "No prior verification stages have run over this document."
	}
	return "Prior verification stages that already ran: " + strings.Join(parts, "; ") + "."
}

// fetchQuestionCitations extracts legal citations referenced inside the
// generated questions and fetches their full documents to form the
// legal-context block for stage 2, per spec.md §4.5.
func (c *Chain) fetchQuestionCitations(ctx context.Context, questions []string, fetcher *citation.ContextFetcher, logger *audit.Logger) []truncation.Document {
	if fetcher == nil {
		return nil
	}
	var docs []truncation.Document
	for _, q := range questions {
		for _, cite := range citation.Extract(q) {
			text, err := fetcher.FetchContext(ctx, cite, q)
			if err != nil || strings.TrimSpace(text) == "" {
				continue
			}
			docs = append(docs, truncation.Document{Name: cite.Normalized, Content: text})
		}
	}
	return docs
}

func (c *Chain) coveAnswers(ctx context.Context, command string, questions []string, legalContext []truncation.Document, referenceFiles []ReferenceFile, logger *audit.Logger) ([]string, int, error) {
	if c.AnswersLLM == nil {
		return nil, 0, fmt.Errorf("no AnswersLLM configured")
	}
	mgr := truncation.NewManager(legalContext)
	mgr.MaxAttempts = 5

	system := "You are a legal research assistant. Answer each numbered verification question independently, using only the supplied legal authorities and reference documents. Do not assume the original document's claims are correct."

	var lastMessages []openai.ChatCompletionMessage
	var tokens int
	result, err := mgr.ExecuteWithTruncation(
		func(docs []truncation.Document) (string, string) {
			return buildAnswersPrompt(questions, docs, referenceFiles), system
		},
		func(prompt, sys string) (any, error) {
			messages := []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: sys},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			}
			lastMessages = messages
			res, callErr := c.AnswersLLM.Complete(ctx, messages, llm.Overrides{SkipCitationVerification: true})
			if callErr != nil {
				return nil, callErr
			}
			tokens = res.Usage.TotalTokens
			return res.Content, nil
		},
		func(dropped string, remaining []string) {
			if logger != nil {
				_, _ = logger.SaveLog("cove_stage2_answers_drop", audit.LogPayload{
					"command": command, "dropped": dropped, "remaining": remaining,
					"remaining_estimated_tokens": mgr.EstimatedTokens(),
				})
			}
		},
	)
	var content string
	if result != nil {
		content, _ = result.(string)
	}
	logStage(logger, command, "cove", 2, "answers", lastMessages, content, err)
	if err != nil {
		return nil, 0, err
	}
	return parseNumberedList(content), tokens, nil
}

func buildAnswersPrompt(questions []string, legalContext []truncation.Document, referenceFiles []ReferenceFile) string {
	var b strings.Builder
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	if len(legalContext) > 0 {
		b.WriteString("\n=== LEGAL AUTHORITIES (FULL TEXT) ===\n")
		for _, d := range legalContext {
			fmt.Fprintf(&b, "\n-- %s --\n%s\n", d.Name, d.Content)
		}
	}
	if len(referenceFiles) > 0 {
		b.WriteString("\n=== REFERENCE DOCUMENTS ===\n")
		for _, f := range referenceFiles {
			fmt.Fprintf(&b, "\n-- %s --\n%s\n", f.Name, f.Content)
		}
	}
	return b.String()
}

func (c *Chain) coveInconsistency(ctx context.Context, command, original string, answers []string, logger *audit.Logger) (string, int, error) {
	if c.InconsistencyLLM == nil {
		return "", 0, fmt.Errorf("no InconsistencyLLM configured")
	}
	system := "You are a legal verification assistant. Compare the independently-derived answers against the original document's claims. If every answer is consistent with the document, respond with exactly 'No issues found'. Otherwise, enumerate each inconsistency as a numbered list."
	var b strings.Builder
	b.WriteString("=== ORIGINAL DOCUMENT ===\n")
	b.WriteString(original)
	b.WriteString("\n\n=== INDEPENDENT ANSWERS ===\n")
	for i, a := range answers {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a)
	}
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: b.String()},
	}
	res, err := c.InconsistencyLLM.Complete(ctx, messages, llm.Overrides{SkipCitationVerification: true})
	logStage(logger, command, "cove", 3, "inconsistency", messages, res.Content, err)
	if err != nil {
		return "", 0, err
	}
	return res.Content, res.Usage.TotalTokens, nil
}

func (c *Chain) coveRegenerate(ctx context.Context, command, original, issues string, answers []string, logger *audit.Logger) (string, int, error) {
	if c.RegenerateLLM == nil {
		return "", 0, fmt.Errorf("no RegenerateLLM configured")
	}
	system := "You are an Australian litigation drafting assistant. Produce a corrected version of the original document that resolves every identified issue, using the independent answers as ground truth. Respond with the corrected document only."
	var b strings.Builder
	b.WriteString("=== ORIGINAL DOCUMENT ===\n")
	b.WriteString(original)
	b.WriteString("\n\n=== IDENTIFIED ISSUES ===\n")
	b.WriteString(issues)
	b.WriteString("\n\n=== INDEPENDENT ANSWERS ===\n")
	for i, a := range answers {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a)
	}
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: b.String()},
	}
	res, err := c.RegenerateLLM.Complete(ctx, messages, llm.Overrides{SkipCitationVerification: true})
	logStage(logger, command, "cove", 4, "regeneration", messages, res.Content, err)
	if err != nil {
		return "", 0, err
	}
	return res.Content, res.Usage.TotalTokens, nil
}

var noIssuesRe = regexp.MustCompile(`(?i)no issues found`)

func isNoIssuesFound(issues string) bool {
	return noIssuesRe.MatchString(strings.TrimSpace(issues))
}

var numberedLineRe = regexp.MustCompile(`(?m)^\s*\d+[.)]\s*(.+)$`)

func parseNumberedList(text string) []string {
	matches := numberedLineRe.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[1]))
	}
	if len(out) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// logStage persists a CoVe stage's full prompt and response, tagged
// cove_stageK_<name>_<command> so it can be filtered from the broader LLM
// log stream, per spec.md §4.5.
func logStage(logger *audit.Logger, command string, prefix string, stage int, name string, messages []openai.ChatCompletionMessage, response string, err error) {
	if logger == nil {
		return
	}
	tag := fmt.Sprintf("%s_stage%d_%s_%s", prefix, stage, name, command)
	payload := audit.LogPayload{
		"messages_sent": messages,
		"response":      response,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	_, _ = logger.SaveLog(tag, payload)
}

func emitStage(emitter *audit.EventEmitter, command, stage, kind, message string) {
	if emitter == nil {
		return
	}
	emitter.Emit(command, stage, kind, message, nil)
}

func emitSummary(logger *audit.Logger, command string, result CoVeResult, prior PriorContexts, totalTokens int) {
	if logger == nil {
		return
	}
	payload := audit.LogPayload{
		"command":                 command,
		"questions":               result.Questions,
		"answers":                 result.Answers,
		"issues":                  result.Issues,
		"passed":                  result.Passed,
		"regenerated":             result.Regenerated,
		"original_content_length": result.OriginalContentLength,
		"final_content_length":    result.FinalContentLength,
		"prior_patterns_ran":      prior.PatternsRan,
		"prior_database_ran":      prior.DatabaseRan,
		"total_tokens":            totalTokens,
	}
	_, _ = logger.SaveLog(fmt.Sprintf("cove_%s_summary", command), payload)
}

// FormatCoVeReport renders a CoVe result for console/log display. It is
// defensive against the invariant spec.md §8 requires: the input may be a
// generic dict (e.g. decoded from a persisted log payload) with any of
// questions/answers/issues absent, or no "cove" key at all; in every case
// this returns a non-empty string rather than panicking.
func FormatCoVeReport(data map[string]any) string {
	var b strings.Builder
	cove, ok := data["cove"].(map[string]any)
	if !ok {
		cove = data
	}
	b.WriteString("Chain of Verification report\n")
	writeListField(&b, cove, "questions", "Questions")
	writeListField(&b, cove, "answers", "Answers")
	if issues, ok := cove["issues"].(string); ok && strings.TrimSpace(issues) != "" {
		fmt.Fprintf(&b, "Issues: %s\n", issues)
	} else {
		b.WriteString("Issues: none recorded\n")
	}
	if passed, ok := cove["passed"].(bool); ok {
		fmt.Fprintf(&b, "Passed: %v\n", passed)
	}
	if regenerated, ok := cove["regenerated"].(bool); ok {
		fmt.Fprintf(&b, "Regenerated: %v\n", regenerated)
	}
	return b.String()
}

func writeListField(b *strings.Builder, data map[string]any, key, label string) {
	raw, ok := data[key]
	if !ok || raw == nil {
		fmt.Fprintf(b, "%s: none recorded\n", label)
		return
	}
	switch v := raw.(type) {
	case []string:
		if len(v) == 0 {
			fmt.Fprintf(b, "%s: none recorded\n", label)
			return
		}
		fmt.Fprintf(b, "%s (%d):\n", label, len(v))
		for i, item := range v {
			fmt.Fprintf(b, "  %d. %s\n", i+1, item)
		}
	case []any:
		if len(v) == 0 {
			fmt.Fprintf(b, "%s: none recorded\n", label)
			return
		}
		fmt.Fprintf(b, "%s (%d):\n", label, len(v))
		for i, item := range v {
			fmt.Fprintf(b, "  %d. %v\n", i+1, item)
		}
	default:
		fmt.Fprintf(b, "%s: none recorded\n", label)
	}
}
