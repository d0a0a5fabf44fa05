package verifychain

import (
	"context"
	"fmt"

	"github.com/hyperifyio/litassist-core/internal/apierr"
	"github.com/hyperifyio/litassist-core/internal/audit"
	"github.com/hyperifyio/litassist-core/internal/citation"
)

// GateResult is the outcome of RunGates: which stage (if any) terminated
// the chain early, plus any content the LLM-verification stage replaced,
// per spec.md §4.5.
type GateResult struct {
	Stage          string // "patterns" | "database" | "llm" | "passed"
	PatternIssues  []citation.PatternIssue
	DatabaseIssues []apierr.CitationIssue
	Content        string
	Passed         bool
}

// RunGates executes the Patterns -> Database -> LLM-verification gated
// stages of spec.md §4.5 over content, for the given command name.
// offlineValidation mirrors Config.OfflineValidation (spec.md §4.2: "Default
// is to skip pattern validation entirely and rely on online verification");
// when false, the Patterns stage (and its high-risk terminal gate) is
// skipped entirely and RunGates proceeds straight to the Database stage.
//
// Note: per spec.md §9's Open Question resolution, this orchestrator does
// NOT invoke CoVe itself; callers run CoVe directly via RunCoVe when the
// command calls for it (see DESIGN.md).
func (c *Chain) RunGates(ctx context.Context, command, content string, verifier *citation.Verifier, offlineValidation bool, logger *audit.Logger) (GateResult, error) {
	result := GateResult{Stage: "passed", Content: content}

	cites := citation.Extract(content)

	var patternIssues []citation.PatternIssue
	if offlineValidation {
		patternIssues = citation.ValidatePatterns(cites)
		if len(patternIssues) > 0 && logger != nil {
			_, _ = logger.SaveLog("citation_validation", audit.LogPayload{
				"command": command,
				"issues":  patternIssues,
			})
		}
		if IsHighRisk(command) && len(patternIssues) > 0 {
			result.Stage = "patterns"
			result.PatternIssues = patternIssues
			result.Passed = false
			return result, nil
		}
	}

	var dbIssues []apierr.CitationIssue
	verifiedCites := make([]citation.Citation, 0, len(cites))
	for _, cite := range cites {
		v := verifier.VerifySingle(ctx, cite)
		verifiedCites = append(verifiedCites, v)
		if !v.Exists {
			dbIssues = append(dbIssues, apierr.CitationIssue{Citation: v.Normalized, Category: "not_found", Reason: v.Reason})
		}
	}
	if IsStrict(command) && len(dbIssues) > 0 {
		result.Stage = "database"
		result.PatternIssues = patternIssues
		result.DatabaseIssues = dbIssues
		result.Passed = false
		return result, nil
	}

	if !IsHighRisk(command) {
		return result, nil
	}
	if c.VerifyLLM == nil {
		return result, fmt.Errorf("verifychain: no VerifyLLM configured for high-risk command %q", command)
	}

	databaseContext := ""
	if len(dbIssues) > 0 {
		databaseContext = formatDatabaseContext(dbIssues)
	}
	issues, corrected, _, err := c.VerifySoundness(ctx, content, databaseContext, "")
	if err != nil {
		return result, err
	}
	result.Stage = "llm"
	if corrected != "" && corrected != content {
		result.Content = corrected
	}
	result.Passed = len(issues) == 0
	return result, nil
}

func formatDatabaseContext(issues []apierr.CitationIssue) string {
	s := "Unverified citations from automated database verification:\n"
	for _, i := range issues {
		s += fmt.Sprintf("- %s: %s\n", i.Citation, i.Reason)
	}
	return s
}
