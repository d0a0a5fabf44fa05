package citation

import (
	"context"
	"fmt"

	"github.com/hyperifyio/litassist-core/internal/apierr"
	"github.com/hyperifyio/litassist-core/internal/audit"
)

// VerificationResult is the outcome of verifying every citation found in a
// piece of generated text, per spec.md §4.1's validate_and_verify_citations
// contract.
type VerificationResult struct {
	Cleaned  string
	Warnings []string
	Citations []Citation
}

// VerifyAll extracts every citation from text, verifies each (consulting
// the cache first), and either removes unverified citations (lenient mode)
// or returns a CitationVerificationError enumerating them (strict mode),
// per spec.md §4.1 and §4.2.
func VerifyAll(ctx context.Context, text string, v *Verifier, logger *audit.Logger, strict bool) (VerificationResult, error) {
	cites := Extract(text)
	result := VerificationResult{Cleaned: text}

	var formatIssues, notFound, other []apierr.CitationIssue
	for _, c := range cites {
		verified := v.VerifySingle(ctx, c)
		result.Citations = append(result.Citations, verified)
		if verified.Exists {
			continue
		}
		issue := apierr.CitationIssue{Citation: verified.Normalized, Category: "not_found", Reason: verified.Reason}
		notFound = append(notFound, issue)
		warning := fmt.Sprintf("citation %q could not be verified: %s", verified.Normalized, verified.Reason)
		result.Warnings = append(result.Warnings, warning)
		result.Cleaned = RemoveCitationFromText(result.Cleaned, verified.Raw)
	}

	emitSessionLog(logger, cites, result)

	if strict && (len(formatIssues)+len(notFound)+len(other)) > 0 {
		return result, &apierr.CitationVerificationError{FormatIssues: formatIssues, NotFound: notFound, Other: other}
	}
	return result, nil
}

func emitSessionLog(logger *audit.Logger, cites []Citation, result VerificationResult) {
	if logger == nil {
		return
	}
	verifiedCount := 0
	for _, c := range result.Citations {
		if c.Exists {
			verifiedCount++
		}
	}
	payload := audit.LogPayload{
		"citations_found": len(cites),
		"verified":        verifiedCount,
		"unverified":      len(cites) - verifiedCount,
		"warnings":        result.Warnings,
	}
	_, _ = logger.SaveLog("citation_verification_session", payload)
}
