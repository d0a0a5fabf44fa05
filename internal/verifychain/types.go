// Package verifychain implements the Soundness / Reasoning / CoVe
// verification chain of spec.md §4.5: a gated orchestrator over pattern
// validation and online citation verification, an LLM soundness pass, an
// IRAC reasoning-trace extractor/generator, and the 4-stage
// Chain-of-Verification pipeline that regenerates a document when
// independently-answered questions contradict it.
package verifychain

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/litassist-core/internal/llm"
)

// LLMCaller is the narrow surface this package calls an LLM client
// through; *llm.Client satisfies it, matching spec.md §9's instruction to
// take a strategy object rather than replicate the teacher's mixin
// pattern.
type LLMCaller interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage, overrides llm.Overrides) (llm.CompletionResult, error)
}

// highRiskCommands gate pattern issues (terminal) and the LLM-verification
// stage (run only for these), per spec.md §4.5.
var highRiskCommands = map[string]bool{
	"extractfacts": true,
	"strategy":     true,
	"draft":        true,
}

// strictCommands gate unverified database citations as terminal, per
// spec.md §4.5.
var strictCommands = map[string]bool{
	"extractfacts": true,
	"strategy":     true,
}

// IsHighRisk reports whether command runs the terminal pattern gate and
// the LLM-verification stage.
func IsHighRisk(command string) bool { return highRiskCommands[command] }

// IsStrict reports whether command treats any unverified citation as
// terminal during the database gate.
func IsStrict(command string) bool { return strictCommands[command] }

// Level selects which verify-prompt variant VerifyWithLevel uses, per
// spec.md §4.1's verify_with_level contract.
type Level string

const (
	LevelLight Level = "light"
	LevelHeavy Level = "heavy"
	LevelOther Level = "other"
)

// Chain bundles the per-stage LLM configurations spec.md §4.5 requires
// ("each stage uses its own LLM configuration"). A nil field disables the
// stage that depends on it: soundness, reasoning and CoVe stages all return
// a not-configured error instead of calling an LLM.
type Chain struct {
	// VerifyLLM runs the soundness pass (spec.md §4.5's "LLM verification"
	// stage and the Verify/VerifyWithLevel contract).
	VerifyLLM LLMCaller
	// LightLLM/HeavyLLM, when set, override VerifyLLM for
	// VerifyWithLevel(light)/VerifyWithLevel(heavy); LevelOther always uses
	// VerifyLLM.
	LightLLM LLMCaller
	HeavyLLM LLMCaller

	// ReasoningLLM generates an IRAC trace when one is absent from a
	// document under verification.
	ReasoningLLM LLMCaller

	// CoVe stage clients, one per spec.md §4.5's four stages.
	QuestionsLLM     LLMCaller
	AnswersLLM       LLMCaller
	InconsistencyLLM LLMCaller
	RegenerateLLM    LLMCaller
}
