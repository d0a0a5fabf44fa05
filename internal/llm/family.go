package llm

import "strings"

// ModelFamily tags a ModelIdentifier into one of the groups that share a
// ParameterProfile, per spec.md §3.
type ModelFamily string

const (
	FamilyOpenAIReasoning ModelFamily = "openai_reasoning"
	FamilyGPT5            ModelFamily = "gpt5"
	FamilyClaude4         ModelFamily = "claude4"
	FamilyAnthropic       ModelFamily = "anthropic"
	FamilyGoogle          ModelFamily = "google"
	FamilyOpenAIStandard  ModelFamily = "openai_standard"
	FamilyXAI             ModelFamily = "xai"
	FamilyMeta            ModelFamily = "meta"
	FamilyMistral         ModelFamily = "mistral"
	FamilyCohere          ModelFamily = "cohere"
	FamilyMoonshotAI      ModelFamily = "moonshotai"
	FamilyDefault         ModelFamily = "default"
)

// ParameterProfile describes how a ModelFamily's chat-completion parameters
// are validated and transformed, per spec.md §3.
type ParameterProfile struct {
	Allowed              map[string]bool
	Transform            map[string]string
	SystemMessageSupport bool
	ReasoningStyle       string // "effort" | "token_budget" | ""
}

// ClassifyModel maps a provider-prefixed model identifier (e.g.
// "anthropic/claude-sonnet-4.5") to its ModelFamily, per spec.md §3's
// pattern table.
func ClassifyModel(modelID string) ModelFamily {
	id := strings.ToLower(modelID)
	switch {
	case strings.Contains(id, "o1") || strings.Contains(id, "o3") || strings.Contains(id, "o4"):
		return FamilyOpenAIReasoning
	case strings.Contains(id, "gpt-5") || strings.Contains(id, "gpt5"):
		return FamilyGPT5
	case strings.Contains(id, "claude-sonnet-4") || strings.Contains(id, "claude-opus-4") || strings.Contains(id, "claude-haiku-4"):
		return FamilyClaude4
	case strings.Contains(id, "anthropic/") || strings.Contains(id, "claude"):
		return FamilyAnthropic
	case strings.Contains(id, "google/") || strings.Contains(id, "gemini"):
		return FamilyGoogle
	case strings.Contains(id, "openai/") || strings.Contains(id, "gpt-4") || strings.Contains(id, "gpt-3"):
		return FamilyOpenAIStandard
	case strings.Contains(id, "x-ai/") || strings.Contains(id, "grok"):
		return FamilyXAI
	case strings.Contains(id, "meta-llama/") || strings.Contains(id, "llama"):
		return FamilyMeta
	case strings.Contains(id, "mistralai/") || strings.Contains(id, "mistral"):
		return FamilyMistral
	case strings.Contains(id, "cohere/") || strings.Contains(id, "command-"):
		return FamilyCohere
	case strings.Contains(id, "moonshotai/") || strings.Contains(id, "kimi"):
		return FamilyMoonshotAI
	default:
		return FamilyDefault
	}
}

// openrouterUniversal is the fixed carveout of parameters allowed for every
// family regardless of its profile's Allowed set, per spec.md §4.1.
var openrouterUniversal = map[string]bool{
	"reasoning": true, "min_p": true, "top_a": true, "repetition_penalty": true,
}

// profiles is the static per-family ParameterProfile table, per spec.md §3.
var profiles = map[ModelFamily]ParameterProfile{
	FamilyOpenAIReasoning: {
		Allowed:              map[string]bool{"max_completion_tokens": true, "reasoning": true},
		Transform:            map[string]string{"max_tokens": "max_completion_tokens"},
		SystemMessageSupport: false,
		ReasoningStyle:       "effort",
	},
	FamilyGPT5: {
		Allowed:              map[string]bool{"max_completion_tokens": true, "reasoning": true, "verbosity": true},
		Transform:            map[string]string{"max_tokens": "max_completion_tokens"},
		SystemMessageSupport: true,
		ReasoningStyle:       "effort",
	},
	FamilyClaude4: {
		Allowed:              map[string]bool{"max_tokens": true, "temperature": true, "reasoning": true},
		Transform:            map[string]string{},
		SystemMessageSupport: true,
		ReasoningStyle:       "token_budget",
	},
	FamilyAnthropic: {
		Allowed:              map[string]bool{"max_tokens": true, "temperature": true, "top_p": true},
		Transform:            map[string]string{},
		SystemMessageSupport: true,
		ReasoningStyle:       "",
	},
	FamilyGoogle: {
		Allowed:              map[string]bool{"max_tokens": true, "temperature": true, "reasoning": true},
		Transform:            map[string]string{},
		SystemMessageSupport: true,
		ReasoningStyle:       "effort",
	},
	FamilyOpenAIStandard: {
		Allowed:              map[string]bool{"max_tokens": true, "temperature": true, "top_p": true, "presence_penalty": true, "frequency_penalty": true},
		Transform:            map[string]string{},
		SystemMessageSupport: true,
		ReasoningStyle:       "",
	},
	FamilyXAI: {
		Allowed:              map[string]bool{"max_tokens": true, "temperature": true, "reasoning": true},
		Transform:            map[string]string{},
		SystemMessageSupport: true,
		ReasoningStyle:       "effort",
	},
	FamilyMeta: {
		Allowed:              map[string]bool{"max_tokens": true, "temperature": true, "top_p": true},
		Transform:            map[string]string{},
		SystemMessageSupport: true,
	},
	FamilyMistral: {
		Allowed:              map[string]bool{"max_tokens": true, "temperature": true, "top_p": true, "random_seed": true},
		Transform:            map[string]string{"seed": "random_seed"},
		SystemMessageSupport: true,
	},
	FamilyCohere: {
		Allowed:              map[string]bool{"max_tokens": true, "temperature": true, "p": true},
		Transform:            map[string]string{"top_p": "p"},
		SystemMessageSupport: true,
	},
	FamilyMoonshotAI: {
		Allowed:              map[string]bool{"max_tokens": true, "temperature": true, "top_p": true},
		Transform:            map[string]string{},
		SystemMessageSupport: true,
	},
	FamilyDefault: {
		Allowed:              map[string]bool{"max_tokens": true, "temperature": true, "top_p": true},
		Transform:            map[string]string{},
		SystemMessageSupport: true,
	},
}

// ProfileFor returns the ParameterProfile for family, falling back to the
// default profile if unrecognised.
func ProfileFor(family ModelFamily) ParameterProfile {
	if p, ok := profiles[family]; ok {
		return p
	}
	return profiles[FamilyDefault]
}
