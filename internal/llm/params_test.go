package llm

import "testing"

func TestClassifyModelFamilies(t *testing.T) {
	cases := map[string]ModelFamily{
		"anthropic/claude-sonnet-4.5": FamilyClaude4,
		"anthropic/claude-2.1":        FamilyAnthropic,
		"openai/o3-pro":               FamilyOpenAIReasoning,
		"openai/gpt-5":                FamilyGPT5,
		"google/gemini-2.5-pro":       FamilyGoogle,
		"x-ai/grok-4":                 FamilyXAI,
		"mistralai/mistral-large":     FamilyMistral,
		"unknown/whatever-model":      FamilyDefault,
	}
	for model, want := range cases {
		if got := ClassifyModel(model); got != want {
			t.Errorf("ClassifyModel(%q) = %q, want %q", model, got, want)
		}
	}
}

func TestPrepareParamsThinkingEffortClaudeTokenBudget(t *testing.T) {
	params, extra := PrepareParams(FamilyClaude4, nil, map[string]any{"thinking_effort": "max"})
	reasoning, ok := extra["reasoning"].(map[string]any)
	if !ok {
		t.Fatalf("expected reasoning in extra_body, got params=%+v extra=%+v", params, extra)
	}
	if reasoning["budget_tokens"] != 32000 {
		t.Fatalf("expected max budget_tokens=32000, got %+v", reasoning)
	}
}

func TestPrepareParamsThinkingEffortMinimalFallsBackForNonGPT5(t *testing.T) {
	_, extra := PrepareParams(FamilyXAI, nil, map[string]any{"thinking_effort": "minimal"})
	reasoning := extra["reasoning"].(map[string]any)
	if reasoning["effort"] != "low" {
		t.Fatalf("expected minimal to fall back to low for non-gpt5 family, got %+v", reasoning)
	}
}

func TestPrepareParamsThinkingEffortMinimalAllowedForGPT5(t *testing.T) {
	_, extra := PrepareParams(FamilyGPT5, nil, map[string]any{"thinking_effort": "minimal"})
	reasoning := extra["reasoning"].(map[string]any)
	if reasoning["effort"] != "minimal" {
		t.Fatalf("expected minimal to be preserved for gpt5, got %+v", reasoning)
	}
}

func TestPrepareParamsDropsDisallowedParameter(t *testing.T) {
	params, _ := PrepareParams(FamilyOpenAIReasoning, nil, map[string]any{"temperature": 0.7})
	if _, ok := params["temperature"]; ok {
		t.Fatalf("expected temperature to be dropped for reasoning family, got %+v", params)
	}
}

func TestPrepareParamsAppliesTransformMap(t *testing.T) {
	params, _ := PrepareParams(FamilyOpenAIReasoning, map[string]any{"max_tokens": 1000}, nil)
	if _, hasOld := params["max_tokens"]; hasOld {
		t.Fatalf("expected max_tokens to be transformed away, got %+v", params)
	}
	if params["max_completion_tokens"] != 1000 {
		t.Fatalf("expected max_tokens renamed to max_completion_tokens, got %+v", params)
	}
}

func TestPrepareParamsSeparatesOpenRouterUniversalParams(t *testing.T) {
	_, extra := PrepareParams(FamilyDefault, nil, map[string]any{"min_p": 0.1, "top_a": 0.2, "repetition_penalty": 1.1})
	for _, k := range []string{"min_p", "top_a", "repetition_penalty"} {
		if _, ok := extra[k]; !ok {
			t.Fatalf("expected %q in extra_body, got %+v", k, extra)
		}
	}
}
