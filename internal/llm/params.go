package llm

// claudeReasoningBudgets maps thinking_effort levels to Claude's
// token-budget-valued reasoning parameter, per spec.md §4.1.
var claudeReasoningBudgets = map[string]int{
	"none": 0, "minimal": 1024, "low": 1024, "medium": 8192, "high": 16384, "max": 32000,
}

// gpt5MinimalAllowed reports whether family accepts thinking_effort
// "minimal" as an effort value; everything else falls back to "low".
func gpt5MinimalAllowed(family ModelFamily) bool {
	return family == FamilyGPT5 || family == FamilyOpenAIReasoning
}

// PrepareParams merges defaults with per-call overrides and applies the
// deterministic parameter-filtering pipeline of spec.md §4.1: thinking_effort
// conversion, verbosity passthrough, allowed-set filtering + transform, and
// separation of OpenRouter-extension parameters into extra_body.
func PrepareParams(family ModelFamily, defaults, overrides map[string]any) (params map[string]any, extraBody map[string]any) {
	profile := ProfileFor(family)
	merged := map[string]any{}
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}

	if effort, ok := merged["thinking_effort"].(string); ok {
		delete(merged, "thinking_effort")
		delete(merged, "reasoning")
		delete(merged, "reasoning_effort")
		delete(merged, "thinking")
		delete(merged, "thinking_config")
		merged["reasoning"] = convertThinkingEffort(family, effort)
	}

	if verbosity, ok := merged["verbosity"]; ok {
		if !profile.Allowed["verbosity"] {
			delete(merged, "verbosity")
		} else {
			merged["verbosity"] = verbosity
		}
	}

	filtered := map[string]any{}
	extraBody = map[string]any{}
	for k, v := range merged {
		if openrouterUniversal[k] {
			extraBody[k] = v
			continue
		}
		key := k
		if t, ok := profile.Transform[k]; ok {
			key = t
		}
		if !profile.Allowed[key] {
			continue
		}
		filtered[key] = v
	}
	return filtered, extraBody
}

// convertThinkingEffort converts a thinking_effort level into the
// family-appropriate reasoning representation, per spec.md §4.1.
func convertThinkingEffort(family ModelFamily, effort string) any {
	switch ProfileFor(family).ReasoningStyle {
	case "token_budget":
		budget, ok := claudeReasoningBudgets[effort]
		if !ok {
			budget = claudeReasoningBudgets["medium"]
		}
		return map[string]any{"type": "enabled", "budget_tokens": budget}
	case "effort":
		if effort == "minimal" && !gpt5MinimalAllowed(family) {
			effort = "low"
		}
		return map[string]any{"effort": effort}
	default:
		return map[string]any{"effort": effort}
	}
}
