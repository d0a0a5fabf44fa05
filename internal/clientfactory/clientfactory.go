// Package clientfactory implements spec.md §4.7's LLM Client Factory: a
// static per-command (model, default-parameter) table that callers draw a
// bound gateway client from. Unknown command/subcommand combinations
// raise rather than fall back to a default, and an environment variable
// may override the model name for a given command.
package clientfactory

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hyperifyio/litassist-core/internal/audit"
	"github.com/hyperifyio/litassist-core/internal/citation"
	"github.com/hyperifyio/litassist-core/internal/llm"
)

// entry is one row of the static command table: a model id, its default
// parameters, and whether the command enforces strict citation
// verification (spec.md §4.1's `_enforce_citations` client-level flag).
type entry struct {
	model           string
	defaultParams   map[string]any
	strictCitations bool
}

// commandTable is the static per-command configuration spec.md §4.7
// describes, covering every command named in spec.md §1's list of
// external-collaborator CLI commands plus the `counselnotes` command
// present in original_source/litassist/commands/.
var commandTable = map[string]entry{
	"extractfacts": {model: "anthropic/claude-sonnet-4.5", strictCitations: true},
	"strategy":     {model: "anthropic/claude-sonnet-4.5", defaultParams: map[string]any{"thinking_effort": "max"}, strictCitations: true},
	"lookup":       {model: "google/gemini-2.5-pro"},
	"draft":        {model: "openai/o3-pro", defaultParams: map[string]any{"thinking_effort": "high"}},
	"brainstorm":   {model: "x-ai/grok-4", defaultParams: map[string]any{"temperature": 0.9}},
	"digest":       {model: "google/gemini-2.5-pro"},
	"verify":       {model: "anthropic/claude-opus-4.1", defaultParams: map[string]any{"temperature": 0.0}},
	"barbrief":     {model: "openai/o3-pro", defaultParams: map[string]any{"thinking_effort": "high"}},
	"caseplan":     {model: "anthropic/claude-sonnet-4.5"},
	"counselnotes": {model: "anthropic/claude-sonnet-4.5"},
}

// subcommandOverrides narrows a command's configuration for a known
// subcommand, e.g. verify's light/heavy verification levels (spec.md
// §4.1's verify_with_level contract).
var subcommandOverrides = map[string]map[string]entry{
	"verify": {
		"light": {model: "anthropic/claude-haiku-4.5", defaultParams: map[string]any{"temperature": 0.0}},
		"heavy": {model: "anthropic/claude-opus-4.1", defaultParams: map[string]any{"temperature": 0.0}},
	},
}

// Factory constructs bound *llm.Client values from the static command
// table, wiring in the shared provider, audit logger, and citation
// verifier every gateway client needs.
type Factory struct {
	Provider llm.ChatCompleter
	Logger   *audit.Logger
	Verifier *citation.Verifier

	// EnvPrefix defaults to "LITASSIST_MODEL_" when empty.
	EnvPrefix string
}

// ForCommand returns a *llm.Client configured for command (and, when
// non-empty, subcommand), per spec.md §4.7. An unknown command/subcommand
// combination raises — there is no default fallback.
func (f *Factory) ForCommand(command, subcommand string) (*llm.Client, error) {
	e, ok := lookup(command, subcommand)
	if !ok {
		if subcommand == "" {
			return nil, fmt.Errorf("clientfactory: no configuration for command %q", command)
		}
		return nil, fmt.Errorf("clientfactory: no configuration for command %q subcommand %q", command, subcommand)
	}

	model := e.model
	if override := os.Getenv(f.envVarName(command)); override != "" {
		model = override
	}

	defaults := make(map[string]any, len(e.defaultParams))
	for k, v := range e.defaultParams {
		defaults[k] = v
	}

	return &llm.Client{
		Provider:        f.Provider,
		Model:           model,
		Defaults:        defaults,
		Logger:          f.Logger,
		CommandTag:      commandTag(command, subcommand),
		Verifier:        f.Verifier,
		StrictCitations: e.strictCitations,
	}, nil
}

func lookup(command, subcommand string) (entry, bool) {
	if subcommand != "" {
		if overrides, ok := subcommandOverrides[command]; ok {
			if e, ok := overrides[subcommand]; ok {
				return e, true
			}
		}
	}
	e, ok := commandTable[command]
	return e, ok
}

func commandTag(command, subcommand string) string {
	if subcommand == "" {
		return command
	}
	return command + "_" + subcommand
}

func (f *Factory) envVarName(command string) string {
	prefix := f.EnvPrefix
	if prefix == "" {
		prefix = "LITASSIST_MODEL_"
	}
	return prefix + strings.ToUpper(strings.ReplaceAll(command, "-", "_"))
}

// KnownCommands returns the command names the factory recognises, sorted
// alphabetically, for diagnostics and tests.
func KnownCommands() []string {
	out := make([]string, 0, len(commandTable))
	for k := range commandTable {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
