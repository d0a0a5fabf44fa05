package llm

import (
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// australianEnglishDirective is prepended to system messages (or merged
// into the first user message for system-less families), per spec.md §4.1.
const australianEnglishDirective = "Write in Australian English (e.g. 'organisation', 'defence', 'honour') and apply Australian legal terminology and conventions throughout."

const nowToolInstruction = "Before reasoning about dates, call the `now` tool to establish the current date and time; do not assume today's date."

// sydneyLocation is loaded once; Australia/Sydney is always present in the
// Go stdlib's embedded tzdata when built with it, otherwise resolved from
// the system tzdata.
var sydneyLocation = loadSydneyLocation()

func loadSydneyLocation() *time.Location {
	loc, err := time.LoadLocation("Australia/Sydney")
	if err != nil {
		return time.UTC
	}
	return loc
}

// PrepareMessages applies the deterministic message-preparation pipeline of
// spec.md §4.1: Australian-English directive injection (merging system
// messages into the first user message for families without system-message
// support), then a date-awareness instruction (tool-call instruction when
// toolsEnabled, otherwise a direct date injection).
func PrepareMessages(family ModelFamily, messages []openai.ChatCompletionMessage, toolsEnabled bool) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	copy(out, messages)

	if !ProfileFor(family).SystemMessageSupport {
		out = mergeSystemIntoFirstUser(out)
	} else {
		out = ensureDirectiveOnSystemMessages(out)
	}

	dateInstruction := nowToolInstruction
	if !toolsEnabled {
		dateInstruction = fmt.Sprintf("Today's date is %s.", time.Now().In(sydneyLocation).Format("2 January 2006"))
	}
	out = prependToFirstMessage(out, dateInstruction)
	return out
}

func mergeSystemIntoFirstUser(messages []openai.ChatCompletionMessage) []openai.ChatCompletionMessage {
	var systemParts []string
	var rest []openai.ChatCompletionMessage
	for _, m := range messages {
		if m.Role == openai.ChatMessageRoleSystem {
			systemParts = append(systemParts, m.Content)
		} else {
			rest = append(rest, m)
		}
	}
	combined := strings.TrimSpace(strings.Join(systemParts, "\n\n"))
	if !strings.Contains(combined, australianEnglishDirective) {
		if combined == "" {
			combined = australianEnglishDirective
		} else {
			combined = australianEnglishDirective + "\n\n" + combined
		}
	}

	firstUser := -1
	for i, m := range rest {
		if m.Role == openai.ChatMessageRoleUser {
			firstUser = i
			break
		}
	}
	if firstUser == -1 {
		return append([]openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: combined}}, rest...)
	}
	rest[firstUser].Content = combined + "\n\n" + rest[firstUser].Content
	return rest
}

func ensureDirectiveOnSystemMessages(messages []openai.ChatCompletionMessage) []openai.ChatCompletionMessage {
	hasSystem := false
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	for _, m := range messages {
		if m.Role == openai.ChatMessageRoleSystem {
			hasSystem = true
			if !strings.Contains(m.Content, australianEnglishDirective) {
				m.Content = australianEnglishDirective + "\n\n" + m.Content
			}
		}
		out = append(out, m)
	}
	if !hasSystem {
		out = append([]openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: australianEnglishDirective}}, out...)
	}
	return out
}

func prependToFirstMessage(messages []openai.ChatCompletionMessage, instruction string) []openai.ChatCompletionMessage {
	if len(messages) == 0 {
		return []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: instruction}}
	}
	messages[0].Content = instruction + "\n\n" + messages[0].Content
	return messages
}
