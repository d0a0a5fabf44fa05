// Package audit persists every external call and pipeline stage's inputs,
// prompts, responses, and decisions, per spec.md §4.6 and §3. It writes
// either JSON or Markdown into the caller's logs/ directory depending on a
// process-wide log-format setting, and emits structured task events that
// downstream tooling subscribes to by log-tag name.
package audit

import "time"

// LogPayload is the nested dict of inputs/params/response/usage/metadata
// persisted by SaveLog, matching spec.md §3's LogPayload data model.
type LogPayload map[string]any

// Event is the {command, stage, event, message, timestamp, details} task
// event described in spec.md §3 as AuditEvent.
type Event struct {
	Command   string
	Stage     string
	Kind      string // "start" | "end" | "progress" | "llm_call" | "llm_response" | "error" | ...
	Message   string
	Timestamp time.Time
	Details   map[string]any
}

// Tag returns the log-tag name downstream tooling filters on:
// task_event_<command>_<stage>_<event>.
func (e Event) Tag() string {
	return "task_event_" + e.Command + "_" + e.Stage + "_" + e.Kind
}
