package audit

import (
	"time"

	"github.com/rs/zerolog/log"
)

// EventSink receives every emitted Event. Downstream tooling (progress
// bars, the CLI surface) implements this to subscribe by tag, per
// spec.md §4.5/§6.
type EventSink interface {
	OnEvent(Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(Event)

func (f EventSinkFunc) OnEvent(e Event) { f(e) }

// EventEmitter fans out Events to zero or more registered sinks and always
// prints start/end/progress events to the console with a "[model: X]"
// suffix when a model name is known, per spec.md §4.5.
type EventEmitter struct {
	sinks []EventSink
	now   func() time.Time
}

// NewEventEmitter constructs an emitter with no sinks registered.
func NewEventEmitter() *EventEmitter {
	return &EventEmitter{now: time.Now}
}

// Subscribe registers a sink to receive future events.
func (e *EventEmitter) Subscribe(sink EventSink) {
	e.sinks = append(e.sinks, sink)
}

// Emit publishes an event, tagging it task_event_<command>_<stage>_<event>.
func (e *EventEmitter) Emit(command, stage, kind, message string, details map[string]any) Event {
	ts := time.Now()
	if e.now != nil {
		ts = e.now()
	}
	ev := Event{Command: command, Stage: stage, Kind: kind, Message: message, Timestamp: ts, Details: details}

	switch kind {
	case "start", "end", "progress":
		printConsole(ev)
	case "error":
		log.Error().Str("tag", ev.Tag()).Str("message", message).Msg("task event error")
	}

	for _, s := range e.sinks {
		s.OnEvent(ev)
	}
	return ev
}

func printConsole(ev Event) {
	model, _ := ev.Details["model"].(string)
	logEvt := log.Info().Str("tag", ev.Tag()).Str("command", ev.Command).Str("stage", ev.Stage)
	msg := ev.Message
	if model != "" {
		logEvt = logEvt.Str("model", model)
		msg += " [model: " + model + "]"
	}
	logEvt.Msg(msg)
}
