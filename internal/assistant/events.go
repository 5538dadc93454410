package assistant

import "time"

// EventType labels a session event on the websocket feed
type EventType string

const (
	EventRecordingStarted EventType = "recording_started"
	EventRecordingStopped EventType = "recording_stopped"
	EventTranscript       EventType = "transcript"
	EventAssistantToken   EventType = "assistant_token"
	EventAssistantDone    EventType = "assistant_done"
	EventToolCall         EventType = "tool_call"
	EventInterrupted      EventType = "interrupted"
	EventError            EventType = "error"
)

// Event is one observable moment of a session
type Event struct {
	Type EventType `json:"type"`
	Text string    `json:"text,omitempty"`
	Time time.Time `json:"time"`
}

// EventSink receives session events. Implementations must not block.
type EventSink interface {
	Publish(event Event)
}

// nopSink is used when no external surface is listening
type nopSink struct{}

func (nopSink) Publish(Event) {}
