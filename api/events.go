// Package api defines public API contracts for plugin-ffi.
package api

// EndOfStream is the reserved terminal message. Every stream emits it
// exactly once as its last event; consumers must treat it as "no further
// messages for this stream".
const EndOfStream = "__end_of_stream__"

// StreamEvent is one ordered message produced by a streaming invocation.
// StreamID distinguishes concurrent streams of the same module; ordering is
// guaranteed per stream only.
type StreamEvent struct {
	Module   string `json:"moduleName"`
	StreamID string `json:"streamId"`
	Message  string `json:"message"`
}

// Terminal reports whether e is the end-of-stream sentinel.
func (e StreamEvent) Terminal() bool {
	return e.Message == EndOfStream
}

// EventSink receives stream events in publish order.
type EventSink interface {
	Publish(StreamEvent)
}
