// Package api defines public API contracts for plugin-ffi.
package api

import "encoding/json"

// Mode selects the interaction mode of a dispatch call.
type Mode string

const (
	ModeSync     Mode = "sync"
	ModeStream   Mode = "stream"
	ModeExternal Mode = "external"
)

// Valid reports whether m is one of the three supported interaction modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeSync, ModeStream, ModeExternal:
		return true
	}
	return false
}

// RequestEnvelope is the uniform request sent by the caller for every
// interaction mode. Payload is passed through to the add-in untouched.
type RequestEnvelope struct {
	Module  string          `json:"moduleName"`
	Mode    Mode            `json:"mode"`
	Payload json.RawMessage `json:"payload"`
}

// ResponseEnvelope is the uniform result of a sync or external call.
// Exactly one of Result and Error is meaningful, selected by OK.
type ResponseEnvelope struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// OkResponse wraps a successful result payload.
func OkResponse(result json.RawMessage) ResponseEnvelope {
	return ResponseEnvelope{OK: true, Result: result}
}

// ErrResponse wraps a failure description.
func ErrResponse(err error) ResponseEnvelope {
	return ResponseEnvelope{OK: false, Error: err.Error()}
}
