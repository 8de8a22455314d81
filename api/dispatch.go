// Package api defines public API contracts for plugin-ffi.
package api

import (
	"context"
	"encoding/json"
)

// Dispatcher is the single entry point consumed by the UI layer. All three
// operations resolve the module, run the security gate, and only then touch
// module logic. None of them may crash the host on module failure.
type Dispatcher interface {
	// InvokeSync blocks until the module's synchronous entry point returns.
	InvokeSync(ctx context.Context, module string, payload json.RawMessage) ResponseEnvelope

	// InvokeStreaming returns once the work is scheduled. Results arrive on
	// the event channel, terminated by exactly one EndOfStream event. The
	// returned stream ID tags every event of this invocation; a non-nil
	// error means the stream was refused (the refusal is still delivered on
	// the event channel as an error message plus the sentinel).
	InvokeStreaming(ctx context.Context, module string, payload json.RawMessage) (streamID string, err error)

	// InvokeExternal behaves like InvokeSync, but the module entry point is
	// expected to delegate into another native library via the symbol cache.
	InvokeExternal(ctx context.Context, module string, payload json.RawMessage) ResponseEnvelope
}
