/*
 * Copyright 2025 The plugin-ffi Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package host

import "strings"

// Canonical export table. A native add-in declares the interaction modes it
// implements by exporting these symbols; there is no reflective probing
// beyond this fixed set.
const (
	symbolExecute          = "execute"
	symbolExecuteStreaming = "execute_streaming"
	symbolExecuteExternal  = "execute_external"
	symbolFreeString       = "free_string"
	symbolAllowedHosts     = "get_allowed_hosts"
)

// SyncFunc is a module entry point for the sync and external interaction
// modes: one request payload in, one result string out.
type SyncFunc func(payload string) (string, error)

// StreamFunc is a module entry point for the streaming interaction mode.
// Every message passed to emit is forwarded to the event channel in order.
type StreamFunc func(payload string, emit func(message string))

// NativeModule is one loaded add-in: a logical name, the entry points it
// implements, and its host allow-list. Instances are created during the
// startup scan and immutable afterwards.
type NativeModule struct {
	name string

	// allowedHosts nil means the module declared no host restriction. A
	// non-nil empty list denies every host (fail closed).
	allowedHosts []string

	sync     SyncFunc
	stream   StreamFunc
	external SyncFunc
}

// NewModule assembles a module from explicit entry points. The loader uses
// it for FFI-bound entry points; tests and in-process adapters may supply
// plain Go functions.
func NewModule(name string, allowedHosts []string, sync SyncFunc, stream StreamFunc, external SyncFunc) *NativeModule {
	return &NativeModule{
		name:         strings.ToLower(name),
		allowedHosts: allowedHosts,
		sync:         sync,
		stream:       stream,
		external:     external,
	}
}

// Name returns the logical module name (lower-case).
func (m *NativeModule) Name() string {
	return m.name
}

// AllowedHosts returns a copy of the module's allow-list, nil when the
// module declared none.
func (m *NativeModule) AllowedHosts() []string {
	if m.allowedHosts == nil {
		return nil
	}
	out := make([]string, len(m.allowedHosts))
	copy(out, m.allowedHosts)
	return out
}

// Implements reports which interaction modes the module supports.
func (m *NativeModule) Implements() (sync, stream, external bool) {
	return m.sync != nil, m.stream != nil, m.external != nil
}
