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

// Package host is the bridge between a calling application and
// independently compiled native add-ins. It discovers and loads modules at
// startup, authorizes every invocation against the module's host
// allow-list, and multiplexes three interaction modes over one envelope
// contract: synchronous calls, progress-streaming calls, and calls that
// delegate into further native libraries through the symbol cache.
package host

// Host bundles the pieces of one running bridge: a scanned registry, the
// event channel for streaming results, and the dispatcher the UI layer
// talks to.
type Host struct {
	Conf       *Config
	Registry   *Registry
	Events     *EventChannel
	Dispatcher *Dispatcher
}

// New builds a host from conf (nil selects DefaultConfig), scans the
// module directory once, and returns the ready bridge. An unreadable
// module directory is a logged diagnostic, not a startup failure: the host
// comes up with an empty registry.
func New(conf *Config) (*Host, error) {
	if conf == nil {
		conf = DefaultConfig()
	}
	if err := VerifyConfig(conf); err != nil {
		return nil, err
	}

	reg := NewRegistry()
	events := NewEventChannel(conf.EventBuffer)
	dispatcher, err := NewDispatcher(conf, reg, events, nil)
	if err != nil {
		events.Close()
		return nil, err
	}

	loader, err := NewLoader(conf)
	if err != nil {
		dispatcher.Close()
		events.Close()
		return nil, err
	}
	if err := loader.LoadDir(reg); err != nil {
		internalLogger.warnf("startup scan incomplete: %v", err)
	}

	return &Host{
		Conf:       conf,
		Registry:   reg,
		Events:     events,
		Dispatcher: dispatcher,
	}, nil
}

// Close shuts down the worker pool and the event channel. Loaded module
// libraries stay open; the operating system reclaims them at process exit.
func (h *Host) Close() {
	h.Dispatcher.Close()
	h.Events.Close()
}
