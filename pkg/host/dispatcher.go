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

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/addinhost/plugin-ffi/api"
)

// Dispatcher routes caller requests to modules. Sync and external calls
// block the caller until the module returns; streaming calls are scheduled
// on a shared worker pool and return immediately. Module failures never
// crash the host: every error below the process boundary becomes an
// envelope value or a terminal stream event.
type Dispatcher struct {
	conf    *Config
	reg     *Registry
	gate    api.Gate
	events  *EventChannel
	pool    *ants.Pool
	counter Counter
}

var _ api.Dispatcher = (*Dispatcher)(nil)

// NewDispatcher wires a dispatcher to a registry and event channel. A nil
// gate selects the default process-identity gate.
func NewDispatcher(conf *Config, reg *Registry, events *EventChannel, gate api.Gate) (*Dispatcher, error) {
	if err := VerifyConfig(conf); err != nil {
		return nil, err
	}
	if gate == nil {
		gate = ProcessGate{}
	}
	pool, err := ants.NewPool(conf.StreamWorkers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create stream worker pool: %w", err)
	}
	return &Dispatcher{
		conf:   conf,
		reg:    reg,
		gate:   gate,
		events: events,
		pool:   pool,
	}, nil
}

// Close releases the streaming worker pool. In-flight streams finish; no
// new streaming work is accepted through the pool afterwards.
func (d *Dispatcher) Close() {
	d.pool.Release()
}

// Dispatches returns the process-wide count of invocations across all
// modules and modes.
func (d *Dispatcher) Dispatches() uint64 {
	return d.counter.Value()
}

// InvokeSync runs the module's synchronous entry point and blocks until it
// returns.
func (d *Dispatcher) InvokeSync(ctx context.Context, module string, payload json.RawMessage) api.ResponseEnvelope {
	return d.call(ctx, module, payload, api.ModeSync)
}

// InvokeExternal runs the module's external-delegate entry point. The
// delegation into another native library happens inside the module; the
// dispatcher treats this as an opaque sync call.
func (d *Dispatcher) InvokeExternal(ctx context.Context, module string, payload json.RawMessage) api.ResponseEnvelope {
	return d.call(ctx, module, payload, api.ModeExternal)
}

func (d *Dispatcher) call(ctx context.Context, module string, payload json.RawMessage, mode api.Mode) api.ResponseEnvelope {
	d.counter.Inc()
	if err := ctx.Err(); err != nil {
		return api.ErrResponse(fmt.Errorf("%w: %v", ErrExecutionFailed, err))
	}

	m, ok := d.reg.Get(module)
	if !ok {
		return api.ErrResponse(fmt.Errorf("%w: %q", ErrModuleNotFound, module))
	}
	verdict := d.gate.Verify(m.AllowedHosts())
	if !verdict.Verified {
		return api.ErrResponse(fmt.Errorf("%w: process %q", ErrUnauthorized, verdict.Process))
	}

	entry := m.sync
	if mode == api.ModeExternal {
		entry = m.external
	}
	if entry == nil {
		return api.ErrResponse(fmt.Errorf("%w: %s has no %s entry point", ErrEntryPointMissing, m.Name(), mode))
	}

	result, err := safeCall(entry, encodePayload(payload))
	if err != nil {
		return api.ErrResponse(executionError(err))
	}
	internalLogger.debugf("%s call to %q returned %d bytes", mode, m.Name(), len(result))
	return api.OkResponse(resultJSON(result))
}

// InvokeStreaming schedules the module's streaming entry point and returns
// without waiting. Every refusal (unknown module, unauthorized host,
// missing entry point) is still terminated on the event channel with an
// error message and the sentinel, so consumers always observe end of
// stream.
func (d *Dispatcher) InvokeStreaming(ctx context.Context, module string, payload json.RawMessage) (string, error) {
	d.counter.Inc()
	streamID := uuid.NewString()

	refuse := func(err error) (string, error) {
		d.emit(normalizeModuleName(module), streamID, "error: "+err.Error())
		d.emit(normalizeModuleName(module), streamID, api.EndOfStream)
		return streamID, err
	}

	if err := ctx.Err(); err != nil {
		return refuse(fmt.Errorf("%w: %v", ErrExecutionFailed, err))
	}
	m, ok := d.reg.Get(module)
	if !ok {
		return refuse(fmt.Errorf("%w: %q", ErrModuleNotFound, module))
	}
	verdict := d.gate.Verify(m.AllowedHosts())
	if !verdict.Verified {
		return refuse(fmt.Errorf("%w: process %q", ErrUnauthorized, verdict.Process))
	}
	if m.stream == nil {
		return refuse(fmt.Errorf("%w: %s has no stream entry point", ErrEntryPointMissing, m.Name()))
	}

	request := encodePayload(payload)
	task := func() {
		// Registered first so it runs last: the sentinel closes the
		// stream exactly once, also after a panic.
		defer d.emit(m.Name(), streamID, api.EndOfStream)
		defer func() {
			if r := recover(); r != nil {
				d.emit(m.Name(), streamID, fmt.Sprintf("error: %v", r))
			}
		}()
		m.stream(request, func(message string) {
			d.emit(m.Name(), streamID, message)
		})
	}

	if err := d.pool.Submit(task); err != nil {
		// Pool saturated or released; the stream still must terminate.
		internalLogger.debugf("stream pool rejected task (%v), running unpooled", err)
		go task()
	}
	return streamID, nil
}

func (d *Dispatcher) emit(module, streamID, message string) {
	d.events.Publish(api.StreamEvent{Module: module, StreamID: streamID, Message: message})
}

func safeCall(entry SyncFunc, payload string) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return entry(payload)
}

func executionError(err error) error {
	if errors.Is(err, ErrExecutionFailed) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrExecutionFailed, err)
}

// encodePayload renders the opaque request payload passed across the FFI
// boundary. An absent payload becomes the empty JSON object.
func encodePayload(payload json.RawMessage) string {
	if len(payload) == 0 {
		return "{}"
	}
	return string(payload)
}

// resultJSON interprets a module's result string: valid JSON passes
// through, anything else is wrapped as a JSON string.
func resultJSON(result string) json.RawMessage {
	trimmed := strings.TrimSpace(result)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(result)
	return quoted
}
