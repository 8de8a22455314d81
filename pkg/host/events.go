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
	"sync"

	"github.com/Workiva/go-datastructures/queue"

	"github.com/addinhost/plugin-ffi/api"
)

// EventChannel broadcasts stream events to every subscriber. Publish never
// blocks the producing stream: each subscriber owns an unbounded ordered
// queue drained by its own goroutine, so a slow consumer delays only
// itself. Delivery order per subscriber equals publish order, which keeps
// per-stream ordering intact.
type EventChannel struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscriber
	nextID uint64
	buffer int
	closed bool
}

var _ api.EventSink = (*EventChannel)(nil)

type subscriber struct {
	q   *queue.Queue
	out chan api.StreamEvent
}

// NewEventChannel returns an open channel. buffer sizes each subscriber's
// delivery channel.
func NewEventChannel(buffer int) *EventChannel {
	if buffer <= 0 {
		buffer = 1
	}
	return &EventChannel{
		subs:   make(map[uint64]*subscriber),
		buffer: buffer,
	}
}

// Publish forwards ev to all current subscribers.
func (ec *EventChannel) Publish(ev api.StreamEvent) {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	if ec.closed {
		return
	}
	for _, s := range ec.subs {
		// Put only fails on a disposed queue, i.e. the subscriber left.
		_ = s.q.Put(ev)
	}
}

// Subscribe registers a consumer. The returned channel carries events in
// publish order; cancel removes the subscription and eventually closes the
// channel.
func (ec *EventChannel) Subscribe() (<-chan api.StreamEvent, func()) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	s := &subscriber{
		q:   queue.New(int64(ec.buffer)),
		out: make(chan api.StreamEvent, ec.buffer),
	}
	id := ec.nextID
	ec.nextID++
	if ec.closed {
		close(s.out)
		return s.out, func() {}
	}
	ec.subs[id] = s
	go s.drain()

	cancel := func() {
		ec.mu.Lock()
		delete(ec.subs, id)
		ec.mu.Unlock()
		s.q.Dispose()
	}
	return s.out, cancel
}

// Close disposes every subscription. Pending events are dropped.
func (ec *EventChannel) Close() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	if ec.closed {
		return
	}
	ec.closed = true
	for id, s := range ec.subs {
		s.q.Dispose()
		delete(ec.subs, id)
	}
}

func (s *subscriber) drain() {
	defer close(s.out)
	for {
		items, err := s.q.Get(1)
		if err != nil {
			// queue disposed
			return
		}
		for _, it := range items {
			ev, ok := it.(api.StreamEvent)
			if !ok {
				continue
			}
			s.out <- ev
		}
	}
}
