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

import "sync/atomic"

// Counter is process-wide shared state counting dispatches across all
// modules and interaction modes. Increments are serialized atomically;
// single-threaded assumptions are not relied on anywhere.
type Counter struct {
	n atomic.Uint64
}

// Inc increments the counter and returns the new value.
func (c *Counter) Inc() uint64 {
	return c.n.Add(1)
}

// Value returns the current count.
func (c *Counter) Value() uint64 {
	return c.n.Load()
}
