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
	"sort"
	"sync/atomic"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Registry maps logical module names to loaded modules. It is populated
// once by the startup scan and read-only afterwards; lookups are
// case-insensitive.
type Registry struct {
	modules cmap.ConcurrentMap[string, *NativeModule]
	scanned atomic.Bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: cmap.New[*NativeModule]()}
}

// Register adds a module. A duplicate logical name replaces the earlier
// entry with a diagnostic, matching last-file-wins scan order.
func (r *Registry) Register(m *NativeModule) {
	if r.modules.Has(m.Name()) {
		internalLogger.warnf("module %q registered twice, keeping the newer one", m.Name())
	}
	r.modules.Set(m.Name(), m)
}

// Get resolves a logical module name.
func (r *Registry) Get(name string) (*NativeModule, bool) {
	return r.modules.Get(normalizeModuleName(name))
}

// Names returns the registered logical names, sorted.
func (r *Registry) Names() []string {
	names := r.modules.Keys()
	sort.Strings(names)
	return names
}

// Count returns the number of registered modules.
func (r *Registry) Count() int {
	return r.modules.Count()
}

// Ready reports whether the startup scan has completed. Used by the
// readiness probe; an empty directory still counts as a completed scan.
func (r *Registry) Ready() bool {
	return r.scanned.Load()
}

func (r *Registry) markScanned() {
	r.scanned.Store(true)
}
