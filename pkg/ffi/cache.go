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

package ffi

import (
	"fmt"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/addinhost/plugin-ffi/api"
)

// Cache memoizes library handles by normalized library name. Handles are
// never released; a loaded library stays open for the process lifetime.
//
// Reads hit the concurrent map without locking; first-load of a library is
// serialized by loadMu so the dynamic loader runs at most once per name.
type Cache struct {
	handles cmap.ConcurrentMap[string, uintptr]
	loadMu  sync.Mutex

	// loadFn and findFn default to the platform dynamic loader and exist
	// as seams for tests.
	loadFn func(name string) (uintptr, error)
	findFn func(handle uintptr, symbol string) (uintptr, error)
}

var _ api.Resolver = (*Cache)(nil)

// NewCache returns an empty cache backed by the platform dynamic loader.
func NewCache() *Cache {
	return &Cache{
		handles: cmap.New[uintptr](),
		loadFn:  OpenLibrary,
		findFn:  LookupSymbol,
	}
}

// Open returns the handle for library, loading it on first request. The
// name is normalized to the platform's library file naming convention
// before lookup, so "calc", "libcalc.so" and "calc.dll" address the same
// cache entry on their respective platforms.
func (c *Cache) Open(library string) (uintptr, error) {
	name := NormalizeLibraryName(library)
	if h, ok := c.handles.Get(name); ok {
		return h, nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	if h, ok := c.handles.Get(name); ok {
		return h, nil
	}
	h, err := c.loadFn(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrLibraryNotFound, name, err)
	}
	c.handles.Set(name, h)
	return h, nil
}

// Resolve binds the exported symbol of library to the function pointed to
// by fptr. The library handle is cached; the symbol lookup and binding run
// on every call.
func (c *Cache) Resolve(library, symbol string, fptr any) error {
	h, err := c.Open(library)
	if err != nil {
		return err
	}
	addr, err := c.findFn(h, symbol)
	if err != nil || addr == 0 {
		return fmt.Errorf("%w: %s!%s", ErrSymbolNotFound, NormalizeLibraryName(library), symbol)
	}
	if err := Bind(fptr, addr); err != nil {
		return fmt.Errorf("bind %s!%s: %w", NormalizeLibraryName(library), symbol, err)
	}
	return nil
}

// Loaded reports whether library already has a cached handle.
func (c *Cache) Loaded(library string) bool {
	return c.handles.Has(NormalizeLibraryName(library))
}

// Count returns the number of cached library handles.
func (c *Cache) Count() int {
	return c.handles.Count()
}
