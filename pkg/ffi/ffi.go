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

// Package ffi loads native libraries through the operating system's dynamic
// loader and binds their exported symbols to strongly typed Go functions.
//
// Library handles are memoized per process (at most one load per normalized
// library name); symbol binding is performed on every resolution because a
// caller may request different exports from the same library.
//
// Platform-specific loader calls are in platform_linux.go and
// platform_windows.go.
package ffi

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/valyala/bytebufferpool"
)

// Bind binds the raw symbol address addr to the Go function pointed to by
// fptr. fptr must be a pointer to a function variable; a mismatch between
// the variable's signature and what the binding layer can marshal is
// reported as ErrSignatureMismatch instead of escaping as a panic.
func Bind(fptr any, addr uintptr) (err error) {
	if addr == 0 {
		return ErrSymbolNotFound
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrSignatureMismatch, r)
		}
	}()
	purego.RegisterFunc(fptr, addr)
	return nil
}

// NewCallback returns a native function pointer that invokes fn. The
// pointer stays valid for the process lifetime; callbacks are allocated
// from a fixed platform budget, so callers create them once per module,
// not per call.
func NewCallback(fn func(uintptr) uintptr) uintptr {
	return purego.NewCallback(fn)
}

// GoString copies a NUL-terminated C string into a Go string. A zero
// pointer yields the empty string. The caller remains responsible for
// releasing the native allocation.
func GoString(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for p := ptr; ; p++ {
		b := *(*byte)(unsafe.Pointer(p))
		if b == 0 {
			break
		}
		_ = buf.WriteByte(b)
	}
	return buf.String()
}
