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

//go:build linux

package ffi

import (
	"strings"

	"github.com/ebitengine/purego"
)

// LibraryExtension is the native library file extension on this platform.
const LibraryExtension = ".so"

// OpenLibrary opens a native library via dlopen.
func OpenLibrary(name string) (uintptr, error) {
	return purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

// LookupSymbol resolves an exported symbol address via dlsym.
func LookupSymbol(handle uintptr, symbol string) (uintptr, error) {
	return purego.Dlsym(handle, symbol)
}

// NormalizeLibraryName maps a logical library name to the platform file
// naming convention ("calc" -> "libcalc.so"). Paths and names that already
// carry the extension pass through unchanged.
func NormalizeLibraryName(name string) string {
	if strings.ContainsRune(name, '/') || strings.HasSuffix(name, LibraryExtension) {
		return name
	}
	if !strings.HasPrefix(name, "lib") {
		name = "lib" + name
	}
	return name + LibraryExtension
}
