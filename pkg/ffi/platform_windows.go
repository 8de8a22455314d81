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

//go:build windows

package ffi

import (
	"strings"

	"golang.org/x/sys/windows"
)

// LibraryExtension is the native library file extension on this platform.
const LibraryExtension = ".dll"

// OpenLibrary opens a native library via LoadLibrary.
func OpenLibrary(name string) (uintptr, error) {
	dll, err := windows.LoadDLL(name)
	if err != nil {
		return 0, err
	}
	return uintptr(dll.Handle), nil
}

// LookupSymbol resolves an exported symbol address via GetProcAddress.
func LookupSymbol(handle uintptr, symbol string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(handle), symbol)
}

// NormalizeLibraryName maps a logical library name to the platform file
// naming convention ("calc" -> "calc.dll"). Paths and names that already
// carry the extension pass through unchanged.
func NormalizeLibraryName(name string) string {
	if strings.ContainsRune(name, '\\') || strings.ContainsRune(name, '/') ||
		strings.HasSuffix(strings.ToLower(name), LibraryExtension) {
		return name
	}
	return name + LibraryExtension
}
