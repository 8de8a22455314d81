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

import "errors"

var (
	// ErrLibraryNotFound means the dynamic loader could not open the
	// requested library.
	ErrLibraryNotFound = errors.New("ffi: library not found")

	// ErrSymbolNotFound means the library was opened but does not export
	// the requested symbol.
	ErrSymbolNotFound = errors.New("ffi: symbol not found")

	// ErrSignatureMismatch means the symbol could not be bound to the
	// requested Go function signature.
	ErrSignatureMismatch = errors.New("ffi: signature mismatch")
)
