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

import "errors"

var (
	// ErrModuleNotFound means no loaded module matches the requested
	// logical name.
	ErrModuleNotFound = errors.New("module not found")

	// ErrUnauthorized means the running host process is not on the
	// module's allow-list.
	ErrUnauthorized = errors.New("host process not authorized")

	// ErrEntryPointMissing means the module does not implement the
	// requested interaction mode.
	ErrEntryPointMissing = errors.New("entry point not implemented")

	// ErrExecutionFailed means the module's own logic failed; the cause is
	// carried in the wrapped description.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrNullResult means the module entry point returned a null pointer
	// instead of a result string.
	ErrNullResult = errors.New("module returned null result")
)
