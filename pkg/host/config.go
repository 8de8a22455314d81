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
	"errors"
	"strings"
	"time"

	"github.com/addinhost/plugin-ffi/pkg/ffi"
)

// Config carries the host bridge settings.
type Config struct {
	// ModuleDir is the directory scanned once at startup for native
	// add-in files.
	ModuleDir string

	// LibraryExtension selects which files in ModuleDir are module
	// candidates. Defaults to the platform native library extension.
	LibraryExtension string

	// StreamWorkers caps the number of concurrently running streaming
	// invocations on the shared worker pool.
	StreamWorkers int

	// EventBuffer is the per-subscriber delivery channel capacity.
	EventBuffer int

	// LoadRetryInterval and LoadRetryMaxElapsed bound the backoff applied
	// when a candidate module file fails to open during the startup scan.
	// The staging pipeline may still be writing the file.
	LoadRetryInterval   time.Duration
	LoadRetryMaxElapsed time.Duration
}

// DefaultConfig returns the default host configuration.
func DefaultConfig() *Config {
	return &Config{
		ModuleDir:           "natives",
		LibraryExtension:    ffi.LibraryExtension,
		StreamWorkers:       8,
		EventBuffer:         64,
		LoadRetryInterval:   50 * time.Millisecond,
		LoadRetryMaxElapsed: 2 * time.Second,
	}
}

// VerifyConfig ensures the configuration is valid.
func VerifyConfig(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.ModuleDir == "" {
		return errors.New("ModuleDir must not be empty")
	}
	if !strings.HasPrefix(c.LibraryExtension, ".") {
		return errors.New("LibraryExtension must start with '.'")
	}
	if c.StreamWorkers <= 0 {
		return errors.New("StreamWorkers must be positive")
	}
	if c.EventBuffer <= 0 {
		return errors.New("EventBuffer must be positive")
	}
	if c.LoadRetryInterval <= 0 || c.LoadRetryMaxElapsed < c.LoadRetryInterval {
		return errors.New("load retry intervals are inconsistent")
	}
	return nil
}
