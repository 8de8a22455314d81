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
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cenkalti/backoff/v4"

	"github.com/addinhost/plugin-ffi/pkg/ffi"
)

// Loader discovers and loads native add-ins. Loading is one-shot: a module
// loaded once stays in the process until exit, and the scan runs exactly
// once at startup.
type Loader struct {
	conf *Config

	// seams for tests; default to the platform dynamic loader.
	openLib func(path string) (uintptr, error)
	findSym func(handle uintptr, symbol string) (uintptr, error)
	bind    func(fptr any, addr uintptr) error
}

// NewLoader returns a loader for the given configuration.
func NewLoader(conf *Config) (*Loader, error) {
	if err := VerifyConfig(conf); err != nil {
		return nil, err
	}
	return &Loader{
		conf:    conf,
		openLib: ffi.OpenLibrary,
		findSym: ffi.LookupSymbol,
		bind:    ffi.Bind,
	}, nil
}

// LoadDir scans conf.ModuleDir and registers every loadable module. One
// broken candidate never prevents the others from loading: load failures
// are logged and the file is skipped. The registry is marked scanned even
// when the directory is missing, so readiness does not hang on an empty
// deployment.
func (l *Loader) LoadDir(reg *Registry) error {
	defer reg.markScanned()

	if !pathExists(l.conf.ModuleDir) {
		internalLogger.warnf("module directory %q does not exist, starting empty", l.conf.ModuleDir)
		return fmt.Errorf("module directory %q does not exist", l.conf.ModuleDir)
	}
	entries, err := os.ReadDir(l.conf.ModuleDir)
	if err != nil {
		internalLogger.warnf("module directory %q not readable: %v", l.conf.ModuleDir, err)
		return fmt.Errorf("scan module directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !hasLibraryExtension(entry.Name(), l.conf.LibraryExtension) {
			continue
		}
		path := filepath.Join(l.conf.ModuleDir, entry.Name())
		m, err := l.loadWithRetry(path)
		if err != nil {
			internalLogger.warnf("skipping %q (might be a utility library): %v", path, err)
			continue
		}
		reg.Register(m)
		syncOK, streamOK, externalOK := m.Implements()
		internalLogger.infof("loaded module %q (sync=%v stream=%v external=%v)",
			m.Name(), syncOK, streamOK, externalOK)
	}
	return nil
}

// loadWithRetry retries transient open failures with capped exponential
// backoff; a module that loads but lacks the mandatory exports fails
// permanently without retry.
func (l *Loader) loadWithRetry(path string) (*NativeModule, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = l.conf.LoadRetryInterval
	bo.MaxElapsedTime = l.conf.LoadRetryMaxElapsed

	var m *NativeModule
	err := backoff.Retry(func() error {
		var err error
		m, err = l.loadModule(path)
		return err
	}, bo)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (l *Loader) loadModule(path string) (*NativeModule, error) {
	if !fileReadable(path) {
		return nil, fmt.Errorf("file not readable: %s", path)
	}
	handle, err := l.openLib(path)
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}

	var (
		execute          func(string) uintptr
		executeStreaming func(string, uintptr)
		executeExternal  func(string) uintptr
		freeString       func(uintptr)
	)

	// execute and free_string are mandatory; their absence marks a
	// non-module library and is not worth retrying.
	if err := l.bindSymbol(handle, symbolExecute, &execute); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrEntryPointMissing, symbolExecute))
	}
	if err := l.bindSymbol(handle, symbolFreeString, &freeString); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrEntryPointMissing, symbolFreeString))
	}

	name := moduleNameFromFile(path, l.conf.LibraryExtension)
	m := &NativeModule{
		name:         name,
		allowedHosts: l.readAllowedHosts(handle, freeString),
		sync:         wrapSync(execute, freeString),
	}
	if err := l.bindSymbol(handle, symbolExecuteStreaming, &executeStreaming); err == nil {
		m.stream = wrapStream(executeStreaming, freeString)
	}
	if err := l.bindSymbol(handle, symbolExecuteExternal, &executeExternal); err == nil {
		m.external = wrapSync(executeExternal, freeString)
	}
	return m, nil
}

func (l *Loader) bindSymbol(handle uintptr, symbol string, fptr any) error {
	addr, err := l.findSym(handle, symbol)
	if err != nil || addr == 0 {
		return fmt.Errorf("%w: %s", ffi.ErrSymbolNotFound, symbol)
	}
	return l.bind(fptr, addr)
}

// readAllowedHosts queries the optional get_allowed_hosts export. nil
// means the symbol is absent and the module imposes no restriction.
func (l *Loader) readAllowedHosts(handle uintptr, freeString func(uintptr)) []string {
	var getAllowedHosts func() uintptr
	if err := l.bindSymbol(handle, symbolAllowedHosts, &getAllowedHosts); err != nil {
		return nil
	}
	ptr := getAllowedHosts()
	if ptr == 0 {
		return nil
	}
	raw := ffi.GoString(ptr)
	freeString(ptr)
	return parseAllowedHosts(raw)
}

// wrapSync turns a raw entry point returning a module-allocated C string
// into a SyncFunc. The native string is copied and released before return.
func wrapSync(call func(string) uintptr, freeString func(uintptr)) SyncFunc {
	return func(payload string) (result string, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrExecutionFailed, r)
			}
		}()
		ptr := call(payload)
		if ptr == 0 {
			return "", ErrNullResult
		}
		result = ffi.GoString(ptr)
		freeString(ptr)
		return result, nil
	}
}

// wrapStream turns the raw streaming entry point into a StreamFunc. The
// native callback carries no user-data slot, so one trampoline is created
// per module and concurrent native streams of the same module are
// serialized; streams of different modules run freely in parallel.
func wrapStream(call func(string, uintptr), freeString func(uintptr)) StreamFunc {
	var mu sync.Mutex
	var emit func(string)

	trampoline := ffi.NewCallback(func(msg uintptr) uintptr {
		if msg == 0 {
			return 0
		}
		message := ffi.GoString(msg)
		freeString(msg)
		if emit != nil {
			emit(message)
		}
		return 0
	})

	return func(payload string, sink func(message string)) {
		mu.Lock()
		defer mu.Unlock()
		emit = sink
		defer func() { emit = nil }()
		call(payload, trampoline)
	}
}
