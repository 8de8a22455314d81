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
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// fakeDynamicLoader stands in for the platform loader: every "library" is a
// symbol table of Go closures, and addresses are synthetic handles into it.
type fakeDynamicLoader struct {
	libs     map[string]map[string]uintptr
	impls    map[uintptr]any
	handles  map[uintptr]map[string]uintptr
	next     uintptr
	opens    map[string]int
	openErrs map[string]int

	// keeps fake native strings alive for the duration of the test
	buffers [][]byte
}

func newFakeDynamicLoader() *fakeDynamicLoader {
	return &fakeDynamicLoader{
		libs:     make(map[string]map[string]uintptr),
		impls:    make(map[uintptr]any),
		handles:  make(map[uintptr]map[string]uintptr),
		next:     1,
		opens:    make(map[string]int),
		openErrs: make(map[string]int),
	}
}

func (f *fakeDynamicLoader) addLibrary(path string, symbols map[string]any) {
	table := make(map[string]uintptr, len(symbols))
	for name, impl := range symbols {
		addr := f.next
		f.next++
		f.impls[addr] = impl
		table[name] = addr
	}
	f.libs[path] = table
}

// cString allocates a NUL-terminated buffer a fake entry point can return.
func (f *fakeDynamicLoader) cString(s string) uintptr {
	buf := append([]byte(s), 0)
	f.buffers = append(f.buffers, buf)
	return uintptr(unsafe.Pointer(&buf[0]))
}

func (f *fakeDynamicLoader) openLib(path string) (uintptr, error) {
	f.opens[path]++
	if f.openErrs[path] > 0 {
		f.openErrs[path]--
		return 0, fmt.Errorf("loader busy: %s", path)
	}
	table, ok := f.libs[path]
	if !ok {
		return 0, fmt.Errorf("no such library: %s", path)
	}
	handle := f.next
	f.next++
	f.handles[handle] = table
	return handle, nil
}

func (f *fakeDynamicLoader) findSym(handle uintptr, symbol string) (uintptr, error) {
	table, ok := f.handles[handle]
	if !ok {
		return 0, errors.New("bad handle")
	}
	addr, ok := table[symbol]
	if !ok {
		return 0, fmt.Errorf("undefined symbol: %s", symbol)
	}
	return addr, nil
}

func (f *fakeDynamicLoader) bind(fptr any, addr uintptr) error {
	impl, ok := f.impls[addr]
	if !ok {
		return errors.New("bad address")
	}
	switch p := fptr.(type) {
	case *func(string) uintptr:
		*p = impl.(func(string) uintptr)
	case *func(string, uintptr):
		*p = impl.(func(string, uintptr))
	case *func(uintptr):
		*p = impl.(func(uintptr))
	case *func() uintptr:
		*p = impl.(func() uintptr)
	default:
		return fmt.Errorf("unsupported target %T", fptr)
	}
	return nil
}

// moduleSymbols builds the minimal mandatory export set: execute echoes the
// payload back, free_string is a no-op on fake buffers.
func (f *fakeDynamicLoader) moduleSymbols() map[string]any {
	return map[string]any{
		symbolExecute:    func(payload string) uintptr { return f.cString("echo: " + payload) },
		symbolFreeString: func(uintptr) {},
	}
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("not a real library"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type LoaderTestSuite struct {
	suite.Suite

	dir  string
	fake *fakeDynamicLoader
	conf *Config
}

func (s *LoaderTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.fake = newFakeDynamicLoader()
	s.conf = DefaultConfig()
	s.conf.ModuleDir = s.dir
	s.conf.LibraryExtension = ".so"
	s.conf.LoadRetryInterval = time.Millisecond
	s.conf.LoadRetryMaxElapsed = 250 * time.Millisecond
}

func (s *LoaderTestSuite) newLoader() *Loader {
	l, err := NewLoader(s.conf)
	s.Require().Nil(err)
	l.openLib = s.fake.openLib
	l.findSym = s.fake.findSym
	l.bind = s.fake.bind
	return l
}

func (s *LoaderTestSuite) TestLoadDirRegistersModules() {
	path := touch(s.T(), s.dir, "Sample.so")
	s.fake.addLibrary(path, s.fake.moduleSymbols())
	touch(s.T(), s.dir, "notes.txt")
	s.Require().Nil(os.Mkdir(filepath.Join(s.dir, "subdir.so"), 0o755))

	reg := NewRegistry()
	s.Require().Nil(s.newLoader().LoadDir(reg))

	s.Require().Equal(1, reg.Count())
	s.Require().True(reg.Ready())
	m, ok := reg.Get("Sample")
	s.Require().True(ok)
	s.Require().Equal("sample", m.Name())

	result, err := m.sync(`{"x":1}`)
	s.Require().Nil(err)
	s.Require().Equal(`echo: {"x":1}`, result)
}

func (s *LoaderTestSuite) TestUtilityLibrarySkippedWithoutRetry() {
	path := touch(s.T(), s.dir, "helper.so")
	s.fake.addLibrary(path, map[string]any{
		// no execute export, so this is not a module
		symbolFreeString: func(uintptr) {},
	})

	reg := NewRegistry()
	s.Require().Nil(s.newLoader().LoadDir(reg))

	s.Require().Equal(0, reg.Count())
	s.Require().True(reg.Ready())
	// missing mandatory exports are permanent, one open is enough
	s.Require().Equal(1, s.fake.opens[path])
}

func (s *LoaderTestSuite) TestMissingDirectoryStillMarksScanned() {
	s.conf.ModuleDir = filepath.Join(s.dir, "does-not-exist")

	reg := NewRegistry()
	err := s.newLoader().LoadDir(reg)
	s.Require().NotNil(err)
	s.Require().True(reg.Ready())
	s.Require().Equal(0, reg.Count())
}

func (s *LoaderTestSuite) TestOptionalEntryPoints() {
	minimal := touch(s.T(), s.dir, "minimal.so")
	s.fake.addLibrary(minimal, s.fake.moduleSymbols())

	full := touch(s.T(), s.dir, "full.so")
	symbols := s.fake.moduleSymbols()
	symbols[symbolExecuteStreaming] = func(string, uintptr) {}
	symbols[symbolExecuteExternal] = func(payload string) uintptr { return s.fake.cString("external") }
	s.fake.addLibrary(full, symbols)

	reg := NewRegistry()
	s.Require().Nil(s.newLoader().LoadDir(reg))
	s.Require().Equal(2, reg.Count())

	m, _ := reg.Get("minimal")
	syncOK, streamOK, externalOK := m.Implements()
	s.Require().True(syncOK)
	s.Require().False(streamOK)
	s.Require().False(externalOK)

	m, _ = reg.Get("full")
	syncOK, streamOK, externalOK = m.Implements()
	s.Require().True(syncOK)
	s.Require().True(streamOK)
	s.Require().True(externalOK)
}

func (s *LoaderTestSuite) TestAllowedHostsExport() {
	path := touch(s.T(), s.dir, "guarded.so")
	symbols := s.fake.moduleSymbols()
	freed := false
	symbols[symbolAllowedHosts] = func() uintptr {
		return s.fake.cString("HostApp.exe, OtherHost")
	}
	symbols[symbolFreeString] = func(uintptr) { freed = true }
	s.fake.addLibrary(path, symbols)

	reg := NewRegistry()
	s.Require().Nil(s.newLoader().LoadDir(reg))

	m, ok := reg.Get("guarded")
	s.Require().True(ok)
	s.Require().Equal([]string{"HostApp.exe", "OtherHost"}, m.AllowedHosts())
	s.Require().True(freed)
}

func (s *LoaderTestSuite) TestNoAllowedHostsExportMeansUnrestricted() {
	path := touch(s.T(), s.dir, "open.so")
	s.fake.addLibrary(path, s.fake.moduleSymbols())

	reg := NewRegistry()
	s.Require().Nil(s.newLoader().LoadDir(reg))

	m, _ := reg.Get("open")
	s.Require().Nil(m.AllowedHosts())
}

func (s *LoaderTestSuite) TestTransientOpenFailureIsRetried() {
	path := touch(s.T(), s.dir, "flaky.so")
	s.fake.addLibrary(path, s.fake.moduleSymbols())
	s.fake.openErrs[path] = 2

	reg := NewRegistry()
	s.Require().Nil(s.newLoader().LoadDir(reg))

	s.Require().Equal(1, reg.Count())
	s.Require().Equal(3, s.fake.opens[path])
}

func (s *LoaderTestSuite) TestOnlyMatchingExtensionIsScanned() {
	s.conf.LibraryExtension = ".module"
	path := touch(s.T(), s.dir, "calc.module")
	s.fake.addLibrary(path, s.fake.moduleSymbols())
	touch(s.T(), s.dir, "calc.so")

	reg := NewRegistry()
	s.Require().Nil(s.newLoader().LoadDir(reg))

	s.Require().Equal(1, reg.Count())
	_, ok := reg.Get("calc")
	s.Require().True(ok)
}

func TestLoaderTestSuite(t *testing.T) {
	suite.Run(t, new(LoaderTestSuite))
}

func TestWrapSyncNullResult(t *testing.T) {
	fn := wrapSync(func(string) uintptr { return 0 }, func(uintptr) {})
	_, err := fn("{}")
	assert.True(t, errors.Is(err, ErrNullResult))
}

func TestWrapSyncCopiesAndFrees(t *testing.T) {
	fake := newFakeDynamicLoader()
	var freedPtr uintptr
	fn := wrapSync(
		func(payload string) uintptr { return fake.cString("result for " + payload) },
		func(ptr uintptr) { freedPtr = ptr },
	)
	result, err := fn("abc")
	assert.Nil(t, err)
	assert.Equal(t, "result for abc", result)
	assert.NotEqual(t, uintptr(0), freedPtr)
}

func TestWrapSyncRecoversPanic(t *testing.T) {
	fn := wrapSync(func(string) uintptr { panic("segfault, almost") }, func(uintptr) {})
	_, err := fn("{}")
	assert.True(t, errors.Is(err, ErrExecutionFailed))
}
