// Package procident determines the identity of the process hosting the
// bridge. Platform-specific normalization lives in platform_linux.go and
// platform_windows.go.
package procident

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// Name returns the executable name of the current process. The OS process
// table is preferred; the executable path is the fallback. Identity is
// re-read on every call, never cached.
func Name() (string, error) {
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if name, err := p.Name(); err == nil && name != "" {
			return name, nil
		}
	}
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Base(exe), nil
}

// Normalize lower-cases name and rewrites the executable suffix to the
// platform convention, so allow-list entries written with or without
// ".exe" compare equal on every platform.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimSuffix(name, ".exe")
	return name + executableSuffix
}
