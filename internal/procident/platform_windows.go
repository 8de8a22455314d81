//go:build windows

package procident

const executableSuffix = ".exe"
