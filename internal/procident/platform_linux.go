//go:build linux

package procident

// Linux executables carry no conventional suffix.
const executableSuffix = ""
