// Package api defines public API contracts for plugin-ffi.
package api

// Resolver resolves an exported symbol from a native library and binds it to
// a strongly typed Go function. fptr must be a pointer to a function
// variable whose signature matches the exported symbol; the bound callable
// is stored through fptr. Library handles are cached per process, symbol
// binding happens on every call.
type Resolver interface {
	Resolve(library, symbol string, fptr any) error
}
