// Package native binds to the Calculate entry point of a shared library
// the way a C host does: dlopen the artifact, dlsym the export, and call it
// through a flat int32_t (*)(int32_t, int32_t) pointer.
//
// A Go process can host only one Go runtime, so artifacts built from this
// module with -buildmode=c-shared cannot be opened here. Use the symbols
// package or an out-of-process host for those.
package native

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned by Open when the binary was built without
// cgo or for a platform without dlopen.
var ErrUnsupported = errors.New("native loading not supported in this build")

// ErrClosed is returned for calls on a closed Library.
var ErrClosed = errors.New("library is closed")

// LoaderError wraps a failure reported by the dynamic loader.
type LoaderError struct {
	Op      string
	Path    string
	Symbol  string
	Message string
}

func (e *LoaderError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("native %s %s in %s: %s", e.Op, e.Symbol, e.Path, e.Message)
	}
	return fmt.Sprintf("native %s %s: %s", e.Op, e.Path, e.Message)
}
