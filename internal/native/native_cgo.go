//go:build cgo && (linux || darwin || freebsd)

package native

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdint.h>
#include <stdlib.h>

typedef int32_t (*calculate_fn)(int32_t, int32_t);

static void *native_open(const char *path, char **err) {
    dlerror();
    void *h = dlopen(path, RTLD_NOW | RTLD_LOCAL);
    if (h == NULL) {
        *err = dlerror();
    }
    return h;
}

static void *native_lookup(void *handle, const char *symbol, char **err) {
    dlerror();
    void *p = dlsym(handle, symbol);
    char *e = dlerror();
    if (e != NULL) {
        *err = e;
        return NULL;
    }
    if (p == NULL) {
        *err = "symbol resolved to NULL";
    }
    return p;
}

static int native_close(void *handle, char **err) {
    int rc = dlclose(handle);
    if (rc != 0) {
        *err = dlerror();
    }
    return rc;
}

static int32_t native_call(void *fn, int32_t a, int32_t b) {
    return ((calculate_fn)fn)(a, b);
}
*/
// #cgo nocallback native_call
// #cgo noescape native_call
import "C"
import (
	"runtime"
	"sync"
	"unsafe"
)

// Library wraps a handle returned by dlopen.
type Library struct {
	path string

	mu     sync.RWMutex
	handle unsafe.Pointer
}

// Function is a resolved Calculate-shaped export.
type Function struct {
	lib    *Library
	symbol string
	fn     unsafe.Pointer
}

func loaderMessage(cerr *C.char) string {
	if cerr == nil {
		return "unknown error"
	}
	return C.GoString(cerr)
}

// Open loads the shared library at path, resolving all of its
// relocations immediately.
func Open(path string) (*Library, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	var cerr *C.char
	handle := C.native_open(cPath, &cerr)
	if handle == nil {
		return nil, &LoaderError{Op: "open", Path: path, Message: loaderMessage(cerr)}
	}

	l := &Library{path: path, handle: handle}

	// Set finalizer to ensure cleanup
	runtime.SetFinalizer(l, (*Library).finalize)

	return l, nil
}

// Path returns the path the library was opened from.
func (l *Library) Path() string {
	return l.path
}

// Lookup resolves symbol. The name is matched exactly.
func (l *Library) Lookup(symbol string) (*Function, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.handle == nil {
		return nil, ErrClosed
	}

	cSymbol := C.CString(symbol)
	defer C.free(unsafe.Pointer(cSymbol))

	var cerr *C.char
	fn := C.native_lookup(l.handle, cSymbol, &cerr)
	if fn == nil {
		return nil, &LoaderError{Op: "lookup", Path: l.path, Symbol: symbol, Message: loaderMessage(cerr)}
	}

	return &Function{lib: l, symbol: symbol, fn: fn}, nil
}

func (l *Library) finalize() {
	_ = l.close()
}

func (l *Library) close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == nil {
		return nil
	}

	var cerr *C.char
	rc := C.native_close(l.handle, &cerr)
	l.handle = nil
	if rc != 0 {
		return &LoaderError{Op: "close", Path: l.path, Message: loaderMessage(cerr)}
	}
	return nil
}

// Close unloads the library. Functions resolved from it return ErrClosed
// afterwards.
func (l *Library) Close() error {
	runtime.SetFinalizer(l, nil)
	return l.close()
}

// Symbol returns the name the function was resolved under.
func (f *Function) Symbol() string {
	return f.symbol
}

// Calculate calls the export with a and b.
func (f *Function) Calculate(a, b int32) (int32, error) {
	f.lib.mu.RLock()
	defer f.lib.mu.RUnlock()
	if f.lib.handle == nil {
		return 0, ErrClosed
	}
	return int32(C.native_call(f.fn, C.int32_t(a), C.int32_t(b))), nil
}
