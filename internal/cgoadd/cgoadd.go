//go:build cgo

// Package cgoadd measures the floor of a cgo transition: the sum is done
// by a static inline C function with the same int32_t signature as the
// exported entry point.
package cgoadd

/*
#include <stdint.h>

static inline int32_t calculate_c(int32_t a, int32_t b) {
    return (int32_t)((uint32_t)a + (uint32_t)b);
}
*/
// #cgo nocallback calculate_c
// #cgo noescape calculate_c
import "C"

// Available reports whether this build can make cgo calls.
const Available = true

// Add calls the C implementation.
func Add(a, b int32) int32 {
	return int32(C.calculate_c(C.int32_t(a), C.int32_t(b)))
}
