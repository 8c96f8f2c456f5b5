//go:build !cgo

package cgoadd

import nativeexport "github.com/analogrelay/go-native-export"

const Available = false

// Add falls back to the Go implementation when cgo is disabled.
func Add(a, b int32) int32 {
	return nativeexport.Calculate(a, b)
}
