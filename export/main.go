// Command export builds the Calculate entry point as a C shared library:
//
//	go build -buildmode=c-shared -o libcalculate.so ./export
//
// The generated libcalculate.h declares
//
//	extern GoInt32 Calculate(GoInt32 a, GoInt32 b);
//
// where GoInt32 is a 32-bit signed integer, so C callers can bind it as
// int32_t (*)(int32_t, int32_t). The Go runtime starts from the library
// constructor; callers need no initialization call of their own.
package main

import "C"

import nativeexport "github.com/analogrelay/go-native-export"

//export Calculate
func Calculate(a, b int32) int32 {
	return nativeexport.Calculate(a, b)
}

// main is required for -buildmode=c-shared but never runs.
func main() {}
