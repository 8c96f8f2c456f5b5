//go:build wasip1

// Command wasmexport builds the Calculate entry point as a WebAssembly
// reactor module:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o calculate.wasm ./wasmexport
//
// The module exports Calculate as (i32, i32) -> i32. Hosts must call the
// _initialize export before the first call; internal/wasmhost calls it
// right after instantiating the module.
package main

import nativeexport "github.com/analogrelay/go-native-export"

//go:wasmexport Calculate
func Calculate(a, b int32) int32 {
	return nativeexport.Calculate(a, b)
}

func main() {}
