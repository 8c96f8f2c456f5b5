//go:build !cgo || !(linux || darwin || freebsd)

package native

// Library is unavailable in this build.
type Library struct{}

// Function is unavailable in this build.
type Function struct{}

func Open(path string) (*Library, error) {
	return nil, ErrUnsupported
}

func (l *Library) Path() string { return "" }

func (l *Library) Lookup(symbol string) (*Function, error) {
	return nil, ErrUnsupported
}

func (l *Library) Close() error { return nil }

func (f *Function) Symbol() string { return "" }

func (f *Function) Calculate(a, b int32) (int32, error) {
	return 0, ErrUnsupported
}
