// Package conformance checks a Calculator against the properties every
// binding of the entry point must satisfy.
package conformance

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"

	nativeexport "github.com/analogrelay/go-native-export"
)

// Case is one checked call.
type Case struct {
	Name string
	A, B int32
	Want int32
	Got  int32
	Err  error
}

// Passed reports whether the call returned Want without error.
func (c Case) Passed() bool {
	return c.Err == nil && c.Got == c.Want
}

// Report is the outcome of Check.
type Report struct {
	Cases []Case
}

// Failed returns the cases that did not pass.
func (r Report) Failed() []Case {
	var out []Case
	for _, c := range r.Cases {
		if !c.Passed() {
			out = append(out, c)
		}
	}
	return out
}

// Err joins the failures, or returns nil when every case passed.
func (r Report) Err() error {
	var errs []error
	for _, c := range r.Failed() {
		if c.Err != nil {
			errs = append(errs, fmt.Errorf("%s: Calculate(%d, %d): %w", c.Name, c.A, c.B, c.Err))
			continue
		}
		errs = append(errs, fmt.Errorf("%s: Calculate(%d, %d) = %d, want %d", c.Name, c.A, c.B, c.Got, c.Want))
	}
	return errors.Join(errs...)
}

// Write prints one line per case.
func (r Report) Write(w io.Writer) error {
	for _, c := range r.Cases {
		status := "ok"
		if !c.Passed() {
			status = "FAIL"
		}
		var err error
		if c.Err != nil {
			_, err = fmt.Fprintf(w, "%-4s %-24s Calculate(%d, %d): %v\n", status, c.Name, c.A, c.B, c.Err)
		} else {
			_, err = fmt.Fprintf(w, "%-4s %-24s Calculate(%d, %d) = %d\n", status, c.Name, c.A, c.B, c.Got)
		}
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d/%d passed\n", len(r.Cases)-len(r.Failed()), len(r.Cases))
	return err
}

type property struct {
	name string
	a, b int32
	want int32
}

var fixed = []property{
	{"sum", 2, 3, 5},
	{"one plus one", 1, 1, 2},
	{"overflow", math.MaxInt32, 1, math.MinInt32},
	{"underflow", math.MinInt32, -1, math.MaxInt32},
	{"negatives", -5, -7, -12},
	{"zero", 0, 0, 0},
}

// Options controls the random part of Check.
type Options struct {
	// Samples is the number of random pairs checked for wraparound and
	// commutativity.
	Samples int
	Seed    int64
}

// DefaultOptions is used by Check.
var DefaultOptions = Options{Samples: 16, Seed: 1}

// Check runs the fixed cases and the default random samples.
func Check(c nativeexport.Calculator) Report {
	return CheckWith(c, DefaultOptions)
}

// CheckWith runs the fixed cases followed by opts.Samples random pairs,
// each checked as a+b and b+a.
func CheckWith(c nativeexport.Calculator, opts Options) Report {
	var r Report
	run := func(p property) {
		got, err := c.Calculate(p.a, p.b)
		r.Cases = append(r.Cases, Case{Name: p.name, A: p.a, B: p.b, Want: p.want, Got: got, Err: err})
	}

	for _, p := range fixed {
		run(p)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	for i := 0; i < opts.Samples; i++ {
		a, b := int32(rng.Uint32()), int32(rng.Uint32())
		want := int32(uint32(a) + uint32(b))
		run(property{fmt.Sprintf("wraparound #%d", i), a, b, want})
		run(property{fmt.Sprintf("commutative #%d", i), b, a, want})
	}
	return r
}
