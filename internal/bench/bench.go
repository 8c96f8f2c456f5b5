// Package bench measures call throughput and latency of a Calculator
// under concurrent load.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	nativeexport "github.com/analogrelay/go-native-export"
)

// ErrNoOperations is returned when no call completed before the deadline.
var ErrNoOperations = errors.New("no operations completed")

// Options configures Run.
type Options struct {
	Strategy         nativeexport.Strategy
	Workers          int
	Duration         time.Duration
	ProgressInterval time.Duration
	// Progress receives progress lines. Nil disables progress output.
	Progress io.Writer
	Logger   *slog.Logger
}

type Results struct {
	Strategy     nativeexport.Strategy `json:"strategy"`
	Workers      int                   `json:"workers"`
	TotalOps     int64                 `json:"totalOps"`
	Errors       int64                 `json:"errors"`
	ElapsedTime  time.Duration         `json:"elapsedTime"`
	OpsPerSecond float64               `json:"opsPerSecond"`
	LatencyNs    float64               `json:"latencyNs"`
}

// Run calls c from opts.Workers goroutines until opts.Duration elapses or
// ctx is canceled. Each call uses random operands and its result is
// checked against the in-process sum; a mismatch counts as an error.
func Run(ctx context.Context, c nativeexport.Calculator, opts Options) (*Results, error) {
	if opts.Workers <= 0 {
		return nil, fmt.Errorf("workers must be positive, got %d", opts.Workers)
	}
	if opts.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %v", opts.Duration)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	startTime := time.Now()
	endTime := startTime.Add(opts.Duration)

	logger.Debug("benchmark started", "strategy", opts.Strategy, "workers", opts.Workers, "duration", opts.Duration)

	// Shared counters for all workers
	var totalOps, totalErrors, totalLatency int64

	benchCtx, cancel := context.WithTimeout(ctx, opts.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			worker(benchCtx, c, &totalOps, &totalErrors, &totalLatency, workerID, logger)
		}(i)
	}

	// progressDone is closed once the reporter stops writing to opts.Progress.
	progressDone := make(chan struct{})
	if opts.Progress != nil && opts.ProgressInterval > 0 {
		progressTicker := time.NewTicker(opts.ProgressInterval)
		defer progressTicker.Stop()

		go func() {
			defer close(progressDone)
			for {
				select {
				case <-progressTicker.C:
					currentOps := atomic.LoadInt64(&totalOps)
					elapsed := time.Since(startTime)
					remaining := time.Until(endTime)
					if remaining > 0 {
						fmt.Fprintf(opts.Progress, "%s: %d ops, %.1f ops/sec, %v remaining\n",
							opts.Strategy, currentOps, float64(currentOps)/elapsed.Seconds(), remaining.Round(time.Second))
					}
				case <-benchCtx.Done():
					return
				}
			}
		}()
	} else {
		close(progressDone)
	}

	<-benchCtx.Done()
	wg.Wait()
	<-progressDone

	actualElapsed := time.Since(startTime)
	finalOps := atomic.LoadInt64(&totalOps)
	finalLatency := atomic.LoadInt64(&totalLatency)

	if finalOps == 0 {
		return nil, fmt.Errorf("%s: %w", opts.Strategy, ErrNoOperations)
	}

	return &Results{
		Strategy:     opts.Strategy,
		Workers:      opts.Workers,
		TotalOps:     finalOps,
		Errors:       atomic.LoadInt64(&totalErrors),
		ElapsedTime:  actualElapsed,
		OpsPerSecond: float64(finalOps) / actualElapsed.Seconds(),
		LatencyNs:    float64(finalLatency) / float64(finalOps),
	}, nil
}

// batchSize is the number of calls timed together, so that the clock
// read does not dominate a call that costs a few nanoseconds.
const batchSize = 64

func worker(ctx context.Context, c nativeexport.Calculator, totalOps, totalErrors, totalLatency *int64, workerID int, logger *slog.Logger) {
	// Local random source per worker to avoid contention
	localRand := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	var a, b [batchSize]int32
	logged := false
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		for i := range a {
			a[i], b[i] = int32(localRand.Uint32()), int32(localRand.Uint32())
		}

		var ops, errs int64
		opStart := time.Now()
		for i := range a {
			got, err := c.Calculate(a[i], b[i])
			if err != nil {
				errs++
				if !logged {
					logger.Warn("call failed", "worker", workerID, "error", err)
					logged = true
				}
				continue
			}
			if got != nativeexport.Calculate(a[i], b[i]) {
				errs++
				continue
			}
			ops++
		}
		latency := time.Since(opStart)

		atomic.AddInt64(totalOps, ops)
		atomic.AddInt64(totalErrors, errs)
		if ops > 0 {
			atomic.AddInt64(totalLatency, latency.Nanoseconds()*ops/(ops+errs))
		}
	}
}
