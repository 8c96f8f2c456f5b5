package bench

import (
	"fmt"
	"io"
	"time"
)

// WriteSummary prints the results of a single run.
func WriteSummary(w io.Writer, r *Results) {
	fmt.Fprintf(w, "\n=== %s ===\n", r.Strategy)
	fmt.Fprintf(w, "Workers: %d\n", r.Workers)
	fmt.Fprintf(w, "Total ops: %d\n", r.TotalOps)
	fmt.Fprintf(w, "Errors: %d\n", r.Errors)
	fmt.Fprintf(w, "Total elapsed time: %v\n", r.ElapsedTime.Round(time.Millisecond))
	fmt.Fprintf(w, "Ops/sec: %.2f\n", r.OpsPerSecond)
	fmt.Fprintf(w, "Latency (mean): %.2f ns\n", r.LatencyNs)
}

// WriteTable prints results as a markdown table.
func WriteTable(w io.Writer, results []*Results) {
	fmt.Fprintf(w, "| Strategy | Workers | Total Ops | Duration (ms) | Ops/sec | Latency (ns) |\n")
	fmt.Fprintf(w, "|----------|---------|-----------|---------------|---------|--------------|\n")
	for _, r := range results {
		fmt.Fprintf(w, "| %s | %d | %d | %d | %.2f | %.2f |\n",
			r.Strategy,
			r.Workers,
			r.TotalOps,
			r.ElapsedTime.Milliseconds(),
			r.OpsPerSecond,
			r.LatencyNs)
	}
}
