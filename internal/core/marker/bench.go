package marker

import "time"

// DefaultIterations is how many times each scan is repeated when timing it.
const DefaultIterations = 1000

// Timing holds the result of the final call and the mean latency per call.
type Timing[T any] struct {
	Result T
	Micros float64
}

// Time calls fn iterations times and reports the mean wall-clock time per call
// in microseconds. Values below one run fn exactly once.
func Time[T any](fn func() T, iterations int) Timing[T] {
	if iterations < 1 {
		iterations = 1
	}

	var result T
	start := time.Now()
	for range iterations {
		result = fn()
	}
	elapsed := time.Since(start)

	return Timing[T]{
		Result: result,
		Micros: float64(elapsed.Nanoseconds()) / 1e3 / float64(iterations),
	}
}
