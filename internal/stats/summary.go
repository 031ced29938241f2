// Package stats reconstructs summary statistics from compressed
// value/weight distributions.
//
// A distribution arrives as two index-aligned slices: values[i] with
// repetition weight weights[i]. Summarize expands that multiset and
// computes min, max, median, mean, sum, count and the 95th percentile.
// Median and percentile use order-statistic selection at index
// round(q*n - 1) with ties rounded away from zero, so tiny sample counts
// select exactly the same element a full expansion would.
package stats

import (
	"math"
	"sort"
)

// Summary holds the seven reconstructed statistics of a distribution.
// Count is a float64 because it is emitted as a float-typed field,
// unlike the integer counts of histogram and summary payloads.
type Summary struct {
	Min    float64
	Max    float64
	Median float64
	Avg    float64
	Sum    float64
	Count  float64
	P95    float64
}

// Summarize reconstructs summary statistics from a compressed
// distribution.
//
// It reports ok=false, and the caller must suppress the sample, when:
//   - values and weights differ in length, or
//   - the expanded multiset is empty (all weights zero, including the
//     case of empty input slices).
//
// The sum is accumulated over every expanded sample rather than as
// value×weight products, so floating-point accumulation matches a full
// expansion exactly.
func Summarize(values []float64, weights []uint64) (Summary, bool) {
	if len(values) != len(weights) {
		return Summary{}, false
	}

	total := uint64(0)
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return Summary{}, false
	}

	samples := make([]float64, 0, total)
	for i, v := range values {
		for range weights[i] {
			samples = append(samples, v)
		}
	}

	if len(samples) == 1 {
		v := samples[0]
		return Summary{Min: v, Max: v, Median: v, Avg: v, Sum: v, Count: 1, P95: v}, true
	}

	sort.Float64s(samples)

	n := float64(len(samples))

	sum := 0.0
	for _, v := range samples {
		sum += v
	}

	return Summary{
		Min:    samples[0],
		Max:    samples[len(samples)-1],
		Median: samples[quantileIndex(0.50, n)],
		Avg:    sum / n,
		Sum:    sum,
		Count:  n,
		P95:    samples[quantileIndex(0.95, n)],
	}, true
}

// quantileIndex selects the 0-based order-statistic index for quantile q
// over n samples: round(q*n - 1), rounding halves away from zero and
// clamping into [0, n-1]. For n=2 the median index is round(0)=0 and the
// p95 index is round(0.9)=1.
func quantileIndex(q, n float64) int {
	idx := int(math.Round(q*n - 1))
	if idx < 0 {
		return 0
	}
	if idx >= int(n) {
		return int(n) - 1
	}

	return idx
}
