package sim

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cory-johannsen/grimdark/internal/game/combat"
	"github.com/cory-johannsen/grimdark/internal/game/rules"
)

// SampleSize is the number of raw results kept, in iteration order.
const SampleSize = 5

// Statistics summarizes the wounds inflicted over a run.
//
// Percentiles use a descending sort, so P99 <= P95 <= P50 <= P25.
type Statistics struct {
	Iterations int
	Mean       float64
	P25        int
	P50        int
	P95        int
	P99        int
	Sample     []int
}

// Summarize computes Statistics over results.
//
// Postcondition: results is not modified; Sample holds the first SampleSize
// results in their original order.
func Summarize(results []int) Statistics {
	stats := Statistics{Iterations: len(results)}
	if len(results) == 0 {
		return stats
	}

	total := 0
	for _, r := range results {
		total += r
	}
	stats.Mean = float64(total) / float64(len(results))

	sorted := append([]int(nil), results...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	stats.P25 = percentileOfSorted(sorted, 25)
	stats.P50 = percentileOfSorted(sorted, 50)
	stats.P95 = percentileOfSorted(sorted, 95)
	stats.P99 = percentileOfSorted(sorted, 99)

	n := min(SampleSize, len(results))
	stats.Sample = append([]int(nil), results[:n]...)
	return stats
}

// Percentile returns the value at index ceil(p/100*n)-1 of values sorted in
// descending order, without interpolation. It returns 0 when that index is
// out of range.
func Percentile(values []int, p float64) int {
	sorted := append([]int(nil), values...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	return percentileOfSorted(sorted, p)
}

func percentileOfSorted(desc []int, p float64) int {
	i := int(math.Ceil(p/100*float64(len(desc)))) - 1
	if i < 0 || i >= len(desc) {
		return 0
	}
	return desc[i]
}

// Lines renders the statistics in the calculator's result format.
func (s Statistics) Lines() []string {
	return []string{
		fmt.Sprintf("mean - %.2fW", s.Mean),
		fmt.Sprintf("p25 - %dW", s.P25),
		fmt.Sprintf("p50 - %dW", s.P50),
		fmt.Sprintf("p95 - %dW", s.P95),
		fmt.Sprintf("p99 - %dW", s.P99),
	}
}

// SampleLines renders the sample, numbered from 1.
func (s Statistics) SampleLines() []string {
	lines := make([]string, len(s.Sample))
	for i, w := range s.Sample {
		lines[i] = fmt.Sprintf("#%d - %dW", i+1, w)
	}
	return lines
}

// CapacityMessage returns the result-style message for a capacity error and
// false for any other error.
func CapacityMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, combat.ErrTooManyAttacks):
		return "Too many attacks", true
	case errors.Is(err, rules.ErrTooManyAdditionalHits):
		return "Too many additional hits", true
	}
	return "", false
}
