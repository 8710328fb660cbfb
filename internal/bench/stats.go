package bench

import (
	"math"
	"sort"
)

// Stats summarises repetition timings in seconds.
type Stats struct {
	Mean   float64
	StdDev float64 // population standard deviation
	Min    float64
	Max    float64
	Total  float64
	Median float64
	P95    float64
}

// ComputeStats returns the summary of samples. An empty input yields zero
// Stats.
func ComputeStats(samples []float64) Stats {
	n := len(samples)
	if n == 0 {
		return Stats{}
	}

	sorted := make([]float64, n)
	copy(sorted, samples)
	sort.Float64s(sorted)

	var total float64
	for _, v := range samples {
		total += v
	}
	mean := total / float64(n)

	// Population variance around the mean.
	var sq float64
	for _, v := range samples {
		d := v - mean
		sq += d * d
	}

	return Stats{
		Mean:   mean,
		StdDev: math.Sqrt(sq / float64(n)),
		Min:    sorted[0],
		Max:    sorted[n-1],
		Total:  total,
		Median: median(sorted),
		P95:    percentile(sorted, 95),
	}
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// percentile uses the nearest-rank method.
func percentile(sorted []float64, p float64) float64 {
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
