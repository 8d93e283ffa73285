package bench

import (
	"math"
	"slices"
	"time"
)

// Stats summarises the wall-clock time of repeated runs.
type Stats struct {
	Runs   int           `json:"runs"`
	Min    time.Duration `json:"min_ns"`
	Max    time.Duration `json:"max_ns"`
	Mean   time.Duration `json:"mean_ns"`
	StdDev time.Duration `json:"stddev_ns"`
}

// ComputeStats returns min, max, mean and population standard deviation of
// samples. An empty slice yields the zero Stats.
func ComputeStats(samples []time.Duration) Stats {
	if len(samples) == 0 {
		return Stats{}
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	n := float64(len(sorted))
	var sum float64
	for _, d := range sorted {
		sum += d.Seconds()
	}
	mean := sum / n

	var sq float64
	for _, d := range sorted {
		diff := d.Seconds() - mean
		sq += diff * diff
	}
	std := math.Sqrt(sq / n)

	return Stats{
		Runs:   len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   seconds(mean),
		StdDev: seconds(std),
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// Rate returns flops per second at the mean run time, or 0 when no time was
// measured.
func (s Stats) Rate(flops float64) float64 {
	if s.Mean <= 0 {
		return 0
	}
	return flops / s.Mean.Seconds()
}
