package control

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"
)

const statsWindow = 1024

// Stats summarizes the recent cycles of a Loop.
type Stats struct {
	Cycles uint64
	Errors uint64
	// MeanPeriod and Jitter are the mean and standard deviation of the time between cycle starts.
	MeanPeriod time.Duration
	Jitter     time.Duration
	MaxPeriod  time.Duration
	// P99Duration is the 99th percentile time spent inside a cycle.
	P99Duration time.Duration
}

// window is a fixed size ring of samples in seconds.
type window struct {
	data stats.Float64Data
	next int
}

func (w *window) add(d time.Duration) {
	if len(w.data) < statsWindow {
		w.data = append(w.data, d.Seconds())
		return
	}
	w.data[w.next] = d.Seconds()
	w.next = (w.next + 1) % statsWindow
}

func (w *window) reset() {
	w.data = w.data[:0]
	w.next = 0
}

func seconds(f float64, err error) time.Duration {
	if err != nil {
		return 0
	}
	return time.Duration(math.Round(f * float64(time.Second)))
}

func summarize(periods, durations *window) Stats {
	return Stats{
		MeanPeriod:  seconds(stats.Mean(periods.data)),
		Jitter:      seconds(stats.StandardDeviationPopulation(periods.data)),
		MaxPeriod:   seconds(stats.Max(periods.data)),
		P99Duration: seconds(stats.Percentile(durations.data, 99)),
	}
}
