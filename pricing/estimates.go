package pricing

import (
	"math"
	"time"

	"github.com/cmi-trading/flightbot/schedule"
)

const binSize = 30 * time.Minute

// FlightCountEstimate prices the flight-count market: three points per
// scheduled movement, arrivals and departures alike.
func FlightCountEstimate(arrivals, departures []schedule.Flight) float64 {
	return 3 * float64(len(arrivals)+len(departures))
}

// FlowImbalanceEstimate prices the flow-imbalance market. Movements inside
// [start, end] (inclusive on both ends) are bucketed into 30-minute bins;
// each non-empty bin contributes 300*(arrivals-departures)/(arrivals+departures)^1.5
// and the rounded total is the settlement estimate.
func FlowImbalanceEstimate(arrivals, departures []schedule.Flight, start, end time.Time) float64 {
	type bin struct {
		arrivals   int
		departures int
	}

	bins := make(map[time.Time]*bin)
	at := func(t time.Time) *bin {
		key := t.Truncate(binSize)
		if bins[key] == nil {
			bins[key] = &bin{}
		}
		return bins[key]
	}

	for _, flight := range arrivals {
		if inWindow(flight.Time, start, end) {
			at(flight.Time).arrivals++
		}
	}
	for _, flight := range departures {
		if inWindow(flight.Time, start, end) {
			at(flight.Time).departures++
		}
	}

	total := 0.0
	for _, b := range bins {
		sum := float64(b.arrivals + b.departures)
		if sum > 0 {
			diff := float64(b.arrivals - b.departures)
			total += 300 * diff / math.Pow(sum, 1.5)
		}
	}

	return math.Round(total)
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
