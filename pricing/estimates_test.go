package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cmi-trading/flightbot/schedule"
)

func flightsAt(times ...string) []schedule.Flight {
	flights := make([]schedule.Flight, len(times))
	for i, value := range times {
		ts, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local)
		if err != nil {
			panic(err)
		}
		flights[i] = schedule.Flight{Number: "LH100", Time: ts}
	}
	return flights
}

func TestFlightCountEstimate(t *testing.T) {
	arrivals := flightsAt("2025-11-22 10:05", "2025-11-22 11:10")
	departures := flightsAt("2025-11-22 10:20", "2025-11-22 12:00", "2025-11-22 14:30")

	assert.Equal(t, 15.0, FlightCountEstimate(arrivals, departures))
	assert.Equal(t, 0.0, FlightCountEstimate(nil, nil))
}

func TestFlowImbalanceEstimate(t *testing.T) {
	start, _ := time.ParseInLocation("2006-01-02 15:04", "2025-11-22 10:00", time.Local)
	end, _ := time.ParseInLocation("2006-01-02 15:04", "2025-11-22 12:00", time.Local)

	// bin 10:00 holds 2 arrivals and 1 departure: 300*1/3^1.5 = 57.735
	// bin 11:00 holds 2 departures: 300*(-2)/2^1.5 = -212.132
	arrivals := flightsAt("2025-11-22 10:05", "2025-11-22 10:10")
	departures := flightsAt("2025-11-22 10:20", "2025-11-22 11:05", "2025-11-22 11:10")

	assert.Equal(t, -154.0, FlowImbalanceEstimate(arrivals, departures, start, end))
}

func TestFlowImbalanceEstimate_WindowIsInclusive(t *testing.T) {
	start, _ := time.ParseInLocation("2006-01-02 15:04", "2025-11-22 10:00", time.Local)
	end, _ := time.ParseInLocation("2006-01-02 15:04", "2025-11-22 12:00", time.Local)

	// one arrival exactly on each bound, one outside on each side
	arrivals := flightsAt(
		"2025-11-22 09:59",
		"2025-11-22 10:00",
		"2025-11-22 12:00",
		"2025-11-22 12:01",
	)

	// two bins of one arrival each: 2 * 300*1/1 = 600
	assert.Equal(t, 600.0, FlowImbalanceEstimate(arrivals, nil, start, end))
}

func TestFlowImbalanceEstimate_Empty(t *testing.T) {
	start, _ := time.ParseInLocation("2006-01-02 15:04", "2025-11-22 10:00", time.Local)
	end, _ := time.ParseInLocation("2006-01-02 15:04", "2025-11-23 10:00", time.Local)

	assert.Equal(t, 0.0, FlowImbalanceEstimate(nil, nil, start, end))
}

func TestFlowImbalanceEstimate_BalancedBinIsNeutral(t *testing.T) {
	start, _ := time.ParseInLocation("2006-01-02 15:04", "2025-11-22 10:00", time.Local)
	end, _ := time.ParseInLocation("2006-01-02 15:04", "2025-11-22 11:00", time.Local)

	arrivals := flightsAt("2025-11-22 10:05", "2025-11-22 10:10")
	departures := flightsAt("2025-11-22 10:15", "2025-11-22 10:20")

	assert.Equal(t, 0.0, FlowImbalanceEstimate(arrivals, departures, start, end))
}
